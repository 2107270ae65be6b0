package builtin

import (
	"errors"
	"strings"

	"github.com/dm-vev/ember/server"
	"github.com/dm-vev/ember/server/cmd"
	"github.com/dm-vev/ember/server/world"
)

type whitelistCommand struct {
	srv serverAdapter
}

const whitelistUsage = "add <name> | remove <name> | list | on | off | reload"

func newWhitelistCommand(srv serverAdapter) cmd.Command {
	return cmd.New("whitelist", "Manages the whitelist.", whitelistUsage, []string{"wl"}, whitelistCommand{srv: srv})
}

func (c whitelistCommand) Run(args []string, _ cmd.Source, o *cmd.Output, _ *world.Tx) {
	wl, ok := c.srv.Whitelist()
	if !ok {
		o.Error(server.ErrWhitelistUnavailable)
		return
	}
	if len(args) == 0 {
		o.Errorf(cmd.MessageUsage, "/whitelist "+whitelistUsage)
		return
	}
	switch strings.ToLower(args[0]) {
	case "add", "remove":
		if len(args) < 2 {
			o.Errorf(cmd.MessageUsage, "/whitelist "+args[0]+" <name>")
			return
		}
		c.modify(wl, strings.ToLower(args[0]) == "add", strings.Join(args[1:], " "), o)
	case "list":
		names := wl.Names()
		o.Printf("Whitelist (%s): %d name(s).", onOff(wl.Enabled()), len(names))
		if len(names) != 0 {
			o.Print(strings.Join(names, ", "))
		}
	case "on", "off":
		wl.SetEnabled(strings.EqualFold(args[0], "on"))
		o.Printf("Whitelist turned %s.", onOff(wl.Enabled()))
	case "reload":
		if err := wl.Reload(); err != nil {
			o.Error(err)
			return
		}
		o.Printf("Reloaded whitelist: %d name(s).", len(wl.Names()))
	default:
		o.Errorf(cmd.MessageParameterInvalid, args[0])
	}
}

func (whitelistCommand) modify(wl *server.Whitelist, add bool, name string, o *cmd.Output) {
	var (
		changed bool
		err     error
	)
	if add {
		changed, err = wl.Add(name)
	} else {
		changed, err = wl.Remove(name)
	}
	switch {
	case errors.Is(err, server.ErrWhitelistInvalidName):
		o.Errorf(cmd.MessageParameterInvalid, name)
	case err != nil:
		o.Error(err)
	case add && changed:
		o.Printf("Added %s to the whitelist.", name)
	case add:
		o.Printf("%s is already on the whitelist.", name)
	case changed:
		o.Printf("Removed %s from the whitelist.", name)
	default:
		o.Printf("%s is not on the whitelist.", name)
	}
}
