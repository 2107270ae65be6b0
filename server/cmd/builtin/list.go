package builtin

import (
	"strings"

	"github.com/dm-vev/ember/server/cmd"
	"github.com/dm-vev/ember/server/world"
)

type listCommand struct {
	srv serverAdapter
}

func newListCommand(srv serverAdapter) cmd.Command {
	return cmd.New("list", "Lists clients currently online.", "", []string{"players"}, listCommand{srv: srv})
}

func (l listCommand) Run(_ []string, _ cmd.Source, o *cmd.Output, _ *world.Tx) {
	names := l.srv.PlayerNames()
	o.Printf("There are %d clients online.", len(names))
	if len(names) != 0 {
		o.Print(strings.Join(names, ", "))
	}
}
