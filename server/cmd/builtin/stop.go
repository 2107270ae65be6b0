package builtin

import (
	"github.com/dm-vev/ember/server/cmd"
	"github.com/dm-vev/ember/server/world"
)

type stopCommand struct {
	srv serverAdapter
}

func newStopCommand(srv serverAdapter) cmd.Command {
	return cmd.New("stop", "Stops the server.", "", nil, stopCommand{srv: srv})
}

func (s stopCommand) Run(_ []string, src cmd.Source, o *cmd.Output, _ *world.Tx) {
	o.Print("Stopping server...")
	// Closing the world waits for the transaction that runs this command, so
	// the server is closed once it has returned.
	go func() {
		if err := s.srv.Close(); err != nil {
			out := &cmd.Output{}
			out.Error(err)
			src.SendCommandOutput(out)
		}
	}()
}
