package builtin

import (
	"github.com/dm-vev/ember/server/cmd"
	"github.com/dm-vev/ember/server/world"
)

type saveCommand struct{}

func newSaveCommand() cmd.Command {
	return cmd.New("save", "Saves the level record of the world.", "", []string{"save-all"}, saveCommand{})
}

func (saveCommand) Run(_ []string, _ cmd.Source, o *cmd.Output, tx *world.Tx) {
	tx.Save()
	o.Printf("Saved level record of %s.", tx.World().Name())
}
