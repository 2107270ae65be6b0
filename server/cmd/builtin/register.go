// Package builtin holds the commands available to operators of every server.
package builtin

import (
	"github.com/dm-vev/ember/server/cmd"
)

// Register registers the built-in command set on the provided server.
func Register(srv serverAdapter) {
	cmd.Register(newHelpCommand())
	cmd.Register(newListCommand(srv))
	cmd.Register(newStatusCommand(srv))
	cmd.Register(newStopCommand(srv))
	cmd.Register(newWeatherCommand())
	cmd.Register(newWhitelistCommand(srv))
	cmd.Register(newSaveCommand())
	cmd.Register(newGCCommand())
}
