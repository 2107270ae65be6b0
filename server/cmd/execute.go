package cmd

import (
	"strings"

	"github.com/dm-vev/ember/server/world"
)

// ExecuteLine executes a command line on behalf of the Source passed. The
// leading slash of commandLine is optional. If the command cannot be found,
// an appropriate error is sent back to the Source. The optional before
// function may be supplied to intercept execution; returning false from it
// will stop execution.
func ExecuteLine(source Source, commandLine string, tx *world.Tx, before func(Command, []string) bool) {
	if source == nil {
		panic("cmd.ExecuteLine: source must not be nil")
	}
	commandLine = strings.TrimPrefix(strings.TrimSpace(commandLine), "/")
	name, rest, _ := strings.Cut(commandLine, " ")
	if name == "" {
		return
	}

	command, ok := ByAlias(name)
	if !ok {
		output := &Output{}
		output.Errorf(MessageUnknown, name)
		source.SendCommandOutput(output)
		return
	}
	if before != nil && !before(command, strings.Fields(rest)) {
		return
	}
	command.Execute(rest, source, tx)
}
