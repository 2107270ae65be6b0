package cmd

import (
	"strings"
	"sync"
)

var (
	commandMu sync.RWMutex
	commands  = map[string]Command{}
)

// Register registers a command by its name and all of its aliases. A command
// registered earlier under the same name or alias is replaced.
func Register(command Command) {
	commandMu.Lock()
	defer commandMu.Unlock()

	commands[command.name] = command
	for _, alias := range command.aliases {
		commands[strings.ToLower(alias)] = command
	}
}

// ByAlias looks up a command by one of its aliases or its name.
func ByAlias(alias string) (Command, bool) {
	commandMu.RLock()
	defer commandMu.RUnlock()

	command, ok := commands[strings.ToLower(alias)]
	return command, ok
}

// Commands returns a map of all registered commands indexed by the alias
// they were registered with.
func Commands() map[string]Command {
	commandMu.RLock()
	defer commandMu.RUnlock()

	m := make(map[string]Command, len(commands))
	for alias, command := range commands {
		m[alias] = command
	}
	return m
}
