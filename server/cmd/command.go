// Package cmd implements a small command system for operators of a server.
// Commands are registered once, looked up by name or alias and executed on
// the transaction goroutine of a world.
package cmd

import (
	"strings"

	"github.com/dm-vev/ember/server/world"
)

// Runnable is the part of a Command that is run when the command is
// executed. args holds the space separated arguments passed after the
// command name.
type Runnable interface {
	Run(args []string, src Source, o *Output, tx *world.Tx)
}

// Allower may be implemented by a Runnable to limit the sources that may
// execute it.
type Allower interface {
	Allow(src Source) bool
}

// Source is the source that executes a command, such as the console.
type Source interface {
	// Name returns the name of the source, used in log messages and output.
	Name() string
	// SendCommandOutput sends the output of a command back to the source.
	SendCommandOutput(o *Output)
}

// Command is a named command that may be executed by a Source.
type Command struct {
	name        string
	description string
	usage       string
	aliases     []string
	r           Runnable
}

// New returns a new Command with the name, description and usage passed. The
// aliases may be used in place of the name to execute the command.
func New(name, description, usage string, aliases []string, r Runnable) Command {
	return Command{name: strings.ToLower(name), description: description, usage: usage, aliases: aliases, r: r}
}

// Name returns the name of the command.
func (c Command) Name() string { return c.name }

// Description returns the description of the command.
func (c Command) Description() string { return c.description }

// Aliases returns the aliases of the command.
func (c Command) Aliases() []string { return c.aliases }

// Usage returns the usage of the command, starting with its name.
func (c Command) Usage() string {
	if c.usage == "" {
		return "/" + c.name
	}
	return "/" + c.name + " " + c.usage
}

// Allowed checks if the Source passed may execute the command.
func (c Command) Allowed(src Source) bool {
	if a, ok := c.r.(Allower); ok {
		return a.Allow(src)
	}
	return true
}

// Execute runs the command with the arguments passed and sends the output to
// src.
func (c Command) Execute(args string, src Source, tx *world.Tx) {
	o := &Output{}
	defer src.SendCommandOutput(o)

	if !c.Allowed(src) {
		o.Errorf(MessageNoPermission, c.name)
		return
	}
	c.r.Run(strings.Fields(args), src, o, tx)
}
