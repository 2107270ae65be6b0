package cmd

import (
	"errors"
	"fmt"
)

const (
	// MessageUnknown is the error sent when a command does not exist.
	MessageUnknown = "Unknown command: %v. Use /help for a list of commands."
	// MessageUsage is the error sent when a command was executed with
	// arguments it does not accept.
	MessageUsage = "Usage: %v"
	// MessageParameterInvalid is the error sent for an argument that could not
	// be parsed.
	MessageParameterInvalid = "Invalid argument: %v"
	// MessageNoPermission is the error sent when a source may not execute a
	// command.
	MessageNoPermission = "You do not have permission to use /%v."
)

// Output holds the output of a command execution. It holds the messages and
// errors in the order they were added.
type Output struct {
	errors   []error
	messages []string
}

// Errorf formats an error message and adds it to the command output.
func (o *Output) Errorf(format string, a ...any) {
	o.errors = append(o.errors, fmt.Errorf(format, a...))
}

// Error formats an error message and adds it to the command output.
func (o *Output) Error(a ...any) {
	o.errors = append(o.errors, errors.New(fmt.Sprint(a...)))
}

// Printf formats a (non-error) message and adds it to the command output.
func (o *Output) Printf(format string, a ...any) {
	o.messages = append(o.messages, fmt.Sprintf(format, a...))
}

// Print formats a (non-error) message using the default formats for its
// operands and adds it to the command output.
func (o *Output) Print(a ...any) {
	o.messages = append(o.messages, fmt.Sprint(a...))
}

// Errors returns a list of all errors added to the command output.
func (o *Output) Errors() []error {
	return o.errors
}

// ErrorCount returns the count of errors that the command output has.
func (o *Output) ErrorCount() int {
	return len(o.errors)
}

// Messages returns a list of all messages added to the command output.
func (o *Output) Messages() []string {
	return o.messages
}

// MessageCount returns the count of (non-error) messages that the command
// output has.
func (o *Output) MessageCount() int {
	return len(o.messages)
}
