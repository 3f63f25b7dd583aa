package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leeovery/tasktrack/internal/task"
)

// MissingArgumentError is returned when a command lacks a required argument.
type MissingArgumentError struct {
	Command string
	Usage   string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing argument for '%s'. Usage: %s", e.Command, e.Usage)
}

// NonNumericIDError is returned when a task ID argument is not an integer.
type NonNumericIDError struct {
	Arg string
}

func (e *NonNumericIDError) Error() string {
	return fmt.Sprintf("task ID must be a number, got '%s'", e.Arg)
}

// UnknownCommandError is returned for an unrecognized command name.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command '%s'. Run 'tasktrack help' for usage.", e.Name)
}

// UnknownFilterError is returned when a list filter is not a known status.
type UnknownFilterError struct {
	Value string
}

func (e *UnknownFilterError) Error() string {
	names := make([]string, len(task.Statuses))
	for i, s := range task.Statuses {
		names[i] = string(s)
	}
	return fmt.Sprintf("unknown status filter '%s'. Use: %s", e.Value, strings.Join(names, ", "))
}

// exitError carries a non-zero exit code for a command that already
// reported its outcome.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// isUserError reports whether err stems from user input rather than from
// the store or environment. User errors are printed as warnings.
func isUserError(err error) bool {
	var (
		missing   *MissingArgumentError
		nonNum    *NonNumericIDError
		unknown   *UnknownCommandError
		filter    *UnknownFilterError
		invalidID *task.InvalidIDError
	)
	return errors.As(err, &missing) ||
		errors.As(err, &nonNum) ||
		errors.As(err, &unknown) ||
		errors.As(err, &filter) ||
		errors.As(err, &invalidID)
}
