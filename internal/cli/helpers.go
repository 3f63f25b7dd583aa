package cli

import (
	"strconv"
	"strings"
)

// requireArgs returns a MissingArgumentError when args has fewer than n
// entries.
func requireArgs(command string, args []string, n int) error {
	if len(args) < n {
		return &MissingArgumentError{Command: command, Usage: usageFor(command)}
	}
	return nil
}

// parseID converts a task ID argument to an int. Range checking is left to
// the task operations, which know the collection length.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, &NonNumericIDError{Arg: arg}
	}
	return id, nil
}

// joinDescription forms a description from the remaining arguments so
// unquoted multi-word descriptions are kept whole.
func joinDescription(args []string) string {
	return strings.Join(args, " ")
}
