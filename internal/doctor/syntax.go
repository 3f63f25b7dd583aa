package doctor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/leeovery/tasktrack/internal/task"
)

const syntaxCheckName = "Syntax"

// SyntaxCheck verifies the tasks file parses as an array of task records.
// A missing file passes: it is treated as an empty collection.
type SyntaxCheck struct {
	Path string
}

// Run executes the syntax check.
func (c *SyntaxCheck) Run(_ context.Context) []CheckResult {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []CheckResult{{Name: syntaxCheckName, Passed: true}}
		}
		return []CheckResult{{
			Name:       syntaxCheckName,
			Passed:     false,
			Severity:   SeverityError,
			Details:    fmt.Sprintf("tasks file unreadable: %v", err),
			Suggestion: "Check the file's permissions",
		}}
	}

	if _, err := task.Parse(data); err != nil {
		return []CheckResult{{
			Name:       syntaxCheckName,
			Passed:     false,
			Severity:   SeverityError,
			Details:    describeParseError(data, err),
			Suggestion: "Manual fix required",
		}}
	}

	return []CheckResult{{Name: syntaxCheckName, Passed: true}}
}

// describeParseError adds a line number to JSON syntax errors.
func describeParseError(data []byte, err error) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line := 1 + bytes.Count(data[:min(int(syntaxErr.Offset), len(data))], []byte("\n"))
		return fmt.Sprintf("line %d: invalid JSON: %v", line, err)
	}
	return fmt.Sprintf("invalid tasks file: %v", err)
}
