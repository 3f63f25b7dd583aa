package cli

import (
	"errors"
	"io"
	"os"

	"github.com/leeovery/tasktrack/internal/task"
)

// Format represents the output format type.
type Format string

// Format constants for output selection.
const (
	FormatToon   Format = "toon"
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

// FormatConfig holds output configuration passed to handlers.
type FormatConfig struct {
	Format Format
	Quiet  bool
}

// TaskListData holds data for formatting a list of tasks.
type TaskListData struct {
	// Filter is the status the list was narrowed to, or empty for all tasks.
	Filter task.Status
	Rows   []task.Row
}

// ResultData describes the outcome of a command that changed the store.
type ResultData struct {
	// Action is add, update, delete, mark, clean or rebuild.
	Action string
	// ID is the affected task position, zero when not applicable.
	ID     int
	Status task.Status
	// Count is the number of tasks removed by clean or cached by rebuild.
	Count   int
	Message string
}

// StatsData holds statistics for formatting.
type StatsData struct {
	task.Counts
}

// Formatter defines the interface for output formatting.
// All commands use a Formatter to produce output strings.
type Formatter interface {
	// FormatTaskList formats a list of tasks.
	FormatTaskList(data *TaskListData) string

	// FormatResult formats the outcome of a mutating command.
	FormatResult(data *ResultData) string

	// FormatStats formats statistics output.
	FormatStats(data *StatsData) string
}

// DetectTTY checks if the given writer is a terminal (TTY).
// Returns false if writer is not an *os.File, if Stat() fails,
// or if the file is not a character device.
func DetectTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

// ResolveFormat determines the output format from flags, the configured
// format and TTY status. Flags win over configuration. Returns error if more
// than one format flag is set. With neither, returns Pretty for TTY and Toon
// otherwise.
func ResolveFormat(toonFlag, prettyFlag, jsonFlag bool, configured string, isTTY bool) (Format, error) {
	count := 0
	for _, set := range []bool{toonFlag, prettyFlag, jsonFlag} {
		if set {
			count++
		}
	}
	if count > 1 {
		return "", errors.New("cannot specify multiple format flags (--toon, --pretty, --json)")
	}

	switch {
	case toonFlag:
		return FormatToon, nil
	case prettyFlag:
		return FormatPretty, nil
	case jsonFlag:
		return FormatJSON, nil
	}

	switch Format(configured) {
	case FormatToon, FormatPretty, FormatJSON:
		return Format(configured), nil
	}

	if isTTY {
		return FormatPretty, nil
	}
	return FormatToon, nil
}

// Formatter returns the appropriate Formatter for the configured format.
func (c FormatConfig) Formatter() Formatter {
	switch c.Format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatPretty:
		return &PrettyFormatter{}
	default:
		return &ToonFormatter{}
	}
}
