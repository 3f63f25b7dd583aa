package cli

import (
	"fmt"
	"strings"

	"github.com/leeovery/tasktrack/internal/task"
)

// PrettyFormatter formats output as human-readable text for terminals.
type PrettyFormatter struct{}

// statusMarker returns the glyph shown before a task's description.
func statusMarker(s task.Status) string {
	switch s {
	case task.StatusTodo:
		return "📝"
	case task.StatusInProgress:
		return "⏳"
	case task.StatusDone:
		return "✅"
	default:
		return "❔"
	}
}

// FormatTaskList writes one "[id] marker description (status)" line per
// task. An empty unfiltered list produces "No tasks found."; a filter that
// matches nothing produces no output.
func (f *PrettyFormatter) FormatTaskList(data *TaskListData) string {
	if len(data.Rows) == 0 {
		if data.Filter != "" {
			return ""
		}
		return "No tasks found.\n"
	}

	var b strings.Builder
	for _, r := range data.Rows {
		fmt.Fprintf(&b, "[%d] %s %s (%s)\n", r.ID, statusMarker(r.Status), r.Description, r.Status)
	}
	return b.String()
}

// FormatResult writes the outcome message of a mutating command.
func (f *PrettyFormatter) FormatResult(data *ResultData) string {
	return data.Message + "\n"
}

// FormatStats writes the counts with aligned labels.
func (f *PrettyFormatter) FormatStats(data *StatsData) string {
	c := data.Counts
	var b strings.Builder
	fmt.Fprintf(&b, "Total:       %d\n", c.Total)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Status:")
	fmt.Fprintf(&b, "  Todo:        %d\n", c.Todo)
	fmt.Fprintf(&b, "  In progress: %d\n", c.InProgress)
	fmt.Fprintf(&b, "  Done:        %d\n", c.Done)
	if c.Other > 0 {
		fmt.Fprintf(&b, "  Other:       %d\n", c.Other)
	}
	if c.Malformed > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Malformed:   %d (run `tasktrack clean` to remove)\n", c.Malformed)
	}
	return b.String()
}
