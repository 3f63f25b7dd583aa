package cli

import (
	"fmt"
	"strings"

	toon "github.com/toon-format/toon-go"
)

// ToonFormatter renders output in TOON (Token-Oriented Object Notation), a
// compact tabular format intended for agents and scripts.
type ToonFormatter struct{}

// FormatTaskList renders tasks as a tabular array.
// Output: tasks[N]{id,description,status}: followed by indented data rows.
// Empty lists produce the header with no rows.
func (f *ToonFormatter) FormatTaskList(data *TaskListData) string {
	if len(data.Rows) == 0 {
		return "tasks[0]{id,description,status}:\n"
	}

	objects := make([]toon.Object, len(data.Rows))
	for i, r := range data.Rows {
		objects[i] = toon.NewObject(
			toon.Field{Key: "id", Value: r.ID},
			toon.Field{Key: "description", Value: r.Description},
			toon.Field{Key: "status", Value: string(r.Status)},
		)
	}

	doc := toon.NewObject(toon.Field{Key: "tasks", Value: objects})
	result, err := toon.MarshalString(doc)
	if err != nil {
		// Fall back to a hand-built table; only descriptions need quoting.
		var b strings.Builder
		fmt.Fprintf(&b, "tasks[%d]{id,description,status}:\n", len(data.Rows))
		for _, r := range data.Rows {
			fmt.Fprintf(&b, "  %d,%q,%s\n", r.ID, r.Description, r.Status)
		}
		return b.String()
	}
	return result + "\n"
}

// FormatResult renders the outcome message of a mutating command.
func (f *ToonFormatter) FormatResult(data *ResultData) string {
	return data.Message + "\n"
}

// FormatStats renders counts as a single-row stats table.
func (f *ToonFormatter) FormatStats(data *StatsData) string {
	c := data.Counts
	return fmt.Sprintf("stats{total,todo,in_progress,done,other,malformed}:\n  %d,%d,%d,%d,%d,%d\n",
		c.Total, c.Todo, c.InProgress, c.Done, c.Other, c.Malformed)
}
