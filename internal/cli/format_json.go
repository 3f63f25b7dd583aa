package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONFormatter renders output as 2-space indented JSON with snake_case keys.
type JSONFormatter struct{}

// jsonListRow is the JSON representation of a task in list output.
type jsonListRow struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// jsonResult is the JSON representation of a mutating command's outcome.
type jsonResult struct {
	Action  string `json:"action"`
	ID      int    `json:"id,omitempty"`
	Status  string `json:"status,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message"`
}

// jsonStats is the JSON representation of task statistics.
type jsonStats struct {
	Total     int          `json:"total"`
	ByStatus  jsonByStatus `json:"by_status"`
	Malformed int          `json:"malformed"`
}

// jsonByStatus holds the status breakdown in stats output.
type jsonByStatus struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Other      int `json:"other"`
}

// FormatTaskList renders tasks as a JSON array. Empty lists produce [].
func (f *JSONFormatter) FormatTaskList(data *TaskListData) string {
	rows := make([]jsonListRow, 0, len(data.Rows))
	for _, r := range data.Rows {
		rows = append(rows, jsonListRow{ID: r.ID, Description: r.Description, Status: string(r.Status)})
	}
	return jsonWrite(rows)
}

// FormatResult renders a mutating command's outcome as an object. count is
// only present for clean and rebuild.
func (f *JSONFormatter) FormatResult(data *ResultData) string {
	out := jsonResult{
		Action:  data.Action,
		ID:      data.ID,
		Status:  string(data.Status),
		Message: data.Message,
	}
	if data.Action == "clean" || data.Action == "rebuild" {
		n := data.Count
		out.Count = &n
	}
	return jsonWrite(out)
}

// FormatStats renders counts as a nested object.
func (f *JSONFormatter) FormatStats(data *StatsData) string {
	c := data.Counts
	return jsonWrite(jsonStats{
		Total: c.Total,
		ByStatus: jsonByStatus{
			Todo:       c.Todo,
			InProgress: c.InProgress,
			Done:       c.Done,
			Other:      c.Other,
		},
		Malformed: c.Malformed,
	})
}

// jsonWrite encodes v with 2-space indentation and a trailing newline.
// Task descriptions are user text, so HTML escaping is off.
func jsonWrite(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("{\"error\": %q}\n", err.Error())
	}
	return buf.String()
}
