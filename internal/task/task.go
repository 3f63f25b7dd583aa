// Package task defines the core task model, status values, and the pure
// operations that mutate or read an in-memory task collection.
package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status represents a task's lifecycle state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Placeholders shown for fields missing from a stored record.
const (
	UnknownStatus      Status = "unknown"
	MissingDescription        = "No description"
)

// Statuses lists the recognized statuses in lifecycle order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus converts user input to a Status. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	normalized := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == normalized {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether s is one of the recognized statuses.
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

const (
	keyDescription = "description"
	keyStatus      = "status"
)

// Task represents a single task in the tracker.
//
// A Task decoded from disk remembers which of its fields were present, so
// records missing a description or status can be written back unchanged and
// removed later by Clean. Keys other than description and status are kept
// as-is. A literal Task{} has both fields present.
type Task struct {
	Description string
	Status      Status

	missingDescription bool
	missingStatus      bool

	// extra holds unrecognized keys, plus description or status when their
	// stored value is not a JSON string.
	extra map[string]json.RawMessage
}

// NewTask creates a todo task with the given description.
func NewTask(description string) Task {
	return Task{
		Description: description,
		Status:      StatusTodo,
	}
}

// HasDescription reports whether the description field is present.
func (t Task) HasDescription() bool {
	return !t.missingDescription
}

// HasStatus reports whether the status field is present.
func (t Task) HasStatus() bool {
	return !t.missingStatus
}

// Complete reports whether both description and status are present. The
// status value itself is not validated.
func (t Task) Complete() bool {
	return t.HasDescription() && t.HasStatus()
}

// SetDescription replaces the description, marking the field present.
func (t *Task) SetDescription(description string) {
	t.Description = description
	t.missingDescription = false
	delete(t.extra, keyDescription)
}

// SetStatus replaces the status, marking the field present.
func (t *Task) SetStatus(status Status) {
	t.Status = status
	t.missingStatus = false
	delete(t.extra, keyStatus)
}

// DisplayDescription returns the description, or MissingDescription when absent.
func (t Task) DisplayDescription() string {
	if t.missingDescription {
		return MissingDescription
	}
	return t.Description
}

// DisplayStatus returns the status, or UnknownStatus when absent.
func (t Task) DisplayStatus() Status {
	if t.missingStatus {
		return UnknownStatus
	}
	return t.Status
}

// WithoutDescription returns a copy of t with the description field absent.
func (t Task) WithoutDescription() Task {
	t.Description = ""
	t.missingDescription = true
	t.extra = cloneExtra(t.extra)
	delete(t.extra, keyDescription)
	return t
}

// WithoutStatus returns a copy of t with the status field absent.
func (t Task) WithoutStatus() Task {
	t.Status = ""
	t.missingStatus = true
	t.extra = cloneExtra(t.extra)
	delete(t.extra, keyStatus)
	return t
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Row is the display projection of a task: its 1-based position in the
// collection plus description and status with placeholders applied.
type Row struct {
	ID          int
	Description string
	Status      Status
}

// RowOf builds the Row for the task at the given 1-based position.
func RowOf(id int, t Task) Row {
	return Row{
		ID:          id,
		Description: t.DisplayDescription(),
		Status:      t.DisplayStatus(),
	}
}
