package task

import (
	"fmt"
	"iter"
)

// InvalidIDError is returned when a 1-based task ID falls outside the
// collection.
type InvalidIDError struct {
	ID    int
	Count int
}

func (e *InvalidIDError) Error() string {
	switch e.Count {
	case 0:
		return fmt.Sprintf("invalid task ID %d: there are no tasks", e.ID)
	case 1:
		return fmt.Sprintf("invalid task ID %d: valid ID is 1", e.ID)
	default:
		return fmt.Sprintf("invalid task ID %d: valid IDs are 1-%d", e.ID, e.Count)
	}
}

// index converts a 1-based ID into a slice index.
func index(tasks []Task, id int) (int, error) {
	if id < 1 || id > len(tasks) {
		return 0, &InvalidIDError{ID: id, Count: len(tasks)}
	}
	return id - 1, nil
}

// Add appends a todo task and returns the new collection together with the
// new task's 1-based ID.
func Add(tasks []Task, description string) ([]Task, int) {
	tasks = append(tasks, NewTask(description))
	return tasks, len(tasks)
}

// Update replaces the description of the task with the given ID, leaving its
// status untouched.
func Update(tasks []Task, id int, description string) error {
	i, err := index(tasks, id)
	if err != nil {
		return err
	}
	tasks[i].SetDescription(description)
	return nil
}

// Delete removes the task with the given ID. Tasks after it move down one
// position, so their IDs change.
func Delete(tasks []Task, id int) ([]Task, error) {
	i, err := index(tasks, id)
	if err != nil {
		return tasks, err
	}
	out := make([]Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	out = append(out, tasks[i+1:]...)
	return out, nil
}

// Mark sets the status of the task with the given ID. Any status may be set
// from any other; there is no enforced ordering.
func Mark(tasks []Task, id int, status Status) error {
	i, err := index(tasks, id)
	if err != nil {
		return err
	}
	tasks[i].SetStatus(status)
	return nil
}

// Select yields a Row for every task, or only for tasks whose status equals
// filter when filter is non-empty. The sequence reads tasks lazily and may be
// ranged over more than once.
func Select(tasks []Task, filter Status) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for i, t := range tasks {
			row := RowOf(i+1, t)
			if filter != "" && row.Status != filter {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Clean keeps only tasks that have both a description and a status and
// reports how many were dropped.
func Clean(tasks []Task) ([]Task, int) {
	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Complete() {
			kept = append(kept, t)
		}
	}
	return kept, len(tasks) - len(kept)
}

// Counts summarizes a collection by status.
type Counts struct {
	Total      int
	Todo       int
	InProgress int
	Done       int
	// Other counts tasks with an absent or unrecognized status.
	Other int
	// Malformed counts tasks that Clean would remove.
	Malformed int
}

// CountByStatus tallies tasks per status.
func CountByStatus(tasks []Task) Counts {
	var c Counts
	for _, t := range tasks {
		c.Total++
		if !t.Complete() {
			c.Malformed++
		}
		switch t.DisplayStatus() {
		case StatusTodo:
			c.Todo++
		case StatusInProgress:
			c.InProgress++
		case StatusDone:
			c.Done++
		default:
			c.Other++
		}
	}
	return c
}
