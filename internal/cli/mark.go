package cli

import (
	"fmt"

	"github.com/leeovery/tasktrack/internal/task"
)

func (a *App) runMarkInProgress(args []string) error {
	return a.runMark("mark-in-progress", task.StatusInProgress, args)
}

func (a *App) runMarkDone(args []string) error {
	return a.runMark("mark-done", task.StatusDone, args)
}

// runMark sets the status of one task. Any status may replace any other.
func (a *App) runMark(command string, status task.Status, args []string) error {
	if err := requireArgs(command, args, 1); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	err = s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
		if err := task.Mark(tasks, id, status); err != nil {
			return nil, err
		}
		return tasks, nil
	})
	if err != nil {
		return err
	}

	a.print(a.formatter().FormatResult(&ResultData{
		Action:  "mark",
		ID:      id,
		Status:  status,
		Message: fmt.Sprintf("Task %d marked as %s.", id, status),
	}))
	return nil
}
