package cli

import (
	"fmt"

	"github.com/leeovery/tasktrack/internal/task"
)

// runUpdate replaces the description of one task, keeping its status.
func (a *App) runUpdate(args []string) error {
	if err := requireArgs("update", args, 2); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	description := joinDescription(args[1:])

	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	err = s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
		if err := task.Update(tasks, id, description); err != nil {
			return nil, err
		}
		return tasks, nil
	})
	if err != nil {
		return err
	}

	a.print(a.formatter().FormatResult(&ResultData{
		Action:  "update",
		ID:      id,
		Message: fmt.Sprintf("Task %d updated successfully.", id),
	}))
	return nil
}
