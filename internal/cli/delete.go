package cli

import (
	"fmt"

	"github.com/leeovery/tasktrack/internal/task"
)

// runDelete removes one task; later tasks move up one position.
func (a *App) runDelete(args []string) error {
	if err := requireArgs("delete", args, 1); err != nil {
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
		return task.Delete(tasks, id)
	})
	if err != nil {
		return err
	}

	a.print(a.formatter().FormatResult(&ResultData{
		Action:  "delete",
		ID:      id,
		Message: fmt.Sprintf("Task %d deleted successfully.", id),
	}))
	return nil
}
