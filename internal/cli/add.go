package cli

import (
	"fmt"

	"github.com/leeovery/tasktrack/internal/task"
)

// runAdd appends a todo task and reports its ID. In quiet mode only the ID
// is printed.
func (a *App) runAdd(args []string) error {
	if err := requireArgs("add", args, 1); err != nil {
		return err
	}
	description := joinDescription(args)

	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var id int
	err = s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
		var out []task.Task
		out, id = task.Add(tasks, description)
		return out, nil
	})
	if err != nil {
		return err
	}
	a.logger.Debug("task added", "id", id)

	if a.formatConfig.Quiet {
		fmt.Fprintln(a.Stdout, id)
		return nil
	}
	a.print(a.formatter().FormatResult(&ResultData{
		Action:  "add",
		ID:      id,
		Status:  task.StatusTodo,
		Message: fmt.Sprintf("Task added successfully (ID: %d)", id),
	}))
	return nil
}
