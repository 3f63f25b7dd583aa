package cli

import (
	"fmt"

	"github.com/leeovery/tasktrack/internal/task"
)

// runClean drops tasks missing a description or status and reports how many
// were removed. The file is rewritten even when nothing is removed.
func (a *App) runClean(_ []string) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var removed int
	err = s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
		var kept []task.Task
		kept, removed = task.Clean(tasks)
		return kept, nil
	})
	if err != nil {
		return err
	}

	a.print(a.formatter().FormatResult(&ResultData{
		Action:  "clean",
		Count:   removed,
		Message: fmt.Sprintf("Cleaned tasks file. Removed %d invalid task(s).", removed),
	}))
	return nil
}
