package cli

import (
	"database/sql"
	"slices"

	"github.com/leeovery/tasktrack/internal/cache"
	"github.com/leeovery/tasktrack/internal/task"
)

// runList prints every task, or only those with the status named by the
// first argument. Further arguments are ignored.
func (a *App) runList(args []string) error {
	var filter task.Status
	if len(args) > 0 {
		st, err := task.ParseStatus(args[0])
		if err != nil {
			return &UnknownFilterError{Value: args[0]}
		}
		filter = st
	}

	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var rows []task.Row
	if s.CacheEnabled() {
		err = s.Query(func(db *sql.DB) error {
			var qerr error
			rows, qerr = cache.ListRows(db, filter)
			return qerr
		})
	} else {
		var tasks []task.Task
		tasks, err = s.Snapshot()
		rows = slices.Collect(task.Select(tasks, filter))
	}
	if err != nil {
		return err
	}
	a.logger.Debug("listing tasks", "filter", filter, "rows", len(rows))

	a.print(a.formatter().FormatTaskList(&TaskListData{Filter: filter, Rows: rows}))
	return nil
}
