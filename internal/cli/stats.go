package cli

import (
	"database/sql"

	"github.com/leeovery/tasktrack/internal/cache"
	"github.com/leeovery/tasktrack/internal/task"
)

// runStats prints task counts per status.
func (a *App) runStats(_ []string) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var counts task.Counts
	if s.CacheEnabled() {
		err = s.Query(func(db *sql.DB) error {
			var qerr error
			counts, qerr = cache.StatusCounts(db)
			return qerr
		})
	} else {
		var tasks []task.Task
		tasks, err = s.Snapshot()
		counts = task.CountByStatus(tasks)
	}
	if err != nil {
		return err
	}

	a.print(a.formatter().FormatStats(&StatsData{Counts: counts}))
	return nil
}
