package cli

import (
	"errors"
	"fmt"
)

// runRebuild forces a complete SQLite cache rebuild from the tasks file,
// bypassing the freshness check.
func (a *App) runRebuild(_ []string) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if !s.CacheEnabled() {
		return errors.New("the query cache is disabled (cache = false)")
	}

	count, err := s.Rebuild()
	if err != nil {
		return err
	}
	a.logger.Debug("cache rebuilt", "path", s.CachePath(), "tasks", count)

	a.print(a.formatter().FormatResult(&ResultData{
		Action:  "rebuild",
		Count:   count,
		Message: fmt.Sprintf("Rebuilt cache: %d tasks", count),
	}))
	return nil
}
