package cache

import (
	"database/sql"
	"fmt"

	"github.com/leeovery/tasktrack/internal/task"
)

// ListRows returns tasks in position order, optionally restricted to a
// status. Absent fields come back as the display placeholders.
func ListRows(db *sql.DB, filter task.Status) ([]task.Row, error) {
	query := `SELECT position, COALESCE(description, ?), COALESCE(status, ?) FROM tasks`
	args := []any{task.MissingDescription, string(task.UnknownStatus)}
	if filter != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter))
	}
	query += ` ORDER BY position`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var out []task.Row
	for rows.Next() {
		var r task.Row
		var status string
		if err := rows.Scan(&r.ID, &r.Description, &status); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		r.Status = task.Status(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}
	return out, nil
}

// StatusCounts tallies cached tasks per status in the same shape as
// task.CountByStatus.
func StatusCounts(db *sql.DB) (task.Counts, error) {
	var c task.Counts
	err := db.QueryRow(`SELECT
  COUNT(*),
  COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN description IS NULL OR status IS NULL THEN 1 ELSE 0 END), 0)
FROM tasks`,
		string(task.StatusTodo), string(task.StatusInProgress), string(task.StatusDone),
	).Scan(&c.Total, &c.Todo, &c.InProgress, &c.Done, &c.Malformed)
	if err != nil {
		return task.Counts{}, fmt.Errorf("querying status counts: %w", err)
	}
	c.Other = c.Total - c.Todo - c.InProgress - c.Done
	return c, nil
}
