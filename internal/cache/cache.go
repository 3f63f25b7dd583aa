// Package cache provides a SQLite-based query cache for tasks that
// auto-rebuilds from the tasks file using SHA256 freshness detection.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/leeovery/tasktrack/internal/task"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
  position INTEGER PRIMARY KEY,
  description TEXT,
  status TEXT
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`

// Cache wraps a SQLite database used as a query cache for tasks.
// A NULL description or status column encodes a field absent from the file.
type Cache struct {
	db   *sql.DB
	path string
}

// New opens or creates a SQLite cache database at the given path and
// initializes the schema if not present.
func New(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}

	return &Cache{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection for queries.
func (c *Cache) DB() *sql.DB {
	return c.db
}

// Rebuild clears all existing rows and repopulates the cache from the given
// tasks within a single transaction, storing the SHA256 hash of the raw
// tasks file alongside.
func (c *Cache) Rebuild(tasks []task.Task, raw []byte) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning rebuild transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("clearing metadata: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO tasks (position, description, status) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing task insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		var description, status *string
		if t.HasDescription() {
			description = &t.Description
		}
		if t.HasStatus() {
			s := string(t.Status)
			status = &s
		}
		if _, err := stmt.Exec(i+1, description, status); err != nil {
			return fmt.Errorf("inserting task %d: %w", i+1, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO metadata (key, value) VALUES ('file_hash', ?)`, computeHash(raw)); err != nil {
		return fmt.Errorf("storing file hash: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rebuild transaction: %w", err)
	}
	return nil
}

// IsFresh reports whether the stored hash matches the hash of raw.
func (c *Cache) IsFresh(raw []byte) (bool, error) {
	var stored string
	err := c.db.QueryRow("SELECT value FROM metadata WHERE key='file_hash'").Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("querying file hash: %w", err)
	}
	return stored == computeHash(raw), nil
}

// EnsureFresh opens the cache at dbPath, checks freshness against raw, and
// rebuilds it when stale or missing. A corrupt cache file is deleted and
// recreated. logger may be nil.
func EnsureFresh(dbPath string, tasks []task.Task, raw []byte, logger *log.Logger) (*Cache, error) {
	c, err := New(dbPath)
	if err != nil {
		warn(logger, "cache corrupt or unreadable, recreating", "err", err)
		c, err = recreate(dbPath)
		if err != nil {
			return nil, err
		}
	}

	fresh, err := c.IsFresh(raw)
	if err != nil {
		warn(logger, "cache query failed, recreating", "err", err)
		c.Close()
		c, err = recreate(dbPath)
		if err != nil {
			return nil, err
		}
		fresh = false
	}

	if !fresh {
		if logger != nil {
			logger.Debug("cache is stale, rebuilding", "tasks", len(tasks))
		}
		if err := c.Rebuild(tasks, raw); err != nil {
			c.Close()
			return nil, fmt.Errorf("rebuilding cache: %w", err)
		}
	}

	return c, nil
}

func warn(logger *log.Logger, msg string, keyvals ...any) {
	if logger != nil {
		logger.Warn(msg, keyvals...)
	}
}

// recreate removes the cache file at dbPath and creates a fresh database.
func recreate(dbPath string) (*Cache, error) {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing corrupt cache: %w", err)
	}
	c, err := New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("recreating cache: %w", err)
	}
	return c, nil
}

// computeHash returns the hex-encoded SHA256 hash of the given data.
func computeHash(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}
