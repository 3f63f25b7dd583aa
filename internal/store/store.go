// Package store owns the on-disk task collection. It loads and saves the
// whole collection as one unit and wraps load-mutate-save in a file-locked
// transaction, keeping an optional SQLite query cache in step.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/leeovery/tasktrack/internal/cache"
	"github.com/leeovery/tasktrack/internal/task"
)

const (
	// DefaultFile is the tasks file name used when none is configured.
	DefaultFile = "tasks.json"
	// DefaultStateDir holds the lock file and cache database.
	DefaultStateDir = ".tasktrack"

	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 10 * time.Millisecond
)

// Config locates the tasks file and the store's auxiliary files.
type Config struct {
	// Path is the tasks file. Required.
	Path string
	// StateDir holds the lock file and cache.db. Defaults to DefaultStateDir
	// next to Path.
	StateDir string
	// LockTimeout bounds how long to wait for the file lock. Defaults to 5s.
	LockTimeout time.Duration
	// Cache enables the SQLite query cache.
	Cache bool
}

// CorruptStoreError is returned when the tasks file exists but does not
// contain a valid task array.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("tasks file %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// Store reads and writes the task collection.
type Store struct {
	path        string
	stateDir    string
	lockPath    string
	cachePath   string
	lockTimeout time.Duration
	useCache    bool
	logger      *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes the store's debug and warning output to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store from cfg. The tasks file need not exist yet.
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("tasks file path is required")
	}
	if info, err := os.Stat(cfg.Path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("tasks file path is a directory: %s", cfg.Path)
	}

	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = filepath.Join(filepath.Dir(cfg.Path), DefaultStateDir)
	}
	timeout := cfg.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}

	s := &Store{
		path:        cfg.Path,
		stateDir:    stateDir,
		lockPath:    filepath.Join(stateDir, "lock"),
		cachePath:   filepath.Join(stateDir, "cache.db"),
		lockTimeout: timeout,
		useCache:    cfg.Cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the tasks file path.
func (s *Store) Path() string { return s.path }

// CachePath returns the SQLite cache path.
func (s *Store) CachePath() string { return s.cachePath }

// CacheEnabled reports whether the SQLite cache is in use.
func (s *Store) CacheEnabled() bool { return s.useCache }

// Close is a no-op; the store opens and closes its resources per operation.
func (s *Store) Close() error {
	return nil
}

func (s *Store) debug(msg string, keyvals ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, keyvals...)
	}
}

func (s *Store) warn(msg string, keyvals ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, keyvals...)
	}
}

// ReadRaw returns the tasks file content. A missing file yields nil content
// and no error.
func (s *Store) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}
	return data, nil
}

func (s *Store) parse(raw []byte) ([]task.Task, error) {
	tasks, err := task.Parse(raw)
	if err != nil {
		return nil, &CorruptStoreError{Path: s.path, Err: err}
	}
	return tasks, nil
}

// Load returns the full collection, or an empty one if the tasks file does
// not exist. It takes no lock.
func (s *Store) Load() ([]task.Task, error) {
	raw, err := s.ReadRaw()
	if err != nil {
		return nil, err
	}
	return s.parse(raw)
}

// Save replaces the tasks file with the serialized collection. It takes no
// lock and does not touch the cache.
func (s *Store) Save(tasks []task.Task) error {
	_, err := s.write(tasks)
	return err
}

func (s *Store) write(tasks []task.Task) ([]byte, error) {
	data, err := task.Serialize(tasks)
	if err != nil {
		return nil, err
	}
	s.debug("atomic write", "path", s.path, "tasks", len(tasks))
	if err := writeAtomic(s.path, data); err != nil {
		return nil, fmt.Errorf("failed to write tasks file: %w", err)
	}
	return data, nil
}

// lock acquires the store's file lock, shared or exclusive, and returns the
// function that releases it.
func (s *Store) lock(shared bool) (func(), error) {
	if err := os.MkdirAll(s.stateDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create state directory %s: %w", s.stateDir, err)
	}

	kind := "exclusive"
	if shared {
		kind = "shared"
	}
	s.debug("acquiring lock", "kind", kind, "path", s.lockPath)

	fl := flock.New(s.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	var locked bool
	var err error
	if shared {
		locked, err = fl.TryRLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = fl.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil || !locked {
		return nil, fmt.Errorf("could not acquire lock on %s - another process may be using tasktrack", s.lockPath)
	}
	s.debug("lock acquired", "kind", kind)

	return func() {
		fl.Unlock()
		s.debug("lock released", "kind", kind)
	}, nil
}

// Mutate runs fn as one transaction: acquire the exclusive lock, load the
// collection, apply fn, save the result and refresh the cache. If fn returns
// an error nothing is written. The lock is released on every path.
func (s *Store) Mutate(fn func(tasks []task.Task) ([]task.Task, error)) error {
	unlock, err := s.lock(false)
	if err != nil {
		return err
	}
	defer unlock()

	raw, err := s.ReadRaw()
	if err != nil {
		return err
	}
	tasks, err := s.parse(raw)
	if err != nil {
		return err
	}
	s.debug("loaded tasks", "count", len(tasks))

	modified, err := fn(tasks)
	if err != nil {
		return err
	}

	data, err := s.write(modified)
	if err != nil {
		return err
	}

	if !s.useCache {
		return nil
	}

	// The tasks file is the source of truth; a failed cache update only
	// leaves the cache stale until the next read rebuilds it.
	c, err := cache.New(s.cachePath)
	if err != nil {
		s.warn("failed to open cache for update", "err", err)
		return nil
	}
	defer c.Close()

	if err := c.Rebuild(modified, data); err != nil {
		s.warn("failed to update cache after write", "err", err)
		return nil
	}
	s.debug("cache updated")
	return nil
}

// Snapshot loads the collection under a shared lock.
func (s *Store) Snapshot() ([]task.Task, error) {
	unlock, err := s.lock(true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.Load()
}

// Query runs fn against the SQLite cache under a shared lock, rebuilding the
// cache first if it no longer matches the tasks file.
func (s *Store) Query(fn func(db *sql.DB) error) error {
	if !s.useCache {
		return errors.New("query cache is disabled")
	}

	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()

	raw, err := s.ReadRaw()
	if err != nil {
		return err
	}
	tasks, err := s.parse(raw)
	if err != nil {
		return err
	}

	s.debug("checking cache freshness", "path", s.cachePath)
	c, err := cache.EnsureFresh(s.cachePath, tasks, raw, s.logger)
	if err != nil {
		return fmt.Errorf("failed to ensure cache freshness: %w", err)
	}
	defer c.Close()

	return fn(c.DB())
}

// Rebuild deletes and recreates the cache from the tasks file, returning the
// number of tasks cached.
func (s *Store) Rebuild() (int, error) {
	unlock, err := s.lock(false)
	if err != nil {
		return 0, err
	}
	defer unlock()

	s.debug("deleting cache", "path", s.cachePath)
	if err := os.Remove(s.cachePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("failed to delete cache: %w", err)
	}

	raw, err := s.ReadRaw()
	if err != nil {
		return 0, err
	}
	tasks, err := s.parse(raw)
	if err != nil {
		return 0, err
	}

	c, err := cache.New(s.cachePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create cache: %w", err)
	}
	defer c.Close()

	if err := c.Rebuild(tasks, raw); err != nil {
		return 0, fmt.Errorf("failed to rebuild cache: %w", err)
	}
	s.debug("cache rebuilt", "tasks", len(tasks))
	return len(tasks), nil
}
