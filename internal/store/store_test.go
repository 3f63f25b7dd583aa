package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/leeovery/tasktrack/internal/cache"
	"github.com/leeovery/tasktrack/internal/task"
	"github.com/leeovery/tasktrack/internal/testutil"
)

// sampleTasks returns a set of test tasks.
func sampleTasks() []task.Task {
	done := task.NewTask("Second task")
	done.Status = task.StatusDone
	return []task.Task{task.NewTask("First task"), done}
}

// newStore creates a Store over tasks.json in a fresh temp dir.
func newStore(t *testing.T, useCache bool) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(Config{Path: filepath.Join(dir, "tasks.json"), Cache: useCache})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s, dir
}

func TestNew(t *testing.T) {
	t.Run("it requires a path", func(t *testing.T) {
		if _, err := New(Config{}); err == nil {
			t.Error("expected error for empty path, got nil")
		}
	})

	t.Run("it rejects a directory as the tasks file", func(t *testing.T) {
		if _, err := New(Config{Path: t.TempDir()}); err == nil {
			t.Error("expected error for directory path, got nil")
		}
	})

	t.Run("it places the state directory next to the tasks file by default", func(t *testing.T) {
		s, dir := newStore(t, true)
		want := filepath.Join(dir, DefaultStateDir, "cache.db")
		if s.CachePath() != want {
			t.Errorf("CachePath() = %q, want %q", s.CachePath(), want)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("it returns an empty collection when the file is absent", func(t *testing.T) {
		s, dir := newStore(t, false)

		tasks, err := s.Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected no tasks, got %d", len(tasks))
		}
		if _, err := os.Stat(filepath.Join(dir, "tasks.json")); !os.IsNotExist(err) {
			t.Error("expected Load not to create the tasks file")
		}
	})

	t.Run("it returns CorruptStoreError for invalid content", func(t *testing.T) {
		s, dir := newStore(t, false)
		testutil.WriteTasksFile(t, dir, "{not json")

		_, err := s.Load()
		var corrupt *CorruptStoreError
		if !errors.As(err, &corrupt) {
			t.Fatalf("expected CorruptStoreError, got %v", err)
		}
		if corrupt.Path != s.Path() {
			t.Errorf("CorruptStoreError.Path = %q, want %q", corrupt.Path, s.Path())
		}
	})
}

func TestSave(t *testing.T) {
	t.Run("it writes the indented collection and round-trips", func(t *testing.T) {
		s, _ := newStore(t, false)

		if err := s.Save(sampleTasks()); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		content := testutil.ReadTasksFile(t, s.Path())
		if !strings.HasPrefix(content, "[\n    {\n        \"description\": \"First task\"") {
			t.Errorf("unexpected file content:\n%s", content)
		}

		tasks, err := s.Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if err := s.Save(tasks); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		if again := testutil.ReadTasksFile(t, s.Path()); again != content {
			t.Errorf("save(load()) changed content:\nbefore:\n%s\nafter:\n%s", content, again)
		}
	})

	t.Run("it leaves no temp files behind", func(t *testing.T) {
		s, dir := newStore(t, false)
		if err := s.Save(sampleTasks()); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("unexpected temp file %s", e.Name())
			}
		}
	})

	t.Run("it writes the file world-readable", func(t *testing.T) {
		s, _ := newStore(t, false)
		if err := s.Save(nil); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		info, err := os.Stat(s.Path())
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != 0644 {
			t.Errorf("expected mode 0644, got %o", info.Mode().Perm())
		}
	})
}

func TestMutate(t *testing.T) {
	t.Run("it loads, mutates and saves the collection", func(t *testing.T) {
		s, dir := newStore(t, true)
		testutil.WriteTasks(t, dir, sampleTasks())

		err := s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
			tasks, _ = task.Add(tasks, "Third task")
			return tasks, nil
		})
		if err != nil {
			t.Fatalf("Mutate returned error: %v", err)
		}

		tasks := testutil.ReadTasks(t, s.Path())
		if len(tasks) != 3 || tasks[2].Description != "Third task" {
			t.Errorf("unexpected tasks after mutate: %+v", tasks)
		}
	})

	t.Run("it creates the tasks file when absent", func(t *testing.T) {
		s, _ := newStore(t, false)

		err := s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
			tasks, _ = task.Add(tasks, "buy milk")
			return tasks, nil
		})
		if err != nil {
			t.Fatalf("Mutate returned error: %v", err)
		}

		tasks := testutil.ReadTasks(t, s.Path())
		if len(tasks) != 1 || tasks[0].Description != "buy milk" || tasks[0].Status != task.StatusTodo {
			t.Errorf("unexpected tasks: %+v", tasks)
		}
	})

	t.Run("it does not write when the mutation fails", func(t *testing.T) {
		s, dir := newStore(t, false)
		testutil.WriteTasksFile(t, dir, `[{"description":"a","status":"todo"}]`)

		err := s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
			return tasks, task.Mark(tasks, 2, task.StatusDone)
		})
		var invalid *task.InvalidIDError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidIDError, got %v", err)
		}

		if got := testutil.ReadTasksFile(t, s.Path()); got != `[{"description":"a","status":"todo"}]` {
			t.Errorf("expected file untouched, got %s", got)
		}
	})

	t.Run("it does not run the mutation on a corrupt file", func(t *testing.T) {
		s, dir := newStore(t, false)
		testutil.WriteTasksFile(t, dir, "garbage")

		called := false
		err := s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
			called = true
			return tasks, nil
		})
		var corrupt *CorruptStoreError
		if !errors.As(err, &corrupt) {
			t.Fatalf("expected CorruptStoreError, got %v", err)
		}
		if called {
			t.Error("expected mutation not to run")
		}
	})

	t.Run("it leaves the cache fresh after writing", func(t *testing.T) {
		s, dir := newStore(t, true)
		testutil.WriteTasks(t, dir, sampleTasks())

		err := s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
			return tasks, task.Mark(tasks, 1, task.StatusInProgress)
		})
		if err != nil {
			t.Fatalf("Mutate returned error: %v", err)
		}

		c, err := cache.New(s.CachePath())
		if err != nil {
			t.Fatalf("cache.New returned error: %v", err)
		}
		defer c.Close()
		fresh, err := c.IsFresh([]byte(testutil.ReadTasksFile(t, s.Path())))
		if err != nil || !fresh {
			t.Errorf("expected cache to be fresh, got %v (err %v)", fresh, err)
		}
	})

	t.Run("it releases the lock after the mutation returns", func(t *testing.T) {
		s, _ := newStore(t, false)
		if err := s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
			return nil, errors.New("boom")
		}); err == nil {
			t.Fatal("expected mutation error")
		}

		fl := flock.New(filepath.Join(filepath.Dir(s.Path()), DefaultStateDir, "lock"))
		locked, err := fl.TryLock()
		if err != nil || !locked {
			t.Fatalf("expected lock to be free, got locked=%v err=%v", locked, err)
		}
		fl.Unlock()
	})
}

func TestLocking(t *testing.T) {
	t.Run("it returns an error after the lock timeout", func(t *testing.T) {
		s, dir := newStore(t, false)
		s.lockTimeout = 50 * time.Millisecond

		if err := os.MkdirAll(filepath.Join(dir, DefaultStateDir), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		fl := flock.New(filepath.Join(dir, DefaultStateDir, "lock"))
		locked, err := fl.TryLock()
		if err != nil || !locked {
			t.Fatalf("failed to acquire external lock: %v", err)
		}
		defer fl.Unlock()

		err = s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
			return tasks, nil
		})
		if err == nil {
			t.Fatal("expected error from Mutate when lock is held, got nil")
		}
		if !strings.Contains(err.Error(), "could not acquire lock") {
			t.Errorf("expected lock timeout error, got: %v", err)
		}
	})

	t.Run("it serializes concurrent mutations", func(t *testing.T) {
		s, _ := newStore(t, false)

		const writers = 10
		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				errs[idx] = s.Mutate(func(tasks []task.Task) ([]task.Task, error) {
					tasks, _ = task.Add(tasks, "task")
					return tasks, nil
				})
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Errorf("writer %d returned error: %v", i, err)
			}
		}
		if n := len(testutil.ReadTasks(t, s.Path())); n != writers {
			t.Errorf("expected %d tasks, got %d", writers, n)
		}
	})
}

func TestQuery(t *testing.T) {
	t.Run("it builds the cache from the tasks file and runs the query", func(t *testing.T) {
		s, dir := newStore(t, true)
		testutil.WriteTasks(t, dir, sampleTasks())

		var rows []task.Row
		err := s.Query(func(db *sql.DB) error {
			var err error
			rows, err = cache.ListRows(db, task.StatusDone)
			return err
		})
		if err != nil {
			t.Fatalf("Query returned error: %v", err)
		}
		if len(rows) != 1 || rows[0].ID != 2 {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("it sees edits made to the file outside the store", func(t *testing.T) {
		s, dir := newStore(t, true)
		testutil.WriteTasks(t, dir, sampleTasks())
		if _, err := s.Rebuild(); err != nil {
			t.Fatalf("Rebuild returned error: %v", err)
		}

		testutil.WriteTasksFile(t, dir, `[{"description":"edited","status":"todo"}]`)

		var rows []task.Row
		err := s.Query(func(db *sql.DB) error {
			var err error
			rows, err = cache.ListRows(db, "")
			return err
		})
		if err != nil {
			t.Fatalf("Query returned error: %v", err)
		}
		if len(rows) != 1 || rows[0].Description != "edited" {
			t.Errorf("expected rebuilt rows, got %+v", rows)
		}
	})

	t.Run("it allows concurrent readers", func(t *testing.T) {
		s, dir := newStore(t, true)
		testutil.WriteTasks(t, dir, sampleTasks())
		if _, err := s.Rebuild(); err != nil {
			t.Fatalf("Rebuild returned error: %v", err)
		}

		const readers = 5
		var wg sync.WaitGroup
		errs := make([]error, readers)
		counts := make([]int, readers)
		for i := 0; i < readers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				errs[idx] = s.Query(func(db *sql.DB) error {
					time.Sleep(20 * time.Millisecond)
					return db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&counts[idx])
				})
			}(i)
		}
		wg.Wait()

		for i := 0; i < readers; i++ {
			if errs[i] != nil {
				t.Errorf("reader %d returned error: %v", i, errs[i])
			}
			if counts[i] != 2 {
				t.Errorf("reader %d counted %d tasks, want 2", i, counts[i])
			}
		}
	})

	t.Run("it refuses to run when the cache is disabled", func(t *testing.T) {
		s, _ := newStore(t, false)
		if err := s.Query(func(db *sql.DB) error { return nil }); err == nil {
			t.Error("expected error with cache disabled, got nil")
		}
	})
}

func TestSnapshot(t *testing.T) {
	s, dir := newStore(t, false)
	testutil.WriteTasks(t, dir, sampleTasks())

	tasks, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(tasks))
	}
}

func TestRebuild(t *testing.T) {
	t.Run("it replaces a corrupt cache and returns the task count", func(t *testing.T) {
		s, dir := newStore(t, true)
		testutil.WriteTasks(t, dir, sampleTasks())

		if err := os.MkdirAll(filepath.Join(dir, DefaultStateDir), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(s.CachePath(), []byte("junk"), 0644); err != nil {
			t.Fatalf("failed to write junk cache: %v", err)
		}

		n, err := s.Rebuild()
		if err != nil {
			t.Fatalf("Rebuild returned error: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 tasks rebuilt, got %d", n)
		}
	})
}
