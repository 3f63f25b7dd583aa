package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/leeovery/tasktrack/internal/task"
	"github.com/leeovery/tasktrack/internal/testutil"
)

// runCLI runs the app in dir with an empty environment and no user config.
func runCLI(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	return runCLIWithEnv(t, dir, map[string]string{}, args...)
}

func runCLIWithEnv(t *testing.T, dir string, env map[string]string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := &App{
		Stdout: &stdout,
		Stderr: &stderr,
		Cwd:    dir,
		Getenv: func(k string) string { return env[k] },
	}
	code := app.Run(append([]string{"tasktrack"}, args...))
	return stdout.String(), stderr.String(), code
}

// tasksPath returns the default tasks file location in dir.
func tasksPath(dir string) string {
	return filepath.Join(dir, "tasks.json")
}

// setupTasks writes tasks to dir/tasks.json and returns dir.
func setupTasks(t *testing.T, tasks ...task.Task) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTasks(t, dir, tasks)
	return dir
}

func newTask(description string, status task.Status) task.Task {
	tk := task.NewTask(description)
	tk.SetStatus(status)
	return tk
}
