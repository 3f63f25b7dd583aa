// Package testutil provides shared test helpers for the tasktrack project.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leeovery/tasktrack/internal/task"
)

// WriteTasksFile writes raw content to tasks.json in dir and returns its path.
func WriteTasksFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write tasks file: %v", err)
	}
	return path
}

// WriteTasks serializes tasks into tasks.json in dir and returns its path.
func WriteTasks(t *testing.T, dir string, tasks []task.Task) string {
	t.Helper()
	data, err := task.Serialize(tasks)
	if err != nil {
		t.Fatalf("failed to serialize tasks: %v", err)
	}
	return WriteTasksFile(t, dir, string(data))
}

// ReadTasksFile returns the raw content of the file at path.
func ReadTasksFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read tasks file: %v", err)
	}
	return string(data)
}

// ReadTasks parses the tasks file at path.
func ReadTasks(t *testing.T, path string) []task.Task {
	t.Helper()
	tasks, err := task.Parse([]byte(ReadTasksFile(t, path)))
	if err != nil {
		t.Fatalf("failed to parse tasks file: %v", err)
	}
	return tasks
}
