package doctor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leeovery/tasktrack/internal/cache"
	"github.com/leeovery/tasktrack/internal/task"
)

type staticCheck struct {
	results []CheckResult
	ran     *int
}

func (c staticCheck) Run(_ context.Context) []CheckResult {
	if c.ran != nil {
		*c.ran++
	}
	return c.results
}

func writeTasksFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write tasks file: %v", err)
	}
	return path
}

func TestDiagnosticRunner(t *testing.T) {
	t.Run("it runs every check without short-circuiting", func(t *testing.T) {
		ran := 0
		r := NewDiagnosticRunner()
		r.Register(staticCheck{results: []CheckResult{{Name: "A", Severity: SeverityError}}, ran: &ran})
		r.Register(staticCheck{results: []CheckResult{{Name: "B", Passed: true}}, ran: &ran})

		report := r.RunAll(context.Background())
		if ran != 2 {
			t.Errorf("expected 2 checks to run, got %d", ran)
		}
		if len(report.Results) != 2 {
			t.Errorf("expected 2 results, got %d", len(report.Results))
		}
		if !report.HasErrors() || report.ErrorCount() != 1 {
			t.Errorf("expected 1 error, got %d", report.ErrorCount())
		}
	})

	t.Run("it returns an empty report with no checks", func(t *testing.T) {
		report := NewDiagnosticRunner().RunAll(context.Background())
		if len(report.Results) != 0 || report.HasErrors() {
			t.Errorf("expected empty report, got %+v", report)
		}
	})
}

func TestFormatReport(t *testing.T) {
	t.Run("it prints passes, failures and a summary", func(t *testing.T) {
		report := DiagnosticReport{Results: []CheckResult{
			{Name: "Syntax", Passed: true},
			{Name: "Schema", Severity: SeverityError, Details: "task 2: missing properties: 'description'", Suggestion: "Run `tasktrack clean`"},
			{Name: "Cache", Severity: SeverityWarning, Details: "stale"},
		}}

		var buf bytes.Buffer
		FormatReport(&buf, report)
		out := buf.String()

		for _, want := range []string{
			"✓ Syntax: OK\n",
			"✗ Schema: task 2: missing properties: 'description'\n",
			"  → Run `tasktrack clean`\n",
			"! Cache: stale\n",
			"2 issues found.\n",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("it reports no issues", func(t *testing.T) {
		var buf bytes.Buffer
		FormatReport(&buf, DiagnosticReport{Results: []CheckResult{{Name: "Syntax", Passed: true}}})
		if !strings.HasSuffix(buf.String(), "No issues found.\n") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

func TestExitCode(t *testing.T) {
	warnOnly := DiagnosticReport{Results: []CheckResult{{Severity: SeverityWarning}}}
	if ExitCode(warnOnly) != 0 {
		t.Error("expected warnings not to affect exit code")
	}
	withError := DiagnosticReport{Results: []CheckResult{{Severity: SeverityError}}}
	if ExitCode(withError) != 1 {
		t.Error("expected errors to give exit code 1")
	}
}

func TestSyntaxCheck(t *testing.T) {
	t.Run("it passes for a valid file", func(t *testing.T) {
		c := &SyntaxCheck{Path: writeTasksFile(t, `[{"description":"a","status":"todo"}]`)}
		results := c.Run(context.Background())
		if len(results) != 1 || !results[0].Passed {
			t.Errorf("expected pass, got %+v", results)
		}
	})

	t.Run("it passes when the file is absent", func(t *testing.T) {
		c := &SyntaxCheck{Path: filepath.Join(t.TempDir(), "tasks.json")}
		if results := c.Run(context.Background()); !results[0].Passed {
			t.Errorf("expected pass, got %+v", results)
		}
	})

	t.Run("it reports the line of a syntax error", func(t *testing.T) {
		c := &SyntaxCheck{Path: writeTasksFile(t, "[\n  {\"description\": \"a\",\n  oops\n]")}
		results := c.Run(context.Background())
		if len(results) != 1 || results[0].Passed {
			t.Fatalf("expected failure, got %+v", results)
		}
		if results[0].Severity != SeverityError {
			t.Errorf("expected error severity, got %s", results[0].Severity)
		}
		if !strings.Contains(results[0].Details, "line 3") {
			t.Errorf("expected line 3 in details, got %q", results[0].Details)
		}
	})

	t.Run("it fails for a non-array document", func(t *testing.T) {
		c := &SyntaxCheck{Path: writeTasksFile(t, `{"description":"a"}`)}
		if results := c.Run(context.Background()); results[0].Passed {
			t.Error("expected failure for object document")
		}
	})
}

func TestSchemaCheck(t *testing.T) {
	t.Run("it passes for well-formed tasks", func(t *testing.T) {
		c := &SchemaCheck{Path: writeTasksFile(t, `[{"description":"a","status":"todo"},{"description":"b","status":"done"}]`)}
		results := c.Run(context.Background())
		if len(results) != 1 || !results[0].Passed {
			t.Errorf("expected pass, got %+v", results)
		}
	})

	t.Run("it reports missing fields as errors naming the task", func(t *testing.T) {
		c := &SchemaCheck{Path: writeTasksFile(t, `[{"description":"a","status":"todo"},{"status":"done"}]`)}
		results := c.Run(context.Background())
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %+v", results)
		}
		r := results[0]
		if r.Passed || r.Severity != SeverityError {
			t.Errorf("expected error, got %+v", r)
		}
		if !strings.HasPrefix(r.Details, "task 2") {
			t.Errorf("expected details to name task 2, got %q", r.Details)
		}
		if !strings.Contains(r.Suggestion, "clean") {
			t.Errorf("expected clean suggestion, got %q", r.Suggestion)
		}
	})

	t.Run("it reports unrecognized statuses as warnings", func(t *testing.T) {
		c := &SchemaCheck{Path: writeTasksFile(t, `[{"description":"a","status":"blocked"}]`)}
		results := c.Run(context.Background())
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %+v", results)
		}
		if results[0].Passed || results[0].Severity != SeverityWarning {
			t.Errorf("expected warning, got %+v", results[0])
		}
		if !strings.HasPrefix(results[0].Details, "task 1 status") {
			t.Errorf("unexpected details %q", results[0].Details)
		}
	})

	t.Run("it passes for an absent or empty file", func(t *testing.T) {
		for _, c := range []*SchemaCheck{
			{Path: filepath.Join(t.TempDir(), "tasks.json")},
			{Path: writeTasksFile(t, "")},
		} {
			if results := c.Run(context.Background()); !results[0].Passed {
				t.Errorf("expected pass, got %+v", results)
			}
		}
	})
}

func TestDescribeLocation(t *testing.T) {
	tests := map[string]string{
		"":          "tasks file",
		"/0":        "task 1",
		"/4/status": "task 5 status",
	}
	for in, want := range tests {
		if got := describeLocation(in); got != want {
			t.Errorf("describeLocation(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCacheStalenessCheck(t *testing.T) {
	content := `[{"description":"a","status":"todo"}]`

	t.Run("it warns when the cache is missing", func(t *testing.T) {
		path := writeTasksFile(t, content)
		c := &CacheStalenessCheck{Path: path, CachePath: filepath.Join(filepath.Dir(path), "cache.db")}
		results := c.Run(context.Background())
		if results[0].Passed || results[0].Severity != SeverityWarning {
			t.Errorf("expected warning, got %+v", results)
		}
	})

	t.Run("it passes for a fresh cache and warns once the file changes", func(t *testing.T) {
		path := writeTasksFile(t, content)
		cachePath := filepath.Join(filepath.Dir(path), "cache.db")

		tasks, err := task.Parse([]byte(content))
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		cc, err := cache.EnsureFresh(cachePath, tasks, []byte(content), nil)
		if err != nil {
			t.Fatalf("EnsureFresh returned error: %v", err)
		}
		cc.Close()

		c := &CacheStalenessCheck{Path: path, CachePath: cachePath}
		if results := c.Run(context.Background()); !results[0].Passed {
			t.Fatalf("expected pass, got %+v", results)
		}

		if err := os.WriteFile(path, []byte(`[]`), 0644); err != nil {
			t.Fatalf("failed to rewrite tasks file: %v", err)
		}
		results := c.Run(context.Background())
		if results[0].Passed || !strings.Contains(results[0].Details, "stale") {
			t.Errorf("expected stale warning, got %+v", results)
		}
	})
}
