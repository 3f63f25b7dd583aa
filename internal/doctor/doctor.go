// Package doctor provides read-only diagnostic checks for a tasks file and
// its cache. It defines the check interface, result types, and a runner that
// executes every registered check without short-circuiting.
package doctor

import "context"

// Severity indicates whether a check failure is an error or a warning.
// Errors affect exit code; warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// CheckResult holds the outcome of a single diagnostic check evaluation.
// A passing result has Passed true and empty Details and Suggestion.
type CheckResult struct {
	// Name is the check's display label (e.g. "Syntax", "Cache").
	Name     string
	Passed   bool
	Severity Severity
	// Details describes what is wrong. Empty when passed.
	Details string
	// Suggestion is remediation text, if any applies.
	Suggestion string
}

// Check is implemented by every diagnostic. A passing check returns exactly
// one result with Passed true; a failing check returns one or more results
// with Passed false.
type Check interface {
	Run(ctx context.Context) []CheckResult
}

// DiagnosticReport collects all check results from a diagnostic run.
type DiagnosticReport struct {
	Results []CheckResult
}

// HasErrors reports whether any result failed with SeverityError.
func (r *DiagnosticReport) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of failed results with SeverityError.
func (r *DiagnosticReport) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of failed results with SeverityWarning.
func (r *DiagnosticReport) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *DiagnosticReport) count(sev Severity) int {
	n := 0
	for _, result := range r.Results {
		if !result.Passed && result.Severity == sev {
			n++
		}
	}
	return n
}

// DiagnosticRunner executes an ordered list of checks.
type DiagnosticRunner struct {
	checks []Check
}

// NewDiagnosticRunner creates a runner with no registered checks.
func NewDiagnosticRunner() *DiagnosticRunner {
	return &DiagnosticRunner{}
}

// Register appends a check.
func (d *DiagnosticRunner) Register(check Check) {
	d.checks = append(d.checks, check)
}

// RunAll runs every registered check in order and collects the results.
// A cancelled context stops before the next check starts.
func (d *DiagnosticRunner) RunAll(ctx context.Context) DiagnosticReport {
	var results []CheckResult
	for _, check := range d.checks {
		if ctx.Err() != nil {
			break
		}
		results = append(results, check.Run(ctx)...)
	}
	return DiagnosticReport{Results: results}
}
