package doctor

import (
	"fmt"
	"io"
)

// FormatReport writes each result as a pass (✓) or fail (✗) line followed by
// a summary count of issues.
func FormatReport(w io.Writer, report DiagnosticReport) {
	issues := 0

	for _, r := range report.Results {
		if r.Passed {
			fmt.Fprintf(w, "✓ %s: OK\n", r.Name)
			continue
		}
		marker := "✗"
		if r.Severity == SeverityWarning {
			marker = "!"
		}
		fmt.Fprintf(w, "%s %s: %s\n", marker, r.Name, r.Details)
		if r.Suggestion != "" {
			fmt.Fprintf(w, "  → %s\n", r.Suggestion)
		}
		issues++
	}

	if len(report.Results) > 0 {
		fmt.Fprint(w, "\n")
	}

	switch issues {
	case 0:
		fmt.Fprint(w, "No issues found.\n")
	case 1:
		fmt.Fprint(w, "1 issue found.\n")
	default:
		fmt.Fprintf(w, "%d issues found.\n", issues)
	}
}

// ExitCode returns 1 when the report contains an error-severity failure and
// 0 otherwise.
func ExitCode(report DiagnosticReport) int {
	if report.HasErrors() {
		return 1
	}
	return 0
}
