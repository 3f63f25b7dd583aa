package cli

import (
	"context"

	"github.com/leeovery/tasktrack/internal/doctor"
)

// runCheck runs the read-only diagnostics and prints the report. The exit
// code is 1 when any check reports an error.
func (a *App) runCheck(_ []string) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	runner := doctor.NewDiagnosticRunner()
	runner.Register(&doctor.SyntaxCheck{Path: s.Path()})
	runner.Register(&doctor.SchemaCheck{Path: s.Path()})
	if s.CacheEnabled() {
		runner.Register(&doctor.CacheStalenessCheck{Path: s.Path(), CachePath: s.CachePath()})
	}

	report := runner.RunAll(context.Background())
	a.logger.Debug("diagnostics complete", "errors", report.ErrorCount(), "warnings", report.WarningCount())

	if !a.formatConfig.Quiet {
		doctor.FormatReport(a.Stdout, report)
	}
	if code := doctor.ExitCode(report); code != 0 {
		return &exitError{code: code}
	}
	return nil
}
