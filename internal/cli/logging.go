package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns a text logger on w at the named level. Unknown level
// names fall back to warn; config validation rejects them earlier.
func newLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "tasktrack",
	})
}
