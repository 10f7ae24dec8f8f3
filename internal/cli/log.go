package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates the command logger. Diagnostics always go to stderr so
// --format json output on stdout stays parseable.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
