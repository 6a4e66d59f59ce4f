package cmd

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a leveled logger writing to w.
// Info and above are shown by default, debug messages only when verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
}
