// Package logger builds prefixed charmbracelet/log loggers so each
// longhand subsystem can tag its output consistently.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed logger on stderr that respects the global log
// level. Stderr keeps log lines out of pipe-mode output.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}
