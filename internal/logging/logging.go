// Package logging builds the process logger.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a leveled logger writing to w. Unknown levels fall back to info.
// Outside development, records are emitted as JSON.
func New(w io.Writer, level string, development bool) *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		Prefix:          "klondike",
	}
	if !development {
		opts.Formatter = log.JSONFormatter
	}
	logger := log.NewWithOptions(w, opts)

	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
