// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"

	"golang.org/x/term"
)

// NewLogger returns a logger writing to w. Records are text when w is a
// terminal and JSON lines otherwise. Only warnings and errors are emitted
// unless verbose is set, which enables debug records.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if IsTerminal(w) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
