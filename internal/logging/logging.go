// Package logging provides structured logging setup for client-visits.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a logger writing to w.
// Dev mode uses human-readable text at debug level; prod uses JSON at info.
func New(w io.Writer, devMode bool) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Setup initializes the default slog logger on stdout.
func Setup(devMode bool) {
	slog.SetDefault(New(os.Stdout, devMode))
}

// SetupCLI initializes the default logger for interactive commands. Output
// goes to stderr so it never mixes with command output, and only warnings
// show unless dev mode is on.
func SetupCLI(devMode bool) {
	level := slog.LevelWarn
	if devMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
