// Package logger builds slog loggers for the service. The text format
// uses a colored handler that highlights query executions; the json
// format is plain slog JSON for log collectors.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a logger for the given level and format ("text" or
// "json"). Unknown formats fall back to text.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with a custom destination, mostly for tests.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	l := ParseLevel(level)
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
	}
	return slog.New(NewColorHandler(w, &slog.HandlerOptions{Level: l}))
}

// ParseLevel maps a config level string to a slog.Level. Unknown
// values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
