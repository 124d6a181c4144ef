// Package logging builds the process-wide structured logger. Both binaries
// log JSON to stdout with a service attribute, so api and worker lines stay
// distinguishable in a merged stream.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger returns a JSON slog logger tagged with the service name.
// Unknown level strings fall back to info.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFor(level),
	})
	return slog.New(handler).With("service", service)
}

func levelFor(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
