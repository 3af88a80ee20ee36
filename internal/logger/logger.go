package logger

import (
	"log/slog"
	"os"
)

// New creates the JSON logger all components share. Every line carries the
// service attribute so the payments subsystem is filterable in the shared
// site-wide log stream.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With(slog.String("service", "familysite-payments"))
}
