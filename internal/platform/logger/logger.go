package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON on stdout so the
// RLS_BYPASS audit events stay machine-parseable in log aggregation.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
