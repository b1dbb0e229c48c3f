package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. Services receive it via
// constructor options so tests can pass a silent one.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
