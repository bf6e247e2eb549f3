package logger

import (
	"log/slog"
	"os"
)

func New(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// Discard is used where a logger is required but output is not wanted (tests, tools).
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
