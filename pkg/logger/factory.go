package logger

import (
	"log/slog"
	"os"
)

// New creates a JSON-formatted logger writing to stdout at Info level,
// with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithLevel(slog.LevelInfo, extractors...)
}

// NewWithLevel creates a JSON-formatted logger with a minimum level.
// Applications running in debug mode typically pass slog.LevelDebug here.
func NewWithLevel(level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(NewLogHandlerDecorator(h, extractors...))
}
