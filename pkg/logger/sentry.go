package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel determines which log levels to send to Sentry
	// (e.g., slog.LevelWarn for warnings+errors).
	MinLevel slog.Level
}

// NewWithSentry creates a logger that sends records to both stdout and Sentry.
// If DSN is empty, only stdout logging is enabled (graceful fallback for local
// dev). Context extractors apply to both destinations.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdoutHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	if cfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(stdoutHandler, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		// Graceful degradation: keep stdout logging if Sentry init fails
		slog.New(stdoutHandler).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(stdoutHandler, extractors...))
	}

	// Errors create Issues in Sentry; lower levels are stored as logs for
	// context and search.
	eventLevel := []slog.Level{slog.LevelError}
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: eventLevel,
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	combined := newMultiHandler(stdoutHandler, sentryHandler)
	return slog.New(NewLogHandlerDecorator(combined, extractors...))
}

// FlushSentry returns a shutdown hook that drains buffered Sentry events.
// Register it with the server runtime so crash reports are not lost on exit.
func FlushSentry(timeout time.Duration) func(context.Context) error {
	return func(context.Context) error {
		sentry.Flush(timeout)
		return nil
	}
}
