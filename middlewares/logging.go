package middlewares

import (
	"log/slog"
	"slices"
	"time"

	"github.com/dmitrymomot/anvil/internal"
)

// LoggingConfig configures the access log middleware.
type LoggingConfig struct {
	Logger    *slog.Logger
	SkipPaths []string // Paths logged at no level at all (health probes etc.)
}

// LoggingOption configures LoggingConfig.
type LoggingOption func(*LoggingConfig)

// WithLoggingSkipPaths excludes exact paths from the access log.
func WithLoggingSkipPaths(paths ...string) LoggingOption {
	return func(cfg *LoggingConfig) {
		cfg.SkipPaths = append(cfg.SkipPaths, paths...)
	}
}

// Logging returns middleware that emits one structured entry per request:
// method, path, status, response size, and duration. Server errors log at
// error level, client errors at warn, everything else at info. The request
// ID is attached when the RequestID middleware ran earlier in the chain.
//
// When the handler returns an error the status is not final yet - the error
// funnel writes it after the chain unwinds - so the entry carries the error
// instead and logs at error level.
func Logging(log *slog.Logger, opts ...LoggingOption) internal.Middleware {
	cfg := &LoggingConfig{Logger: log}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if slices.Contains(cfg.SkipPaths, c.Path()) {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			elapsed := time.Since(start)

			attrs := []slog.Attr{
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Duration("duration", elapsed),
			}
			if rid := GetRequestID(c); rid != "" {
				attrs = append(attrs, slog.String("request_id", rid))
			}

			status := 0
			if rw := c.ResponseWriter(); rw != nil {
				status = rw.Status()
				attrs = append(attrs,
					slog.Int("status", status),
					slog.Int64("bytes", rw.Size()),
				)
			}

			level := slog.LevelInfo
			switch {
			case err != nil:
				level = slog.LevelError
				attrs = append(attrs, slog.Any("error", err))
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			cfg.Logger.LogAttrs(c.Context(), level, "request completed", attrs...)
			return err
		}
	}
}
