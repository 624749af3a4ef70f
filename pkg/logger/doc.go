// Package logger provides structured logging with context extraction and
// optional Sentry integration.
//
// It extends log/slog with two capabilities: automatic injection of
// request-scoped attributes pulled from context, and error reporting to Sentry
// with graceful fallback when unconfigured.
//
// # Basic Usage
//
// Create a logger with context extractors:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		if id, ok := ctx.Value(ridKey{}).(string); ok && id != "" {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	}
//
//	log := logger.New(requestID)
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//	// {"level":"INFO","msg":"request processed","status":200,"request_id":"abc-123"}
//
// Extractors run on every log call, so request-scoped values are always
// current. Return false to skip the attribute for an entry.
//
// # Sentry
//
// For production error tracking:
//
//	log := logger.NewWithSentry(logger.SentryConfig{
//		DSN:         os.Getenv("SENTRY_DSN"),
//		Environment: "production",
//		MinLevel:    slog.LevelWarn,
//	}, requestID)
//
// Errors create Sentry Issues; warnings are stored as logs. With an empty DSN
// the logger degrades to stdout only, so the same code path works in
// development. Pair with FlushSentry as a shutdown hook to drain buffered
// events on exit.
//
// # Decoration
//
// LogHandlerDecorator wraps any slog.Handler, so extraction also works with
// custom handlers:
//
//	h := slog.NewTextHandler(os.Stderr, nil)
//	log := slog.New(logger.NewLogHandlerDecorator(h, extractors...))
package logger
