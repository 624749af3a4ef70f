package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/id"
	"github.com/dmitrymomot/anvil/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

// maxInboundIDLen caps accepted upstream request IDs.
const maxInboundIDLen = 64

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string // ID generator function
	ResponseHeader string        // Response header name
	Headers        []string      // Headers to check for existing ID (in order)
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
// Generated IDs are trusted and bypass inbound validation.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Generator = gen
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestID returns middleware that assigns a request ID to each request.
// An ID arriving on one of the configured headers is preserved so traces
// survive proxy hops; otherwise a ULID is generated. The ID is stored in
// the context and echoed on the response header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      id.NewULID,
		ResponseHeader: "X-Request-ID",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			reqID := inboundRequestID(c, cfg.Headers)
			if reqID == "" {
				reqID = cfg.Generator()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(cfg.ResponseHeader, reqID)

			return next(c)
		}
	}
}

// inboundRequestID picks the upstream request ID, if any. Headers are
// checked in priority order and the first non-empty value wins; if that
// value fails validation the ID is regenerated rather than falling
// through to lower-priority headers.
func inboundRequestID(c internal.Context, headers []string) string {
	for _, header := range headers {
		v := c.Header(header)
		if v == "" {
			continue
		}
		if !validInboundID(v) {
			return ""
		}
		return v
	}
	return ""
}

// validInboundID reports whether an upstream ID is safe to echo into the
// response header and log output. Anything longer than maxInboundIDLen
// bytes or outside [A-Za-z0-9._-] is rejected.
func validInboundID(v string) bool {
	if v == "" || len(v) > maxInboundIDLen {
		return false
	}
	for i := 0; i < len(v); i++ {
		b := v[i]
		switch {
		case b >= 'a' && b <= 'z':
		case b >= 'A' && b <= 'Z':
		case b >= '0' && b <= '9':
		case b == '.' || b == '_' || b == '-':
		default:
			return false
		}
	}
	return true
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(c internal.Context) string {
	if v, ok := c.Get(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor returns a ContextExtractor for use with WithLogger.
// Automatically adds "request_id" to all log entries.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
