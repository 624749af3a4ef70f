package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/anvil/internal"
)

// DefaultCSRFCookieName is the cookie carrying the CSRF token.
const DefaultCSRFCookieName = "__csrf"

// DefaultCSRFMaxAge is the token cookie lifetime in seconds.
const DefaultCSRFMaxAge = 86400

// csrfTokenKey is the context key for the issued token.
type csrfTokenKey struct{}

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	CookieName string
	MaxAge     int
	Generator  func() string
	Extractor  internal.Extractor

	extractorSet bool
}

// CSRFOption configures CSRFConfig.
type CSRFOption func(*CSRFConfig)

// WithCSRFCookieName overrides the token cookie name.
func WithCSRFCookieName(name string) CSRFOption {
	return func(cfg *CSRFConfig) {
		if name != "" {
			cfg.CookieName = name
		}
	}
}

// WithCSRFMaxAge sets the token cookie lifetime in seconds.
func WithCSRFMaxAge(seconds int) CSRFOption {
	return func(cfg *CSRFConfig) {
		if seconds > 0 {
			cfg.MaxAge = seconds
		}
	}
}

// WithCSRFGenerator sets a custom token generator.
func WithCSRFGenerator(gen func() string) CSRFOption {
	return func(cfg *CSRFConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithCSRFExtractor sets where the submitted token is read from.
func WithCSRFExtractor(ext internal.Extractor) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// CSRF returns middleware implementing the double-submit cookie pattern.
// Every response carries a signed token cookie; mutating requests must echo
// the token back in the X-CSRF-Token header or the csrf_token form field.
// Mismatches are rejected with 403 before the handler runs.
//
// The cookie is signed with the application secret, so a valid pair cannot
// be minted from outside. Handlers embed CSRFToken(c) in forms.
func CSRF(opts ...CSRFOption) internal.Middleware {
	cfg := &CSRFConfig{
		CookieName: DefaultCSRFCookieName,
		MaxAge:     DefaultCSRFMaxAge,
		Generator:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.extractorSet {
		cfg.Extractor = internal.NewExtractor(
			internal.FromHeader("X-CSRF-Token"),
			internal.FromForm("csrf_token"),
		)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			token, err := c.CookieSigned(cfg.CookieName)
			if err != nil || token == "" {
				token = cfg.Generator()
				if err := c.SetCookieSigned(cfg.CookieName, token, cfg.MaxAge); err != nil {
					return err
				}
			}
			c.Set(csrfTokenKey{}, token)

			if isSafeMethod(c.Method()) {
				return next(c)
			}

			sent, ok := cfg.Extractor.Extract(c)
			if !ok || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				return internal.ErrForbidden("invalid csrf token")
			}
			return next(c)
		}
	}
}

// CSRFToken returns the token issued for this client, for embedding in forms
// and API bootstrap payloads. Empty when the CSRF middleware did not run.
func CSRFToken(c internal.Context) string {
	if v, ok := c.Get(csrfTokenKey{}).(string); ok {
		return v
	}
	return ""
}

// isSafeMethod reports whether the method never mutates state and therefore
// skips token verification.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
