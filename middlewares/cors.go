package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/anvil/internal"
)

// DefaultCORSMaxAge is the default preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// DefaultCORSConfig provides sensible defaults for CORS.
var DefaultCORSConfig = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	MaxAge:       DefaultCORSMaxAge,
}

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins is a static list of allowed origins. "*" allows every
	// origin. An entry like "https://*.example.com" allows any subdomain
	// of example.com over https, but not the apex itself.
	AllowOrigins []string

	// AllowOriginFunc is a dynamic origin validator. When set, it fully
	// replaces AllowOrigins.
	AllowOriginFunc func(origin string) bool

	// AllowMethods specifies the allowed HTTP methods.
	AllowMethods []string

	// AllowHeaders specifies the allowed request headers.
	AllowHeaders []string

	// ExposeHeaders specifies headers exposed to the client.
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials (cookies, authorization
	// headers) are allowed. With credentials the actual origin is echoed,
	// never "*".
	AllowCredentials bool

	// MaxAge specifies how long preflight responses can be cached.
	MaxAge time.Duration
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithAllowOrigins sets the allowed origins. Entries may carry a "*."
// subdomain wildcard in the host, e.g. "https://*.example.com".
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOrigins = origins
	}
}

// WithAllowOriginFunc sets a dynamic origin validator.
// When set, it fully replaces AllowOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOriginFunc = fn
	}
}

// WithAllowMethods sets the allowed HTTP methods.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowMethods = methods
	}
}

// WithAllowHeaders sets the allowed request headers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowHeaders = headers
	}
}

// WithExposeHeaders sets the headers exposed to the client.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.ExposeHeaders = headers
	}
}

// WithAllowCredentials enables credentials support.
// The actual origin is echoed instead of "*".
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowCredentials = true
	}
}

// WithMaxAge sets the preflight cache duration.
func WithMaxAge(duration time.Duration) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.MaxAge = duration
	}
}

// originPolicy is the allow-list compiled once at middleware construction.
type originPolicy struct {
	fn        func(string) bool
	exact     map[string]struct{}
	wildcards []wildcardOrigin
	any       bool
}

// wildcardOrigin is a parsed "scheme://*.domain" allow-list entry.
type wildcardOrigin struct {
	scheme string
	domain string
}

func compileOriginPolicy(cfg *CORSConfig) originPolicy {
	p := originPolicy{fn: cfg.AllowOriginFunc, exact: make(map[string]struct{})}
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			p.any = true
			continue
		}
		if scheme, domain, ok := strings.Cut(origin, "://*."); ok && domain != "" {
			p.wildcards = append(p.wildcards, wildcardOrigin{scheme: scheme, domain: domain})
			continue
		}
		p.exact[origin] = struct{}{}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if p.fn != nil {
		return p.fn(origin)
	}
	if p.any {
		return true
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, w := range p.wildcards {
		host, ok := strings.CutPrefix(origin, w.scheme+"://")
		if !ok {
			continue
		}
		// Any subdomain depth matches; the apex does not.
		if strings.HasSuffix(host, "."+w.domain) {
			return true
		}
	}
	return false
}

// CORS returns middleware that handles Cross-Origin Resource Sharing.
// It answers preflight OPTIONS requests and adds CORS headers to responses
// for allowed origins. Preflights reach the middleware only for registered
// OPTIONS routes, since middleware runs for matched routes alone.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := &CORSConfig{
		AllowOrigins: DefaultCORSConfig.AllowOrigins,
		AllowMethods: DefaultCORSConfig.AllowMethods,
		AllowHeaders: DefaultCORSConfig.AllowHeaders,
		MaxAge:       DefaultCORSConfig.MaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	policy := compileOriginPolicy(cfg)
	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	// Echoing is required with credentials and correct whenever the list is
	// narrower than "*".
	echoOrigin := cfg.AllowCredentials || !slices.Contains(cfg.AllowOrigins, "*")

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if origin == "" {
				return next(c)
			}

			if !policy.allows(origin) {
				// The browser enforces the block; the server just withholds
				// the headers.
				return next(c)
			}

			headers := c.Response().Header()
			headers.Add("Vary", "Origin")

			if echoOrigin {
				headers.Set("Access-Control-Allow-Origin", origin)
			} else {
				headers.Set("Access-Control-Allow-Origin", "*")
			}
			if cfg.AllowCredentials {
				headers.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposeHeaders != "" {
				headers.Set("Access-Control-Expose-Headers", exposeHeaders)
			}

			if c.Method() == http.MethodOptions {
				headers.Add("Vary", "Access-Control-Request-Method")
				headers.Add("Vary", "Access-Control-Request-Headers")
				headers.Set("Access-Control-Allow-Methods", allowMethods)
				headers.Set("Access-Control-Allow-Headers", allowHeaders)
				if cfg.MaxAge > 0 {
					headers.Set("Access-Control-Max-Age", maxAge)
				}
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}
