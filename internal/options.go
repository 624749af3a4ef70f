package internal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/anvil/pkg/cache"
	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/logger"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithSettings sets the application settings. Use NewSettings with options
// for programmatic configuration.
//
// Example:
//
//	anvil.New(
//	    anvil.WithSettings(anvil.NewSettings(
//	        anvil.WithDebug(true),
//	        anvil.WithStaticDirs("./public"),
//	    )),
//	)
func WithSettings(s *Settings) Option {
	return func(a *App) {
		if s != nil {
			a.settings = s
		}
	}
}

// WithSettingsFromEnv loads settings from APP_* environment variables.
// Invalid values panic during New, before the server starts.
//
// Example:
//
//	anvil.New(
//	    anvil.WithSettingsFromEnv(),
//	)
func WithSettingsFromEnv() Option {
	return func(a *App) {
		s, err := LoadSettings()
		if err != nil {
			panic(fmt.Sprintf("settings: %v", err))
		}
		a.settings = s
	}
}

// WithBaseDomain sets the apex domain that Subdomain() strips when it
// extracts tenant labels from the request host.
//
// Example:
//
//	anvil.New(
//	    anvil.WithBaseDomain("example.com"),
//	)
func WithBaseDomain(domain string) Option {
	return func(a *App) {
		a.baseDomain = domain
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided and runs only for requests
// that match a registered route.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers route providers. Each handler's Routes method
// runs once inside New, before the server starts.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStaticFiles mounts an embedded filesystem at the given URL prefix.
// Directory listings are disabled. For serving directories from disk with
// conditional requests and permission checks, configure static dirs on the
// settings instead.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	anvil.New(
//	    anvil.WithStaticFiles("/assets/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.FileServerFS(subFS)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticMounts = append(a.staticMounts, staticMount{handler, pattern})
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error that is not an Abort.
// Returning a non-nil error falls back to the built-in 500 page.
//
// Example:
//
//	anvil.WithErrorHandler(func(c anvil.Context, err error) error {
//	    return c.JSON(http.StatusInternalServerError, map[string]string{
//	        "error": err.Error(),
//	    })
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
//
// Example:
//
//	anvil.WithNotFoundHandler(func(c anvil.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler. The Allow header
// is already set when the handler runs.
//
// Example:
//
//	anvil.WithMethodNotAllowedHandler(func(c anvil.Context) error {
//	    return c.String(http.StatusMethodNotAllowed, "Method not allowed")
//	})
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithErrorPage registers a page handler for a status code. The default
// error funnel and the 404/405 fallbacks render through it. Inside the
// handler, PageError returns the error being rendered.
//
// Example:
//
//	anvil.WithErrorPage(http.StatusNotFound, func(c anvil.Context) error {
//	    return c.String(http.StatusNotFound, "these are not the droids")
//	})
func WithErrorPage(status int, page HandlerFunc) Option {
	return func(a *App) {
		if page != nil {
			a.errorPages[status] = page
		}
	}
}

// WithHealthChecks mounts the health endpoints. Liveness (/health/live)
// only confirms the process is up; readiness (/health/ready) runs every
// registered check and reports 503 when any of them fails.
//
// Example:
//
//	anvil.WithHealthChecks(
//	    anvil.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    anvil.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger builds the application logger with a component attribute on
// every entry plus optional context extractors that pull request-scoped
// values (request ID, user ID) into each record.
//
// Example:
//
//	anvil.New(
//	    anvil.WithLogger("api", requestIDExtractor, userIDExtractor),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger installs a caller-owned *slog.Logger unchanged, for
// setups the stock logger options cannot express.
//
// Example:
//
//	customLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	anvil.New(
//	    anvil.WithCustomLogger(customLogger),
//	)
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager. Without this option the
// manager uses the settings secret key for signed and encrypted cookies.
//
// Example:
//
//	anvil.New(
//	    anvil.WithCookieOptions(
//	        cookie.WithSecret(os.Getenv("COOKIE_SECRET")),
//	        cookie.WithSecure(true),
//	    ),
//	)
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieManager = cookie.New(opts...)
	}
}

// WithSession enables server-side session management backed by the given
// session.Store. Sessions load lazily, persist automatically before the
// first byte of the response, and have their activity timestamp refreshed
// at most once per touch interval.
//
// Example:
//
//	pgStore := session.NewPostgresStore(pool)
//	anvil.New(
//	    anvil.WithSession(pgStore,
//	        anvil.WithSessionCookieName("__sid"),
//	        anvil.WithSessionMaxAge(86400 * 30),
//	        anvil.WithSessionSecure(true),
//	    ),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// WithAppStore sets the application key-value store backing Context.AppValue.
// Defaults to an in-process memory cache; pass a Redis cache to share
// values across instances.
//
// Example:
//
//	rdb, _ := cache.NewRedis[any](cache.RedisConfig{Addr: "localhost:6379"})
//	anvil.New(
//	    anvil.WithAppStore(rdb),
//	)
func WithAppStore(store cache.Cache[any]) Option {
	return func(a *App) {
		if store != nil {
			a.store = store
		}
	}
}

// WithAppValue seeds the application store with a value before the server
// starts. Handlers read it back with c.AppValue(key).
//
// Example:
//
//	anvil.New(
//	    anvil.WithAppValue("feature.signup", true),
//	)
func WithAppValue(key string, value any) Option {
	return func(a *App) {
		if a.appValues == nil {
			a.appValues = make(map[string]any)
		}
		a.appValues[key] = value
	}
}

// WithMIMELookup overrides content-type detection for static file serving.
// Defaults to mimetype.Lookup.
func WithMIMELookup(fn MIMELookupFunc) Option {
	return func(a *App) {
		if fn != nil {
			a.mimeLookup = fn
		}
	}
}

// WithStartupHook registers a function to run before the server starts
// accepting requests. A non-nil error aborts startup.
//
// Example:
//
//	anvil.WithStartupHook(func(ctx context.Context) error {
//	    janitor.Start()
//	    return nil
//	})
func WithStartupHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.startupHooks = append(a.startupHooks, fn)
		}
	}
}

// WithShutdownHook registers a cleanup function to run during graceful
// shutdown, after the HTTP server stops accepting requests.
//
// Example:
//
//	anvil.WithShutdownHook(db.Shutdown(pool))
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}
