package internal

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/anvil/pkg/cache"
	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/logger"
	"github.com/dmitrymomot/anvil/pkg/mimetype"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates the application lifecycle. It owns the route table,
// settings, and shared collaborators, and is itself the http.Handler for
// everything the application serves. App is immutable after creation - all
// configuration is done via New().
type App struct {
	routes                  *routeTable
	settings                *Settings
	store                   cache.Cache[any]
	mimeLookup              MIMELookupFunc
	errorPages              map[int]HandlerFunc
	logger                  *slog.Logger
	cookieManager           *cookie.Manager
	sessionManager          *SessionManager
	healthConfig            *healthConfig
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	baseDomain              string
	middlewares             []Middleware
	handlers                []Handler
	staticMounts            []staticMount
	startupHooks            []func(context.Context) error
	shutdownHooks           []func(context.Context) error
	appValues               map[string]any
}

// staticMount pairs an embedded file handler with its URL prefix.
type staticMount struct {
	handler http.Handler
	prefix  string
}

// New creates a new application with the given options. Route registration
// happens here: every handler's Routes method runs once, conflicts panic
// with a RouteError, and the resulting route table is frozen. The App is
// immutable after creation.
//
// Example:
//
//	app := anvil.New(
//	    anvil.WithSettingsFromEnv(),
//	    anvil.WithMiddleware(middlewares.Logging(log)),
//	    anvil.WithHandlers(
//	        handlers.NewAuth(repo),
//	        handlers.NewPages(repo),
//	    ),
//	)
func New(opts ...Option) *App {
	a := &App{
		logger:     logger.NewNope(), // Default: noop logger (before options)
		errorPages: make(map[int]HandlerFunc),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.settings == nil {
		a.settings = NewSettings()
	}
	if a.store == nil {
		a.store = cache.NewMemory[any]()
	}
	if a.mimeLookup == nil {
		a.mimeLookup = mimetype.Lookup
	}
	if a.cookieManager == nil {
		if secret := a.settings.SecretKey(); secret != "" {
			a.cookieManager = cookie.New(cookie.WithSecret(secret))
		} else {
			a.cookieManager = cookie.New()
		}
	}

	// Inject app's logger into session manager
	if a.sessionManager != nil {
		a.sessionManager.SetLogger(a.logger)
	}

	a.seedAppValues()
	a.setupRoutes()
	return a
}

// Settings returns the application settings.
func (a *App) Settings() *Settings {
	return a.settings
}

// URLFor builds a URL for a named route outside of a request, e.g. for
// links in emails or scheduled jobs. Within a handler prefer Context.URLFor.
func (a *App) URLFor(name string, args map[string]string) (string, error) {
	return a.routes.urlFor(name, args, nil)
}

// Run starts a single-domain HTTP server and blocks until shutdown.
// This is a convenience method for the common single-app case. An empty
// addr falls back to the settings address. App-level startup and shutdown
// hooks run before any hooks passed as run options.
//
// Example:
//
//	app := anvil.New(
//	    anvil.WithHandlers(handlers.NewLandingHandler()),
//	)
//	err := app.Run(":8080", anvil.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	if addr == "" {
		addr = a.settings.Addr()
	}
	log := cfg.logger
	if log == nil {
		log = a.logger
	}

	// App-owned resources start first and stop last.
	return runServer(runtimeConfig{
		handler:         a,
		address:         addr,
		logger:          log,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    append(slices.Clone(a.startupHooks), cfg.startupHooks...),
		shutdownHooks:   append(slices.Clone(cfg.shutdownHooks), a.shutdownHooks...),
		baseCtx:         cfg.baseCtx,
	})
}

// seedAppValues copies values registered via WithAppValue into the app
// store so handlers can read them through Context.AppValue.
func (a *App) seedAppValues() {
	if len(a.appValues) == 0 {
		return
	}
	ctx := context.Background()
	for key, value := range a.appValues {
		if err := a.store.Set(ctx, key, value, -1); err != nil {
			a.logger.Warn("seed app value failed", slog.String("key", key), slog.Any("error", err))
		}
	}
}

// setupRoutes builds and freezes the route table from the registered
// handlers. Health endpoints are plain routes so they pass through the
// global middleware chain like any other.
func (a *App) setupRoutes() {
	table := newRouteTable()
	r := &router{table: table}

	if a.healthConfig != nil {
		a.registerHealthRoutes(r)
	}
	for _, h := range a.handlers {
		h.Routes(r)
	}
	for _, sm := range a.staticMounts {
		r.Mount(sm.prefix, sm.handler)
	}

	table.freeze()
	a.routes = table
}
