package internal

import (
	"errors"
	"net/http"
	"slices"

	"github.com/dmitrymomot/anvil/pkg/hostrouter"
)

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Use this for composing multiple Apps under different domain patterns.
// Startup and shutdown hooks registered on the composed apps run
// automatically around the shared server.
//
// Example:
//
//	api := anvil.New(
//	    anvil.WithHandlers(handlers.NewAPIHandler()),
//	)
//
//	website := anvil.New(
//	    anvil.WithHandlers(handlers.NewLandingHandler()),
//	)
//
//	err := anvil.Run(
//	    anvil.Domain("api.acme.com", api),
//	    anvil.Domain("*.acme.com", website),
//	    anvil.Address(":8080"),
//	    anvil.Logger(slog),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	var handler http.Handler

	// Collect all apps for hook registration
	var allApps []*App

	if len(cfg.domains) > 0 {
		// Build host router from domain mappings
		routes := make(hostrouter.Routes)
		for pattern, app := range cfg.domains {
			routes[pattern] = app
			allApps = append(allApps, app)
		}

		// Determine fallback handler
		var fallback http.Handler = http.NotFoundHandler()
		if cfg.fallback != nil {
			fallback = cfg.fallback
			allApps = append(allApps, cfg.fallback)
		}

		handler = hostrouter.New(routes, fallback)
	} else if cfg.fallback != nil {
		// No domains, but fallback provided - use as main handler
		handler = cfg.fallback
		allApps = append(allApps, cfg.fallback)
	} else {
		return errors.New("anvil.Run: no domains or fallback configured")
	}

	// Collect hooks from all apps, once per app even when an app serves
	// several domain patterns. App hooks start first and stop last.
	startupHooks := slices.Clone(cfg.startupHooks)
	shutdownHooks := slices.Clone(cfg.shutdownHooks)
	seen := make(map[*App]bool)

	for _, app := range allApps {
		if seen[app] {
			continue
		}
		seen[app] = true
		if len(app.startupHooks) > 0 {
			startupHooks = append(slices.Clone(app.startupHooks), startupHooks...)
		}
		shutdownHooks = append(shutdownHooks, app.shutdownHooks...)
	}

	return runServer(runtimeConfig{
		handler:         handler,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
