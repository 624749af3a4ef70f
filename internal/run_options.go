package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

// runConfig holds runtime configuration for the server.
type runConfig struct {
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	domains         map[string]*App
	fallback        *App
	baseCtx         context.Context
}

// buildRunConfig creates a runConfig from the provided options.
func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		domains:         make(map[string]*App),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Address sets the listen address. Defaults to ":8080".
func Address(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// Logger sets the runtime logger.
// If nil, the app logger is used for app.Run and logging is disabled for anvil.Run.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds graceful shutdown; the HTTP drain and the
// shutdown hooks share the same window. Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook registers a function to run before the server starts
// accepting requests. Hooks are called in the order they were registered;
// a non-nil error aborts startup.
//
// Example:
//
//	anvil.StartupHook(func(ctx context.Context) error {
//	    return session.Migrate(ctx, pool, slog.Default())
//	})
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers cleanup to run after the listener stops. Hooks
// run in registration order under the shutdown timeout, and a failing
// hook does not keep the remaining ones from running.
//
// Example:
//
//	anvil.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// Domain routes a host pattern to an App. Exact hosts ("api.example.com")
// take precedence over wildcards ("*.example.com").
//
// Example:
//
//	anvil.Run(
//	    anvil.Domain("api.acme.com", apiApp),
//	    anvil.Domain("*.acme.com", tenantApp),
//	)
func Domain(pattern string, app *App) RunOption {
	return func(c *runConfig) {
		if pattern != "" && app != nil {
			c.domains[pattern] = app
		}
	}
}

// Fallback sets the App serving requests no domain pattern claims.
// With no domains configured it becomes the sole handler.
//
// Example:
//
//	anvil.Run(
//	    anvil.Domain("api.acme.com", apiApp),
//	    anvil.Fallback(landingApp),
//	)
func Fallback(app *App) RunOption {
	return func(c *runConfig) {
		if app != nil {
			c.fallback = app
		}
	}
}

// WithContext supplies the base context the server derives from.
// Canceling it triggers the same graceful shutdown as a signal.
// Defaults to context.Background().
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
