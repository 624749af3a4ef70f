package internal

import (
	"net/http"

	"github.com/dmitrymomot/anvil/pkg/health"
)

// Default health endpoint paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// healthConfig holds health endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// HealthOption configures the health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath overrides the liveness endpoint path.
// Defaults to /health/live.
func WithLivenessPath(path string) HealthOption {
	return func(cfg *healthConfig) {
		if path != "" {
			cfg.livenessPath = path
		}
	}
}

// WithReadinessPath overrides the readiness endpoint path.
// Defaults to /health/ready.
func WithReadinessPath(path string) HealthOption {
	return func(cfg *healthConfig) {
		if path != "" {
			cfg.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run concurrently with a shared timeout on every readiness request.
func WithReadinessCheck(name string, check health.CheckFunc) HealthOption {
	return func(cfg *healthConfig) {
		if name == "" || check == nil {
			return
		}
		if cfg.checks == nil {
			cfg.checks = make(health.Checks)
		}
		cfg.checks[name] = check
	}
}

// registerHealthRoutes registers the liveness and readiness endpoints as
// exact routes on the application router.
func (a *App) registerHealthRoutes(r Router) {
	if a.healthConfig == nil {
		return
	}
	r.GET(a.healthConfig.livenessPath, adaptHTTPHandler(health.LivenessHandler()))
	r.GET(a.healthConfig.readinessPath, adaptHTTPHandler(
		health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)),
	))
}

// adaptHTTPHandler lets a plain http.HandlerFunc serve as a route handler.
func adaptHTTPHandler(h http.HandlerFunc) HandlerFunc {
	return func(c Context) error {
		h(c.Response(), c.Request())
		return nil
	}
}
