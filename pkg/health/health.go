package health

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency. The db and redis packages return
// closures with this signature.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to probe functions.
type Checks map[string]CheckFunc

// Response is the aggregated result of a readiness run.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of a single probe.
type Check struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures readiness check behavior.
type Option func(*config)

// WithTimeout bounds a readiness run. Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used to report failing checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// runChecks executes all probes concurrently under a shared timeout.
func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Check, len(checks))
		failed  bool
	)

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			started := time.Now()
			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			result.Latency = time.Since(started).Round(time.Millisecond).String()

			mu.Lock()
			results[name] = result
			failed = failed || result.Status == StatusUnhealthy
			mu.Unlock()
		}(name, check)
	}

	wg.Wait()

	status := StatusHealthy
	if failed {
		status = StatusUnhealthy
	}

	return &Response{
		Status: status,
		Checks: results,
	}
}
