package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically deletes expired sessions. Stores with native TTL
// expiry (Redis) do not need one; memory and PostgreSQL stores do.
type Janitor struct {
	cron  *cron.Cron
	store Store
	log   *slog.Logger
}

// NewJanitor schedules DeleteExpired on a standard 5-field cron expression,
// e.g. "*/10 * * * *" for every ten minutes.
func NewJanitor(store Store, schedule string, log *slog.Logger) (*Janitor, error) {
	j := &Janitor{
		cron:  cron.New(),
		store: store,
		log:   log,
	}

	if _, err := j.cron.AddFunc(schedule, j.sweep); err != nil {
		return nil, fmt.Errorf("session: invalid janitor schedule %q: %w", schedule, err)
	}

	return j, nil
}

// Start launches the scheduler in its own goroutine.
// Use with anvil.WithStartupHook:
//
//	anvil.WithStartupHook(func(ctx context.Context) error {
//	    janitor.Start()
//	    return nil
//	})
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts scheduling and waits for an in-flight sweep to finish, up to
// the context deadline. The signature matches anvil.WithShutdownHook.
func (j *Janitor) Stop(ctx context.Context) error {
	select {
	case <-j.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := j.store.DeleteExpired(ctx)
	if err != nil {
		j.log.ErrorContext(ctx, "session sweep failed", "error", err)
		return
	}
	if removed > 0 {
		j.log.InfoContext(ctx, "expired sessions removed", "count", removed)
	}
}
