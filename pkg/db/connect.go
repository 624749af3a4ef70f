package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect establishes a PostgreSQL connection pool and verifies it with a
// ping. Transient startup failures are retried with a linearly growing wait
// so restarting services do not hammer a recovering database.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		pool, err := connectOnce(ctx, poolCfg)
		if err == nil {
			return pool, nil
		}
		lastErr = err

		if waitErr := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); waitErr != nil {
			return nil, errors.Join(ErrConnectionFailed, waitErr, lastErr)
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func connectOnce(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// A ping catches auth and permission problems that pool creation alone
	// does not surface.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
