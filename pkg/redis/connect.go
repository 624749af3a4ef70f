package redis

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Open creates a Redis client from a redis:// or rediss:// URL and verifies
// connectivity with a ping, retrying transient failures.
//
// Example:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//	    redis.WithPoolSize(20),
//	    redis.WithRetry(5, 3*time.Second),
//	)
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	clientOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	clientOpts.PoolSize = cfg.poolSize
	clientOpts.MinIdleConns = cfg.minIdleConns
	clientOpts.ConnMaxIdleTime = cfg.maxIdleTime
	clientOpts.ConnMaxLifetime = cfg.maxLifetime
	clientOpts.ReadTimeout = cfg.readTimeout
	clientOpts.WriteTimeout = cfg.writeTimeout
	clientOpts.DialTimeout = cfg.dialTimeout

	return connect(ctx, clientOpts, cfg.retryAttempts, cfg.retryInterval)
}

// MustOpen is Open for programs where Redis is a hard requirement; it logs
// and exits on failure.
func MustOpen(ctx context.Context, url string, opts ...Option) redis.UniversalClient {
	client, err := Open(ctx, url, opts...)
	if err != nil {
		slog.Error("failed to open redis connection", "error", err)
		os.Exit(1)
	}
	return client
}

func connect(ctx context.Context, opts *redis.Options, attempts int, interval time.Duration) (redis.UniversalClient, error) {
	attempts = max(attempts, 1)

	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)

		err := client.Ping(ctx).Err()
		if err == nil {
			return client, nil
		}
		lastErr = err
		_ = client.Close()

		if waitErr := wait(ctx, time.Duration(i+1)*interval); waitErr != nil {
			return nil, errors.Join(ErrConnectionFailed, waitErr, lastErr)
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
