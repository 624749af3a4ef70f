package redis

import (
	"context"
	"io"
)

// Shutdown returns a hook that closes the Redis client.
// Use with anvil.WithShutdownHook().
//
// Example:
//
//	app := anvil.New(
//	    anvil.WithShutdownHook(redis.Shutdown(client)),
//	)
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Close()
	}
}
