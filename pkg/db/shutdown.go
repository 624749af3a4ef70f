package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown returns a hook that closes the connection pool.
// Use with anvil.WithShutdownHook().
//
// Example:
//
//	app := anvil.New(
//	    anvil.WithShutdownHook(db.Shutdown(pool)),
//	)
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pool.Close()
		return nil
	}
}
