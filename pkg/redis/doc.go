// Package redis wraps [github.com/redis/go-redis/v9] with connection setup
// tuned for services: URL-based configuration, startup retries with a growing
// wait, a readiness probe, and a graceful shutdown hook.
//
// # Usage
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//		redis.WithPoolSize(20),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	app := anvil.New(
//		anvil.WithHealthChecks(map[string]func(context.Context) error{
//			"redis": redis.Healthcheck(client),
//		}),
//		anvil.WithShutdownHook(redis.Shutdown(client)),
//	)
//
// Both redis:// and rediss:// (TLS) schemes are accepted. Pool sizing,
// timeouts, and the retry budget are set through functional options; see
// the With* functions for the defaults.
package redis
