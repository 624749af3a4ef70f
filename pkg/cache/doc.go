// Package cache provides generic key-value caches with TTL support.
//
// Two backends implement the Cache interface: an in-memory store with LRU
// eviction and periodic cleanup, and a Redis-backed store for sharing cached
// values across processes.
//
// # In-memory cache
//
//	c := cache.NewMemory[string](
//		cache.WithDefaultTTL(10*time.Minute),
//		cache.WithMaxEntries(10000),
//	)
//	defer c.Close()
//
//	c.Set(ctx, "greeting", "hello", 0) // uses the default TTL
//	v, err := c.Get(ctx, "greeting")
//
// # Redis cache
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	c := cache.NewRedis[User](client, nil, cache.WithPrefix("users"))
//
// Values stored in Redis are serialized with encoding/json when the Marshaler
// argument is nil; pass your own Marshaler for a different codec.
//
// # TTL semantics
//
// A positive TTL expires the entry after that duration. A zero TTL applies
// the cache's configured default. A negative TTL stores the entry without
// expiration.
//
// # Loader deduplication
//
// GetOrSet wraps a cache with a loader function and collapses concurrent
// misses for the same key into a single load:
//
//	user, err := cache.GetOrSet(ctx, c, "user:42", func(ctx context.Context) (User, time.Duration, error) {
//		u, err := loadUser(ctx, 42)
//		return u, time.Minute, err
//	})
package cache
