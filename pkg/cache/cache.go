package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value store with TTL support.
//
// Set interprets its TTL one way across implementations: a positive
// duration expires the entry after that long, zero falls back to the
// configured default TTL, and a negative duration stores the entry
// without an expiry.
type Cache[V any] interface {
	// Get returns the value stored under key, or ErrNotFound when the
	// key is absent or expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores value under key with the TTL convention above.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Has reports whether key exists and has not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases background resources. Implementations whose
	// dependencies belong to the caller treat it as a no-op.
	Close() error
}

// Marshaler serializes and deserializes cache values for storage backends
// that require a byte representation (e.g., Redis).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var sfGroup singleflight.Group

type getOrSetResult[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet retrieves a value from the cache, or calls fn to compute it on a
// miss. Concurrent misses for the same key on the same cache run fn only once
// (singleflight). The flight key includes the cache identity so distinct
// caches sharing a key never exchange values.
//
// The callback returns the value, a TTL for caching, and an error.
// If fn returns an error, nothing is cached and the error is returned.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	// Fast path: try cache first.
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	flightKey := fmt.Sprintf("%p:%s", c, key)
	v, err, _ := sfGroup.Do(flightKey, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return getOrSetResult[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := v.(getOrSetResult[V])

	// Best-effort write; a failed Set only costs a recomputation later.
	_ = c.Set(ctx, key, r.val, r.ttl)

	return r.val, nil
}
