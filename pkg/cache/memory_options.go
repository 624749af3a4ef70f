package cache

import "time"

// MemoryOption configures the in-memory cache.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
		maxEntries:      0, // 0 = unlimited
	}
}

// WithDefaultTTL sets the expiration used when Set is called with a zero TTL.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = d
	}
}

// WithCleanupInterval sets how often the background janitor removes expired
// entries. Zero disables the janitor; expired entries are then removed only
// when accessed. Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries caps the number of entries; at capacity the least recently
// used entry is evicted. Zero means unlimited. Default: 0.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}
