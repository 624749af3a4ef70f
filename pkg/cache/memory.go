package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// entry holds a cached value with its expiration time and key.
type entry[V any] struct {
	expiresAt time.Time // zero value = never expires
	value     V
	key       string
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// evictions collects entries unlinked while the cache lock is held so their
// callbacks can run after it is released. Callbacks may therefore re-enter
// the cache without deadlocking.
type evictions[V any] struct {
	fn      func(key string, value V)
	entries []*entry[V]
}

// fire invokes the callback for every collected entry.
// Must be called without the cache lock held.
func (ev *evictions[V]) fire() {
	if ev.fn == nil {
		return
	}
	for _, e := range ev.entries {
		ev.fn(e.key, e.value)
	}
}

// Memory is an in-memory cache with TTL-based expiration and optional LRU
// eviction when a maximum entry count is configured.
//
// A hash map gives O(1) lookups; a doubly-linked list gives O(1) LRU ordering.
// The most recently accessed items sit at the front of the list, the least
// recently used at the back.
type Memory[V any] struct {
	items    map[string]*list.Element
	eviction *list.List
	opts     *memoryOptions
	onEvict  func(key string, value V)
	done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// NewMemory creates a new in-memory cache.
//
// Example:
//
//	c := cache.NewMemory[string](
//	    cache.WithDefaultTTL(5 * time.Minute),
//	    cache.WithCleanupInterval(30 * time.Second),
//	    cache.WithMaxEntries(10000),
//	)
//	defer c.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory[V]{
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		opts:     o,
		done:     make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// SetEvictCallback sets a callback invoked whenever an item leaves the cache:
// LRU eviction, TTL cleanup, manual deletion, and clearing all count. The
// callback runs outside the cache lock, after the evicting operation has
// released it but before that operation returns.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// Get retrieves a value by key.
// Returns ErrNotFound if the key does not exist or has expired.
// Accessing a key marks it as recently used for LRU purposes.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var ev evictions[V]
	defer ev.fire()
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}

	e := elem.Value.(*entry[V])
	if e.expired(time.Now()) {
		m.unlink(elem, &ev)
		var zero V
		return zero, ErrNotFound
	}

	m.eviction.MoveToFront(elem)

	return e.value, nil
}

// Set stores a value with the given TTL.
// TTL semantics: positive = expires after duration, zero = use default TTL,
// negative = never expires.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	var ev evictions[V]
	defer ev.fire()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	// ttl < 0: expiresAt stays zero (never expires)

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		m.eviction.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.eviction.Back(); oldest != nil {
			m.unlink(oldest, &ev)
		}
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	m.items[key] = m.eviction.PushFront(e)

	return nil
}

// Delete removes a key from the cache.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	var ev evictions[V]
	defer ev.fire()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if elem, ok := m.items[key]; ok {
		m.unlink(elem, &ev)
	}

	return nil
}

// Has checks whether a key exists and has not expired.
func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	var ev evictions[V]
	defer ev.fire()
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return false, nil
	}

	if elem.Value.(*entry[V]).expired(time.Now()) {
		m.unlink(elem, &ev)
		return false, nil
	}

	return true, nil
}

// Len reports the number of entries currently stored, including entries that
// expired but have not been swept yet.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Clear removes all entries from the cache.
func (m *Memory[V]) Clear(_ context.Context) error {
	var ev evictions[V]
	defer ev.fire()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	ev.fn = m.onEvict
	for _, elem := range m.items {
		ev.entries = append(ev.entries, elem.Value.(*entry[V]))
	}

	m.items = make(map[string]*list.Element)
	m.eviction.Init()

	return nil
}

// Close stops the background janitor goroutine and marks the cache as closed.
// Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	close(m.done)

	return nil
}

// janitor periodically removes expired entries.
func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

// deleteExpired sweeps expired entries from back to front, where the stalest
// entries accumulate.
func (m *Memory[V]) deleteExpired() {
	var ev evictions[V]
	defer ev.fire()
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry[V]).expired(now) {
			m.unlink(elem, &ev)
		}
		elem = prev
	}
}

// unlink removes elem from both structures and queues its eviction callback.
// Caller must hold the mutex.
func (m *Memory[V]) unlink(elem *list.Element, ev *evictions[V]) {
	m.eviction.Remove(elem)
	e := elem.Value.(*entry[V])
	delete(m.items, e.key)

	ev.fn = m.onEvict
	ev.entries = append(ev.entries, e)
}

var _ Cache[any] = (*Memory[any])(nil)
