package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Suitable for development
// and tests; sessions vanish on restart and are not shared between
// instances.
type MemoryStore struct {
	mu      sync.RWMutex
	byToken map[string]*Session
	byID    map[string]string // id -> token
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken: make(map[string]*Session),
		byID:    make(map[string]string),
	}
}

// Create persists a new session.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byToken[s.Token] = clone(s)
	m.byID[s.ID] = s.Token
	return nil
}

// Get retrieves a session by token. Expired sessions are removed on access.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}

	if s.IsExpired() {
		delete(m.byToken, token)
		delete(m.byID, s.ID)
		return nil, ErrExpired
	}

	return clone(s), nil
}

// Update saves changes to an existing session, reindexing when the token
// was rotated.
func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldToken, ok := m.byID[s.ID]
	if !ok {
		return ErrNotFound
	}
	if oldToken != s.Token {
		delete(m.byToken, oldToken)
	}

	m.byToken[s.Token] = clone(s)
	m.byID[s.ID] = s.Token
	return nil
}

// Delete removes a session by ID.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token, ok := m.byID[id]; ok {
		delete(m.byToken, token)
		delete(m.byID, id)
	}
	return nil
}

// DeleteByUserID removes all sessions belonging to a user.
func (m *MemoryStore) DeleteByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, s := range m.byToken {
		if s.UserID != nil && *s.UserID == userID {
			delete(m.byToken, token)
			delete(m.byID, s.ID)
		}
	}
	return nil
}

// Touch updates the last-activity timestamp of a session.
func (m *MemoryStore) Touch(_ context.Context, id string, lastActiveAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.byToken[token].LastActiveAt = lastActiveAt
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (m *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for token, s := range m.byToken {
		if s.IsExpired() {
			delete(m.byToken, token)
			delete(m.byID, s.ID)
			removed++
		}
	}
	return removed, nil
}

// clone copies a session so callers and the store never share state. The
// returned copy reads as persisted: not new, not dirty.
func clone(s *Session) *Session {
	c := *s
	c.Values = maps.Clone(s.Values)
	c.dirty = false
	c.isNew = false
	if s.UserID != nil {
		uid := *s.UserID
		c.UserID = &uid
	}
	return &c
}

var _ Store = (*MemoryStore)(nil)
