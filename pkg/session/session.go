package session

import (
	"fmt"
	"time"
)

// Session carries per-visitor state across requests: an optional
// authenticated user, arbitrary values, and activity timestamps.
type Session struct {
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time

	UserID    *string        // nil = anonymous session
	Values    map[string]any // arbitrary session data
	ID        string         // stable identifier, never leaves the server
	Token     string         // cookie token; rotated on privilege changes
	IP        string         // client IP at creation
	UserAgent string         // raw User-Agent header at creation

	dirty bool // unsaved changes
	isNew bool // created this request, never persisted
}

// New creates a session with the given ID and cookie token.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated reports whether the session belongs to a signed-in user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// SetValue stores a value and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue retrieves a value by key.
func (s *Session) GetValue(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes a value, marking the session dirty only if the key
// existed.
func (s *Session) DeleteValue(key string) {
	if s.Values == nil {
		return
	}
	if _, exists := s.Values[key]; exists {
		delete(s.Values, key)
		s.dirty = true
	}
}

// IsDirty reports whether the session has unsaved changes.
func (s *Session) IsDirty() bool {
	return s.dirty
}

// ClearDirty marks the session as saved. Called by the session manager
// after persisting.
func (s *Session) ClearDirty() {
	s.dirty = false
}

// MarkDirty forces a save on the next flush.
func (s *Session) MarkDirty() {
	s.dirty = true
}

// IsNew reports whether the session was created this request.
func (s *Session) IsNew() bool {
	return s.isNew
}

// ClearNew marks the session as persisted.
func (s *Session) ClearNew() {
	s.isNew = false
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value retrieves a session value with type safety. Returns ErrNotFound for
// missing keys and ErrTypeMismatch when the stored value has another type.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q", ErrTypeMismatch, key)
	}

	return typed, nil
}

// ValueOr retrieves a typed session value, falling back to defaultVal when
// the key is missing or of another type.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
