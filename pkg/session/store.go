package session

import (
	"context"
	"time"
)

// Store persists sessions. Implementations are provided for memory,
// PostgreSQL, and Redis.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by its cookie token.
	// Returns ErrNotFound if no session exists for the token and ErrExpired
	// if one exists but is past its expiry.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves changes to an existing session.
	Update(ctx context.Context, s *Session) error

	// Delete removes a session by its ID.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes all sessions for a user ("log out everywhere").
	DeleteByUserID(ctx context.Context, userID string) error

	// Touch updates LastActiveAt without loading the full session.
	Touch(ctx context.Context, id string, lastActiveAt time.Time) error

	// DeleteExpired removes sessions past their expiry and reports how many
	// were removed. Backends with native TTL may have nothing to do.
	DeleteExpired(ctx context.Context) (int64, error)
}
