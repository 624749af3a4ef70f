package session

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/anvil/pkg/db"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate creates the sessions table. Goose bookkeeping goes to a dedicated
// table so application migrations never conflict with it.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	return db.Migrate(ctx, pool, sub, "anvil_session_migrations", log)
}

// PostgresStore persists sessions in PostgreSQL. Run Migrate once at boot
// before using it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a session store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create persists a new session.
func (p *PostgresStore) Create(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s.Values)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO sessions (id, token, user_id, data, ip, user_agent, created_at, last_active_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Token, s.UserID, data, s.IP, s.UserAgent, s.CreatedAt, s.LastActiveAt, s.ExpiresAt,
	)
	return err
}

// Get retrieves a session by token. The expiry check happens here rather
// than in SQL so an expired row yields ErrExpired, not ErrNotFound.
func (p *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	var (
		s    Session
		data []byte
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, token, user_id, data, ip, user_agent, created_at, last_active_at, expires_at
		FROM sessions WHERE token = $1`,
		token,
	).Scan(&s.ID, &s.Token, &s.UserID, &data, &s.IP, &s.UserAgent, &s.CreatedAt, &s.LastActiveAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.IsExpired() {
		return nil, ErrExpired
	}

	if err := json.Unmarshal(data, &s.Values); err != nil {
		return nil, err
	}

	return &s, nil
}

// Update saves changes to an existing session.
func (p *PostgresStore) Update(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s.Values)
	if err != nil {
		return err
	}

	tag, err := p.pool.Exec(ctx, `
		UPDATE sessions
		SET token = $2, user_id = $3, data = $4, last_active_at = $5, expires_at = $6
		WHERE id = $1`,
		s.ID, s.Token, s.UserID, data, s.LastActiveAt, s.ExpiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session by ID.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteByUserID removes all sessions belonging to a user.
func (p *PostgresStore) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// Touch updates the last-activity timestamp of a session.
func (p *PostgresStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	tag, err := p.pool.Exec(ctx, `UPDATE sessions SET last_active_at = $2 WHERE id = $1`, id, lastActiveAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (p *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Store = (*PostgresStore)(nil)
