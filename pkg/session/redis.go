package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists sessions in Redis with native TTL expiry. Three key
// families are kept per session: the record itself (by token), an id->token
// pointer for lookups by ID, and a per-user set of session IDs for
// DeleteByUserID.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a session store backed by the given client. All keys
// are namespaced under "session:".
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "session"}
}

type redisRecord struct {
	ID           string         `json:"id"`
	Token        string         `json:"token"`
	UserID       *string        `json:"user_id,omitempty"`
	Values       map[string]any `json:"values"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

func (r *RedisStore) tokenKey(token string) string { return r.prefix + ":token:" + token }
func (r *RedisStore) idKey(id string) string       { return r.prefix + ":id:" + id }
func (r *RedisStore) userKey(userID string) string { return r.prefix + ":user:" + userID }

// Create persists a new session.
func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	return r.write(ctx, s)
}

// Get retrieves a session by token. Redis TTL removes expired sessions, so
// a missing key yields ErrNotFound; ErrExpired covers the window between
// logical expiry and key eviction.
func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := r.client.Get(ctx, r.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	s := rec.session()
	if s.IsExpired() {
		return nil, ErrExpired
	}

	return s, nil
}

// Update saves changes to an existing session, cleaning up the old token
// key when the token was rotated.
func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	oldToken, err := r.client.Get(ctx, r.idKey(s.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}

	if oldToken != s.Token {
		if err := r.client.Del(ctx, r.tokenKey(oldToken)).Err(); err != nil {
			return err
		}
	}

	return r.write(ctx, s)
}

// Delete removes a session by ID.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	token, err := r.client.Get(ctx, r.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	// Fetch the record to find the owning user before removing the keys.
	if data, err := r.client.Get(ctx, r.tokenKey(token)).Bytes(); err == nil {
		var rec redisRecord
		if err := json.Unmarshal(data, &rec); err == nil && rec.UserID != nil {
			_ = r.client.SRem(ctx, r.userKey(*rec.UserID), id).Err()
		}
	}

	return r.client.Del(ctx, r.tokenKey(token), r.idKey(id)).Err()
}

// DeleteByUserID removes all sessions belonging to a user.
func (r *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return err
	}

	for _, id := range ids {
		token, err := r.client.Get(ctx, r.idKey(id)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // session already expired
			}
			return err
		}
		if err := r.client.Del(ctx, r.tokenKey(token), r.idKey(id)).Err(); err != nil {
			return err
		}
	}

	return r.client.Del(ctx, r.userKey(userID)).Err()
}

// Touch updates the last-activity timestamp, preserving the remaining TTL.
func (r *RedisStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	token, err := r.client.Get(ctx, r.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}

	data, err := r.client.Get(ctx, r.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	rec.LastActiveAt = lastActiveAt

	updated, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.tokenKey(token), updated, redis.KeepTTL).Err()
}

// DeleteExpired is a no-op: Redis evicts expired sessions through key TTLs.
func (r *RedisStore) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

// write stores the session record and its indexes with a TTL matching the
// session expiry. Sessions already past their expiry are dropped instead.
func (r *RedisStore) write(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return r.Delete(ctx, s.ID)
	}

	rec := redisRecord{
		ID:           s.ID,
		Token:        s.Token,
		UserID:       s.UserID,
		Values:       s.Values,
		IP:           s.IP,
		UserAgent:    s.UserAgent,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		ExpiresAt:    s.ExpiresAt,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.tokenKey(s.Token), data, ttl).Err(); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.idKey(s.ID), s.Token, ttl).Err(); err != nil {
		return err
	}

	if s.UserID != nil && *s.UserID != "" {
		key := r.userKey(*s.UserID)
		if err := r.client.SAdd(ctx, key, s.ID).Err(); err != nil {
			return err
		}
		// The set expiry slides with the most recent session write; stale
		// members are skipped by DeleteByUserID.
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return err
		}
	}

	return nil
}

func (rec redisRecord) session() *Session {
	return &Session{
		ID:           rec.ID,
		Token:        rec.Token,
		UserID:       rec.UserID,
		Values:       rec.Values,
		IP:           rec.IP,
		UserAgent:    rec.UserAgent,
		CreatedAt:    rec.CreatedAt,
		LastActiveAt: rec.LastActiveAt,
		ExpiresAt:    rec.ExpiresAt,
	}
}

var _ Store = (*RedisStore)(nil)
