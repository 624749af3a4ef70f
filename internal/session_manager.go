package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/anvil/pkg/id"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName    = "__sid"
	defaultSessionMaxAge        = 86400 * 30 // 30 days
	defaultSessionTouchInterval = 5 * time.Minute
)

// SessionManager handles session lifecycle and cookie management.
type SessionManager struct {
	store         session.Store
	logger        *slog.Logger
	cookieName    string
	domain        string
	path          string
	maxAge        int
	touchInterval time.Duration
	sameSite      http.SameSite
	secure        bool
	httpOnly      bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:         store,
		cookieName:    defaultSessionCookieName,
		maxAge:        defaultSessionMaxAge,
		touchInterval: defaultSessionTouchInterval,
		path:          "/",
		httpOnly:      true,
		sameSite:      http.SameSiteLaxMode,
	}

	for _, opt := range opts {
		opt(sm)
	}

	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session max age in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

// WithSessionPath sets the session cookie path.
func WithSessionPath(path string) SessionOption {
	return func(sm *SessionManager) {
		if path != "" {
			sm.path = path
		}
	}
}

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

// WithSessionHTTPOnly sets the session cookie HttpOnly flag.
func WithSessionHTTPOnly(httpOnly bool) SessionOption {
	return func(sm *SessionManager) {
		sm.httpOnly = httpOnly
	}
}

// WithSessionSameSite sets the session cookie SameSite attribute.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return func(sm *SessionManager) {
		sm.sameSite = sameSite
	}
}

// WithSessionTouchInterval sets how often a clean session's last-activity
// timestamp is persisted. Requests inside the interval skip the store write.
func WithSessionTouchInterval(d time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if d > 0 {
			sm.touchInterval = d
		}
	}
}

// SetLogger sets the logger for session events. Called by App after initialization.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// LoadSession loads an existing session from the request cookie.
// Returns nil, nil if no session cookie exists.
// Returns ErrNotFound if the session doesn't exist in the store.
// Returns ErrExpired if the session has expired.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return nil, nil // No session cookie
	}

	token := cookie.Value
	if token == "" {
		return nil, nil
	}

	return sm.store.Get(ctx, token)
}

// CreateSession creates a new session with metadata extracted from the request.
func (sm *SessionManager) CreateSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	sessionID := id.NewULID()
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	expiresAt := time.Now().Add(time.Duration(sm.maxAge) * time.Second)

	sess := session.New(sessionID, token, expiresAt)
	sess.IP = clientIP(r)
	sess.UserAgent = r.UserAgent()

	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	sess.ClearNew()
	sess.ClearDirty()

	return sess, nil
}

// SaveSession writes the session cookie to the response.
func (sm *SessionManager) SaveSession(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, sm.sessionCookie(sess.Token, sm.maxAge))
}

// TouchSession refreshes the session's last-activity timestamp in the store.
// Touches are throttled by the manager's touch interval so routine page loads
// don't each turn into a store write.
func (sm *SessionManager) TouchSession(ctx context.Context, sess *session.Session) error {
	now := time.Now()
	if now.Sub(sess.LastActiveAt) < sm.touchInterval {
		return nil
	}
	if err := sm.store.Touch(ctx, sess.ID, now); err != nil {
		return err
	}
	sess.LastActiveAt = now
	return nil
}

// RotateToken generates a new token for the session.
// Called after authentication to prevent session fixation attacks by invalidating
// the old token and requiring a fresh one from the attacker.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	sess.Token = newToken
	sess.MarkDirty()

	// Update in store with new token
	if err := sm.store.Update(ctx, sess); err != nil {
		sess.Token = oldToken // Rollback on error
		return err
	}

	return nil
}

// DeleteSession clears the session cookie.
func (sm *SessionManager) DeleteSession(w http.ResponseWriter) {
	http.SetCookie(w, sm.sessionCookie("", -1))
}

// sessionCookie builds the session cookie with the manager's attributes.
func (sm *SessionManager) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     sm.path,
		Domain:   sm.domain,
		MaxAge:   maxAge,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: sm.sameSite,
	}
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// clientIP extracts the originating client address, preferring proxy
// headers over the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
