package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// Errors.
var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrDecrypt   = errors.New("cookie: decryption failed")
)

// Manager handles cookie operations. The zero-value attributes set at New
// become the defaults for every cookie; each write operation accepts the same
// Option funcs to override attributes for that single cookie.
type Manager struct {
	secret   []byte      // nil = no encryption/signing
	aead     cipher.AEAD // derived from secret once at New
	domain   string
	path     string
	expires  time.Time
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager, or a single cookie when passed to a write
// operation.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.secret != nil {
		// The AES key is the SHA-256 of the secret, so it is always 32
		// bytes and cipher construction cannot fail.
		key := sha256.Sum256(m.secret)
		block, _ := aes.NewCipher(key[:])
		m.aead, _ = cipher.NewGCM(block)
	}
	return m
}

// WithSecret sets the secret for signing and encryption.
// Secrets shorter than 32 bytes are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= 32 {
			m.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		m.path = path
	}
}

// WithExpires sets an absolute expiry time. Max-Age (set per call) still
// applies; browsers prefer Max-Age when both are present.
func WithExpires(t time.Time) Option {
	return func(m *Manager) {
		m.expires = t
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) {
		m.httpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute (Lax, Strict, or None).
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie. Options override the manager defaults for this
// cookie only.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int, opts ...Option) {
	http.SetCookie(w, m.cookie(name, value, maxAge, opts))
}

// Delete removes a cookie. The path and domain must match the ones the cookie
// was set with, so pass the same options here.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	http.SetCookie(w, m.cookie(name, "", -1, opts))
}

// GetSigned returns a signed cookie value.
// Returns ErrNoSecret if no secret is configured.
// Returns ErrBadSig if signature verification fails.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(raw)
}

// SetSigned sets a signed cookie.
// Returns ErrNoSecret if no secret is configured.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int, opts ...Option) error {
	if m.secret == nil {
		return ErrNoSecret
	}
	http.SetCookie(w, m.cookie(name, m.sign(value), maxAge, opts))
	return nil
}

// GetEncrypted returns an encrypted cookie value.
// Returns ErrNoSecret if no secret is configured.
// Returns ErrDecrypt if decryption fails.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}

	plaintext, err := m.open(data)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}

// SetEncrypted sets an encrypted cookie.
// Returns ErrNoSecret if no secret is configured.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int, opts ...Option) error {
	if m.secret == nil {
		return ErrNoSecret
	}

	sealed, err := m.seal([]byte(value))
	if err != nil {
		return err
	}

	encoded := base64.RawURLEncoding.EncodeToString(sealed)
	http.SetCookie(w, m.cookie(name, encoded, maxAge, opts))
	return nil
}

// Flash reads and deletes a flash message.
// Returns ErrNoSecret if no secret is configured.
// Returns ErrNotFound if the flash cookie doesn't exist.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	if m.secret == nil {
		return ErrNoSecret
	}

	name := "flash_" + key
	raw, err := m.GetEncrypted(r, name)
	if err != nil {
		return err
	}

	// Delete after reading
	m.Delete(w, name)

	return json.Unmarshal([]byte(raw), dest)
}

// SetFlash sets a flash message readable once via Flash.
// Returns ErrNoSecret if no secret is configured.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	if m.secret == nil {
		return ErrNoSecret
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return m.SetEncrypted(w, "flash_"+key, string(data), 0)
}

// cookie builds an http.Cookie from the manager defaults with per-call
// options layered on top. Options mutate a copy; the manager itself is never
// changed after New.
func (m *Manager) cookie(name, value string, maxAge int, opts []Option) *http.Cookie {
	attrs := *m
	for _, opt := range opts {
		opt(&attrs)
	}

	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     attrs.path,
		Domain:   attrs.domain,
		MaxAge:   maxAge,
		Secure:   attrs.secure,
		HttpOnly: attrs.httpOnly,
		SameSite: attrs.sameSite,
	}
	if !attrs.expires.IsZero() {
		c.Expires = attrs.expires
	}
	return c
}

// sign produces the wire form base64(value).base64(hmac).
func (m *Manager) sign(value string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verify parses the signed wire form and returns the embedded value.
func (m *Manager) verify(raw string) (string, error) {
	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}

	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrBadSig
	}

	return string(value), nil
}

// seal encrypts plaintext with the manager's AEAD, prepending the nonce.
func (m *Manager) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, m.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return m.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts data produced by seal.
func (m *Manager) open(data []byte) ([]byte, error) {
	if len(data) < m.aead.NonceSize() {
		return nil, ErrDecrypt
	}
	nonce, ciphertext := data[:m.aead.NonceSize()], data[m.aead.NonceSize():]
	return m.aead.Open(nil, nonce, ciphertext, nil)
}
