package internal

import (
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
)

// settingsConfig carries the env struct tags for LoadSettings.
type settingsConfig struct {
	Env             string   `env:"APP_ENV" envDefault:"development"`
	Debug           bool     `env:"APP_DEBUG" envDefault:"false"`
	Addr            string   `env:"APP_ADDR" envDefault:":8080"`
	SecretKey       string   `env:"APP_SECRET_KEY"`
	StaticDirs      []string `env:"APP_STATIC_DIRS"`
	StaticURLPrefix string   `env:"APP_STATIC_URL_PREFIX" envDefault:"/static/"`
}

// Settings holds application configuration. It is built once, from the
// environment or via options, and never mutated afterwards; request code
// reads it through accessors only. Per-route overlays shadow Get lookups
// on the Context without touching the Settings themselves.
type Settings struct {
	env             string
	debug           bool
	addr            string
	secretKey       string
	staticDirs      []string
	staticURLPrefix string
	extra           map[string]string
}

// SettingsOption configures Settings during construction.
type SettingsOption func(*Settings)

// NewSettings builds Settings programmatically. Intended for tests and for
// applications that configure themselves outside the environment.
func NewSettings(opts ...SettingsOption) *Settings {
	s := &Settings{
		env:             "development",
		addr:            ":8080",
		staticURLPrefix: "/static/",
		extra:           make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadSettings builds Settings from the environment.
func LoadSettings() (*Settings, error) {
	cfg, err := env.ParseAs[settingsConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse settings from env: %w", err)
	}
	return &Settings{
		env:             cfg.Env,
		debug:           cfg.Debug,
		addr:            cfg.Addr,
		secretKey:       cfg.SecretKey,
		staticDirs:      cfg.StaticDirs,
		staticURLPrefix: cfg.StaticURLPrefix,
		extra:           make(map[string]string),
	}, nil
}

// WithEnv sets the environment name (development, staging, production).
func WithEnv(name string) SettingsOption {
	return func(s *Settings) {
		if name != "" {
			s.env = name
		}
	}
}

// WithDebug toggles debug mode. In debug mode the 500 page includes the
// error and a stack trace.
func WithDebug(debug bool) SettingsOption {
	return func(s *Settings) {
		s.debug = debug
	}
}

// WithAddr sets the bind address in host:port form.
func WithAddr(addr string) SettingsOption {
	return func(s *Settings) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithSecretKey sets the secret used for signed and encrypted cookies.
func WithSecretKey(key string) SettingsOption {
	return func(s *Settings) {
		s.secretKey = key
	}
}

// WithStaticDirs sets the directories searched by the static responder,
// in order.
func WithStaticDirs(dirs ...string) SettingsOption {
	return func(s *Settings) {
		s.staticDirs = slices.Clone(dirs)
	}
}

// WithStaticURLPrefix sets the URL prefix the dispatcher maps onto the
// static directories.
func WithStaticURLPrefix(prefix string) SettingsOption {
	return func(s *Settings) {
		if prefix != "" {
			s.staticURLPrefix = prefix
		}
	}
}

// WithSetting stores a free-form key.
func WithSetting(key, value string) SettingsOption {
	return func(s *Settings) {
		s.extra[key] = value
	}
}

// Env returns the environment name.
func (s *Settings) Env() string {
	return s.env
}

// Debug reports whether debug mode is on.
func (s *Settings) Debug() bool {
	return s.debug
}

// Addr returns the bind address.
func (s *Settings) Addr() string {
	return s.addr
}

// SecretKey returns the cookie secret.
func (s *Settings) SecretKey() string {
	return s.secretKey
}

// StaticDirs returns a copy of the static directory list.
func (s *Settings) StaticDirs() []string {
	return slices.Clone(s.staticDirs)
}

// StaticURLPrefix returns the static URL prefix.
func (s *Settings) StaticURLPrefix() string {
	return s.staticURLPrefix
}

// Get looks up a free-form key.
func (s *Settings) Get(key string) (string, bool) {
	v, ok := s.extra[key]
	return v, ok
}

// GetOrDefault looks up a free-form key, falling back to def.
func (s *Settings) GetOrDefault(key, def string) string {
	if v, ok := s.extra[key]; ok {
		return v
	}
	return def
}

// Has reports whether a free-form key is set.
func (s *Settings) Has(key string) bool {
	_, ok := s.extra[key]
	return ok
}
