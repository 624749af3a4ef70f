package middlewares

import (
	"golang.org/x/text/language"

	"github.com/dmitrymomot/anvil/internal"
)

// languageKey is the context key for the negotiated language tag.
type languageKey struct{}

// LanguageConfig configures the language middleware.
type LanguageConfig struct {
	// Extractor reads an explicit language override before Accept-Language
	// negotiation. Defaults to the lang query parameter, then a lang cookie.
	Extractor internal.Extractor

	extractorSet bool
}

// LanguageOption configures LanguageConfig.
type LanguageOption func(*LanguageConfig)

// WithLanguageExtractor sets a custom override source chain.
func WithLanguageExtractor(ext internal.Extractor) LanguageOption {
	return func(cfg *LanguageConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// Language returns middleware that negotiates the response language against
// the supported tags. An explicit override (query or cookie by default) wins
// over the Accept-Language header; with no usable preference the first
// supported tag is used. The resolved tag is always one of supported and is
// exposed through GetLanguage.
func Language(supported []language.Tag, opts ...LanguageOption) internal.Middleware {
	if len(supported) == 0 {
		supported = []language.Tag{language.English}
	}
	matcher := language.NewMatcher(supported)

	cfg := &LanguageConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.extractorSet {
		cfg.Extractor = internal.NewExtractor(
			internal.FromQuery("lang"),
			internal.FromCookie("lang"),
		)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			override, _ := cfg.Extractor.Extract(c)
			_, idx := language.MatchStrings(matcher, override, c.Header("Accept-Language"))
			tag := supported[idx]

			c.Set(languageKey{}, tag)
			c.SetHeader("Content-Language", tag.String())
			c.Response().Header().Add("Vary", "Accept-Language")

			return next(c)
		}
	}
}

// GetLanguage returns the negotiated language tag, or language.Und when the
// Language middleware did not run.
func GetLanguage(c internal.Context) language.Tag {
	if v, ok := c.Get(languageKey{}).(language.Tag); ok {
		return v
	}
	return language.Und
}
