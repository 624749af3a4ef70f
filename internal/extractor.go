package internal

import (
	"fmt"
	"strings"
)

// ExtractorSource pulls a candidate value from the request.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries multiple sources in order and returns the first non-empty
// match. Middlewares use it to make token lookup configurable (header, form,
// cookie) without growing their own option surface.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that consults sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value any source produces.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func nonEmpty(v string) (string, bool) {
	return v, v != ""
}

// FromHeader reads from a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Header(name))
	}
}

// FromQuery reads from a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Query(name))
	}
}

// FromForm reads from a form field.
func FromForm(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Form(name))
	}
}

// FromParam reads from a path parameter.
func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Param(name))
	}
}

// FromCookie reads from a plain cookie.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.Cookie(name)
		if err != nil {
			return "", false
		}
		return nonEmpty(v)
	}
}

// FromCookieSigned reads from a signed cookie and rejects tampered values.
func FromCookieSigned(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.CookieSigned(name)
		if err != nil {
			return "", false
		}
		return nonEmpty(v)
	}
}

// FromCookieEncrypted reads from an encrypted cookie.
func FromCookieEncrypted(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.CookieEncrypted(name)
		if err != nil {
			return "", false
		}
		return nonEmpty(v)
	}
}

// FromSession reads from a session value. Non-string values are rendered
// with fmt.Sprint.
func FromSession(key string) ExtractorSource {
	return func(c Context) (string, bool) {
		val, err := c.SessionValue(key)
		if err != nil || val == nil {
			return "", false
		}
		if s, ok := val.(string); ok {
			return nonEmpty(s)
		}
		return nonEmpty(fmt.Sprint(val))
	}
}

// FromBearerToken reads a Bearer token from the Authorization header,
// matching the scheme case-insensitively.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		auth := c.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return nonEmpty(strings.TrimSpace(auth[7:]))
	}
}
