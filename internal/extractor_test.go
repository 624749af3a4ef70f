package internal_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// extractHandler runs the extractor against the request and records what it
// produced.
func extractHandler(ex internal.Extractor, got *string, found *bool) internal.HandlerFunc {
	return func(c internal.Context) error {
		*got, *found = ex.Extract(c)
		return c.NoContent(http.StatusOK)
	}
}

func TestExtractor_SourceOrder(t *testing.T) {
	t.Parallel()

	ex := internal.NewExtractor(
		internal.FromHeader("X-Token"),
		internal.FromQuery("token"),
	)
	var (
		got   string
		found bool
	)
	app := newApp(func(r internal.Router) {
		r.GET("/probe", extractHandler(ex, &got, &found))
	})

	// The first source that produces a value wins.
	req := httptest.NewRequest(http.MethodGet, "/probe?token=from-query", nil)
	req.Header.Set("X-Token", "from-header")
	app.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, found)
	require.Equal(t, "from-header", got)

	doRequest(app, http.MethodGet, "/probe?token=from-query")
	require.True(t, found)
	require.Equal(t, "from-query", got)

	doRequest(app, http.MethodGet, "/probe")
	require.False(t, found)
	require.Empty(t, got)
}

func TestExtractor_RequestSources(t *testing.T) {
	t.Parallel()

	t.Run("param", func(t *testing.T) {
		t.Parallel()
		ex := internal.NewExtractor(internal.FromParam("tok"))
		var (
			got   string
			found bool
		)
		app := newApp(func(r internal.Router) {
			r.GET("/probe/{tok}", extractHandler(ex, &got, &found))
		})

		doRequest(app, http.MethodGet, "/probe/abc")
		require.True(t, found)
		require.Equal(t, "abc", got)
	})

	t.Run("form", func(t *testing.T) {
		t.Parallel()
		ex := internal.NewExtractor(internal.FromForm("csrf_token"))
		var (
			got   string
			found bool
		)
		app := newApp(func(r internal.Router) {
			r.POST("/probe", extractHandler(ex, &got, &found))
		})

		form := url.Values{"csrf_token": {"f0rm"}}
		req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		app.ServeHTTP(httptest.NewRecorder(), req)
		require.True(t, found)
		require.Equal(t, "f0rm", got)
	})

	t.Run("cookie", func(t *testing.T) {
		t.Parallel()
		ex := internal.NewExtractor(internal.FromCookie("sid"))
		var (
			got   string
			found bool
		)
		app := newApp(func(r internal.Router) {
			r.GET("/probe", extractHandler(ex, &got, &found))
		})

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "c00kie"})
		app.ServeHTTP(httptest.NewRecorder(), req)
		require.True(t, found)
		require.Equal(t, "c00kie", got)
	})
}

func TestExtractor_BearerToken(t *testing.T) {
	t.Parallel()

	ex := internal.NewExtractor(internal.FromBearerToken())
	var (
		got   string
		found bool
	)
	app := newApp(func(r internal.Router) {
		r.GET("/probe", extractHandler(ex, &got, &found))
	})

	send := func(auth string) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		app.ServeHTTP(httptest.NewRecorder(), req)
	}

	send("Bearer abc123")
	require.True(t, found)
	require.Equal(t, "abc123", got)

	// Scheme matching is case-insensitive.
	send("bEaReR xyz")
	require.True(t, found)
	require.Equal(t, "xyz", got)

	send("Basic dXNlcjpwYXNz")
	require.False(t, found)

	send("Bearer ")
	require.False(t, found)

	send("")
	require.False(t, found)
}

func TestExtractor_SignedCookie(t *testing.T) {
	t.Parallel()

	ex := internal.NewExtractor(internal.FromCookieSigned("uid"))
	var (
		got   string
		found bool
	)
	app := newApp(func(r internal.Router) {
		r.GET("/seed", func(c internal.Context) error {
			if err := c.SetCookieSigned("uid", "signed-7", 3600); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/probe", extractHandler(ex, &got, &found))
	}, internal.WithSettings(internal.NewSettings(
		internal.WithSecretKey("test-secret-key-0123456789abcdef"),
	)))

	seed := doRequest(app, http.MethodGet, "/seed")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	carryCookies(seed, req)
	app.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, found)
	require.Equal(t, "signed-7", got)

	// Tampered cookies read as absent, not as an error.
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "uid", Value: "forged"})
	app.ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, found)
}

func TestExtractor_Session(t *testing.T) {
	t.Parallel()

	ex := internal.NewExtractor(internal.FromSession("uid"))
	var (
		got   string
		found bool
	)
	app := newApp(func(r internal.Router) {
		r.GET("/seed", func(c internal.Context) error {
			if err := c.InitSession(); err != nil {
				return err
			}
			if err := c.SetSessionValue("uid", 42); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/probe", extractHandler(ex, &got, &found))
	}, internal.WithSession(session.NewMemoryStore()))

	seed := doRequest(app, http.MethodGet, "/seed")

	// Non-string session values are rendered with fmt.Sprint.
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	carryCookies(seed, req)
	app.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, found)
	require.Equal(t, "42", got)

	// Without a session cookie the source yields nothing.
	doRequest(app, http.MethodGet, "/probe")
	require.False(t, found)
}
