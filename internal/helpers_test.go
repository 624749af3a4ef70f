package internal_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/internal"
)

func TestTypedParam(t *testing.T) {
	t.Parallel()

	var (
		asInt int
		asStr string
	)
	app := newApp(func(r internal.Router) {
		r.GET("/items/{id}", func(c internal.Context) error {
			asInt = internal.Param[int](c, "id")
			asStr = internal.Param[string](c, "id")
			return c.NoContent(http.StatusOK)
		})
	})

	doRequest(app, http.MethodGet, "/items/42")
	require.Equal(t, 42, asInt)
	require.Equal(t, "42", asStr)

	// Unparseable values collapse to the zero value.
	doRequest(app, http.MethodGet, "/items/abc")
	require.Zero(t, asInt)
	require.Equal(t, "abc", asStr)
}

func TestParseParam(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/items/{id}", func(c internal.Context) error {
			id, err := internal.ParseParam[int64](c, "id")
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, fmt.Sprintf("item %d", id))
		})
	})

	rec := doRequest(app, http.MethodGet, "/items/9000")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "item 9000", rec.Body.String())

	// Malformed values surface as 400 through the error funnel.
	rec = doRequest(app, http.MethodGet, "/items/nine")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "cannot parse value")
}

func TestTypedQuery(t *testing.T) {
	t.Parallel()

	type probe struct {
		s    string
		f    float64
		n    int
		wide int64
		dflt int
		b    bool
	}
	var got probe
	app := newApp(func(r internal.Router) {
		r.GET("/q", func(c internal.Context) error {
			got = probe{
				n:    internal.Query[int](c, "n"),
				wide: internal.Query[int64](c, "wide"),
				f:    internal.Query[float64](c, "f"),
				b:    internal.Query[bool](c, "b"),
				s:    internal.Query[string](c, "s"),
				dflt: internal.QueryDefault[int](c, "limit", 25),
			}
			return c.NoContent(http.StatusOK)
		})
	})

	doRequest(app, http.MethodGet, "/q?n=5&wide=9000000000&f=2.5&b=true&s=x&limit=50")
	require.Equal(t, probe{n: 5, wide: 9000000000, f: 2.5, b: true, s: "x", dflt: 50}, got)

	// Missing and unparseable values fall back to defaults or zero values.
	doRequest(app, http.MethodGet, "/q?n=zz&f=zz&b=zz&limit=zz")
	require.Equal(t, probe{dflt: 25}, got)
}

func TestParseQuery(t *testing.T) {
	t.Parallel()

	var parseErr error
	app := newApp(func(r internal.Router) {
		r.GET("/q", func(c internal.Context) error {
			_, parseErr = internal.ParseQuery[bool](c, "flag")
			return c.NoContent(http.StatusOK)
		})
	})

	doRequest(app, http.MethodGet, "/q?flag=true")
	require.NoError(t, parseErr)

	doRequest(app, http.MethodGet, "/q?flag=yes")
	require.ErrorIs(t, parseErr, internal.ErrParseValue)
	require.Contains(t, parseErr.Error(), `"flag"`)
}

func TestTypedForm(t *testing.T) {
	t.Parallel()

	var (
		n        int
		d        float64
		parseErr error
	)
	app := newApp(func(r internal.Router) {
		r.POST("/f", func(c internal.Context) error {
			n = internal.Form[int](c, "n")
			d = internal.FormDefault[float64](c, "ratio", 1.5)
			_, parseErr = internal.ParseForm[int](c, "bad")
			return c.NoContent(http.StatusOK)
		})
	})

	form := url.Values{"n": {"3"}, "bad": {"x"}}
	req := httptest.NewRequest(http.MethodPost, "/f", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, 3, n)
	require.Equal(t, 1.5, d)
	require.ErrorIs(t, parseErr, internal.ErrParseValue)
}

func TestContextValue(t *testing.T) {
	t.Parallel()

	type countKey struct{}

	var (
		hit  int
		miss string
	)
	app := newApp(func(r internal.Router) {
		r.GET("/v", func(c internal.Context) error {
			c.Set(countKey{}, 3)
			hit = internal.ContextValue[int](c, countKey{})
			miss = internal.ContextValue[string](c, countKey{})
			return c.NoContent(http.StatusOK)
		})
	})

	doRequest(app, http.MethodGet, "/v")
	require.Equal(t, 3, hit)
	require.Empty(t, miss)
}
