package hostrouter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/anvil/pkg/hostrouter"
)

func namedHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(name))
	})
}

func dispatch(t *testing.T, router *hostrouter.Router, host string) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "http://placeholder/", nil)
	req.Host = host
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Body.String()
}

func TestRouterDispatch(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(hostrouter.Routes{
		"api.example.com": namedHandler("api"),
		"*.example.com":   namedHandler("wildcard"),
		"":                namedHandler("never"),
	}, namedHandler("fallback"))

	tests := []struct {
		host string
		want string
	}{
		{"api.example.com", "api"},
		{"API.Example.COM", "api"},
		{"api.example.com:8080", "api"},
		{"foo.example.com", "wildcard"},
		{"bar.example.com:3000", "wildcard"},
		{"bar.foo.example.com", "fallback"}, // wildcard covers one label only
		{"example.com", "fallback"},
		{"other.com", "fallback"},
		{"[::1]:8080", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, dispatch(t, router, tt.host))
		})
	}
}

func TestRouterExactBeatsWildcard(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(hostrouter.Routes{
		"app.example.com": namedHandler("exact"),
		"*.example.com":   namedHandler("wildcard"),
	}, namedHandler("fallback"))

	assert.Equal(t, "exact", dispatch(t, router, "app.example.com"))
	assert.Equal(t, "wildcard", dispatch(t, router, "other.example.com"))
}
