package hostrouter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/anvil/pkg/hostrouter"
)

func requestWithHost(host string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "http://placeholder/", nil)
	req.Host = host
	return req
}

func TestGetDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{"example.com", "example.com"},
		{"Example.COM", "example.com"},
		{"example.com:8080", "example.com"},
		{"[::1]:8080", "[::1]"},
		{"[2001:db8::1]", "[2001:db8::1]"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, hostrouter.GetDomain(requestWithHost(tt.host)))
		})
	}
}

func TestGetSubdomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		base string
		want string
	}{
		{"single label", "foo.example.com", "example.com", "foo"},
		{"nested labels", "bar.foo.example.com", "example.com", "bar.foo"},
		{"base itself", "example.com", "example.com", ""},
		{"unrelated host", "other.com", "example.com", ""},
		{"suffix but not label boundary", "notexample.com", "example.com", ""},
		{"mixed case with port", "Foo.Example.COM:8080", "example.com", "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, hostrouter.GetSubdomain(requestWithHost(tt.host), tt.base))
		})
	}
}
