package hostrouter

import (
	"net/http"
	"strings"
)

// Routes maps host patterns to handlers. Patterns are either exact hosts
// ("api.example.com") or wildcards ("*.example.com").
type Routes map[string]http.Handler

// Router dispatches requests on the Host header. Exact patterns win over
// wildcards; unmatched hosts go to the fallback handler.
type Router struct {
	exact    map[string]http.Handler
	wildcard map[string]http.Handler // keyed by base domain: "*.example.com" -> "example.com"
	fallback http.Handler
}

// New builds a host router. Pattern matching is case-insensitive and
// ignores the port. Empty patterns are skipped.
func New(routes Routes, fallback http.Handler) *Router {
	r := &Router{
		exact:    make(map[string]http.Handler),
		wildcard: make(map[string]http.Handler),
		fallback: fallback,
	}

	for pattern, handler := range routes {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "":
		case strings.HasPrefix(pattern, "*."):
			r.wildcard[pattern[2:]] = handler
		default:
			r.exact[pattern] = handler
		}
	}

	return r
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	host := normalizeHost(req.Host)

	if h, ok := r.exact[host]; ok {
		h.ServeHTTP(w, req)
		return
	}

	// "*.example.com" matches a single label before the base domain.
	if _, domain, ok := strings.Cut(host, "."); ok {
		if h, ok := r.wildcard[domain]; ok {
			h.ServeHTTP(w, req)
			return
		}
	}

	r.fallback.ServeHTTP(w, req)
}

// normalizeHost lowercases the host and strips the port, leaving IPv6
// bracket notation intact.
func normalizeHost(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		if !strings.Contains(host[idx:], "]") {
			host = host[:idx]
		}
	}
	return strings.ToLower(host)
}
