package hostrouter

import (
	"net/http"
	"strings"
)

// GetDomain returns the request host lowercased and without the port.
//
//	"Example.COM:8080" -> "example.com"
//	"[::1]:8080"       -> "[::1]"
func GetDomain(r *http.Request) string {
	return normalizeHost(r.Host)
}

// GetSubdomain returns the labels in front of baseDomain, or "" when the
// host is the base domain itself or does not belong to it.
//
//	host "foo.example.com", base "example.com"     -> "foo"
//	host "bar.foo.example.com", base "example.com" -> "bar.foo"
//	host "example.com", base "example.com"         -> ""
//	host "other.com", base "example.com"           -> ""
func GetSubdomain(r *http.Request, baseDomain string) string {
	host := normalizeHost(r.Host)
	base := strings.ToLower(baseDomain)

	if host == base {
		return ""
	}

	suffix := "." + base
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	return strings.TrimSuffix(host, suffix)
}
