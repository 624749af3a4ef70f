package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler responds OK unconditionally: the process is up and
// serving. Wire it to a liveness probe.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, &Response{Status: StatusHealthy})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler runs all probes and responds 503 when any fails. Wire it
// to a readiness probe so a degraded instance stops receiving traffic.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts...)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := runChecks(r.Context(), checks, cfg)

		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		if wantsJSON(r) {
			writeJSON(w, status, resp)
			return
		}

		w.WriteHeader(status)
		if resp.Status == StatusHealthy {
			_, _ = w.Write([]byte("OK"))
		} else {
			_, _ = w.Write([]byte("Service Unavailable"))
		}
	}
}

// wantsJSON honors both ?format=json and the Accept header; the query
// parameter exists for probing from a browser.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
