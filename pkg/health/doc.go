// Package health provides liveness and readiness handlers for
// orchestrated deployments.
//
// Liveness answers "is the process running"; readiness answers "can it
// serve traffic" by probing dependencies concurrently:
//
//	checks := health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//	}
//
//	mux.Handle("/health/live", health.LivenessHandler())
//	mux.Handle("/health/ready", health.ReadinessHandler(checks,
//		health.WithTimeout(3*time.Second),
//		health.WithLogger(log),
//	))
//
// Responses are plain text by default; clients that send
// Accept: application/json (or ?format=json) get a per-check breakdown:
//
//	{"status":"unhealthy","checks":{"postgres":{"status":"healthy"},
//	 "redis":{"status":"unhealthy","error":"redis: healthcheck failed"}}}
//
// A failing readiness run responds 503 Service Unavailable.
package health
