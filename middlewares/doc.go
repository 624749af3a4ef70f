// Package middlewares provides HTTP middleware for anvil applications.
//
// Middleware wraps route handlers and runs only for requests that matched a
// registered route. Register globally via anvil.WithMiddleware, per group via
// Router.Use, or per route as trailing arguments to the registration call.
//
// # Request ID
//
// RequestID assigns every request an identifier, preserving upstream tracing
// IDs when present:
//
//	app := anvil.New(
//	    anvil.WithMiddleware(middlewares.RequestID()),
//	)
//
// Pair it with the logger so entries carry the ID automatically:
//
//	anvil.WithLogger("api", middlewares.RequestIDExtractor())
//
// # Access logging
//
// Logging emits one structured entry per request with method, path, status,
// size, and duration:
//
//	anvil.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Logging(log, middlewares.WithLoggingSkipPaths("/health/live", "/health/ready")),
//	)
//
// # CSRF protection
//
// CSRF implements the double-submit cookie pattern with a signed cookie.
// Mutating requests must echo the token in the X-CSRF-Token header or the
// csrf_token form field; handlers embed it with CSRFToken(c):
//
//	anvil.WithMiddleware(middlewares.CSRF())
//
// # CORS
//
// CORS handles preflight requests and response headers:
//
//	anvil.WithMiddleware(middlewares.CORS(
//	    middlewares.WithAllowOrigins("https://app.example.com"),
//	    middlewares.WithAllowCredentials(),
//	))
//
// # Timeouts
//
// Timeout bounds handler execution and surfaces a TimeoutError through the
// error funnel when exceeded:
//
//	anvil.WithMiddleware(middlewares.Timeout(5 * time.Second))
//
// # Language negotiation
//
// Language resolves the response language from an explicit override or the
// Accept-Language header, constrained to the supported tags:
//
//	anvil.WithMiddleware(middlewares.Language([]language.Tag{
//	    language.English,
//	    language.German,
//	}))
//
//	func handler(c anvil.Context) error {
//	    tag := middlewares.GetLanguage(c)
//	    ...
//	}
package middlewares
