// Package anvil provides a small, opinionated framework for building
// server-rendered web applications and HTTP APIs in Go.
//
// Anvil keeps orchestration thin and explicit: an [App] owns the routes,
// middleware, sessions, cookies, and error rendering for one host, while
// business logic stays in plain Go handlers that return errors.
//
// # Quick Start
//
// Create a new application with anvil.New(), configure it with options,
// and call Run() to start the HTTP server:
//
//	app := anvil.New(
//	    anvil.WithSettings(anvil.NewSettings(
//	        anvil.WithSecretKey(os.Getenv("SECRET_KEY")),
//	    )),
//	    anvil.WithHandlers(
//	        handlers.NewAuth(repo),
//	        handlers.NewPages(repo),
//	    ),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes:
//
//	type AuthHandler struct {
//	    repo *repository.Queries
//	}
//
//	func NewAuth(repo *repository.Queries) *AuthHandler {
//	    return &AuthHandler{repo: repo}
//	}
//
//	func (h *AuthHandler) Routes(r anvil.Router) {
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.handleLogin)
//	    r.POST("/logout", h.handleLogout)
//	}
//
// Route patterns mix literal segments with {name} placeholders, each
// matching exactly one path segment. Captured values read back as strings
// or through the typed helpers:
//
//	r.GET("/users/{id}", func(c anvil.Context) error {
//	    id := anvil.Param[int64](c, "id")
//	    return c.JSON(200, repo.User(id))
//	})
//
// # Errors
//
// Handlers report failures by returning errors. Structured [HTTPError]
// values render with their status code; anything else renders as a 500
// without leaking internals:
//
//	func (h *AuthHandler) show(c anvil.Context) error {
//	    user, err := h.repo.Find(anvil.Param[int64](c, "id"))
//	    if err != nil {
//	        return anvil.ErrNotFound("no such user", anvil.WithError(err))
//	    }
//	    return c.JSON(200, user)
//	}
//
// An [Abort] short-circuits with a fully prepared response, bypassing error
// rendering. Panics are recovered and rendered as 500s.
//
// # Middleware
//
// Middleware wraps handlers to add cross-cutting concerns. It runs only for
// matched routes, never for 404s or mounted handlers:
//
//	app := anvil.New(
//	    anvil.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Logging(log),
//	    ),
//	)
//
// # Shutdown
//
// The application handles SIGINT/SIGTERM for graceful shutdown.
// Register cleanup functions with ShutdownHook:
//
//	err := app.Run(":8080",
//	    anvil.ShutdownHook(db.Shutdown(pool)),
//	)
//
// # Multi-Domain Serving
//
// Compose several Apps under one listener with the package-level [Run]:
//
//	err := anvil.Run(
//	    anvil.Domain("api.acme.com", apiApp),
//	    anvil.Domain("*.acme.com", tenantApp),
//	    anvil.Fallback(landingApp),
//	    anvil.Address(":8080"),
//	)
package anvil
