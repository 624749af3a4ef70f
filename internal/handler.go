package internal

// Handler declares routes on a router.
//
// Example:
//
//	type AuthHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *AuthHandler) Routes(r anvil.Router) {
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.handleLogin)
//	}
type Handler interface {
	Routes(r Router)
}

// RoutesFunc adapts a plain function to the Handler interface.
//
// Example:
//
//	anvil.WithHandlers(anvil.RoutesFunc(func(r anvil.Router) {
//	    r.GET("/ping", pong)
//	}))
type RoutesFunc func(Router)

func (f RoutesFunc) Routes(r Router) { f(r) }

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error triggers the error funnel at the dispatch boundary.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing by
// writing a response without calling next, or wrap the response.
//
// Example:
//
//	func Auth(next anvil.HandlerFunc) anvil.HandlerFunc {
//	    return func(c anvil.Context) error {
//	        if !isAuthenticated(c) {
//	            return c.Redirect(302, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
