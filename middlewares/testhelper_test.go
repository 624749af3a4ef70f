package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/anvil/internal"
)

// mwApp builds a minimal application with the middleware under test wrapped
// around a single handler registered for GET, POST, and OPTIONS.
func mwApp(mw internal.Middleware, h internal.HandlerFunc, opts ...internal.Option) *internal.App {
	opts = append(opts,
		internal.WithMiddleware(mw),
		internal.WithHandlers(internal.RoutesFunc(func(r internal.Router) {
			r.GET("/t", h)
			r.POST("/t", h)
			r.OPTIONS("/t", h)
		})),
	)
	return internal.New(opts...)
}

func do(app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func okText(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}
