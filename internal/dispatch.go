package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
)

// ServeHTTP dispatches a request against the frozen route table: exact
// routes first, then pattern routes in registration order, then mounted
// handlers, then the static file fallback, then 405/404. Global and
// per-route middleware run only for matched routes; mounted handlers
// receive the request untouched.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if route, params, ok := a.routes.resolve(r.Method, path); ok {
		c := newContext(w, r, a, route, params)
		mw := a.middlewares
		if len(route.mw) > 0 {
			mw = append(slices.Clone(a.middlewares), route.mw...)
		}
		a.invoke(c, route.handler, mw)
		return
	}

	if h, ok := a.routes.resolveMount(path); ok {
		h.ServeHTTP(w, r)
		return
	}

	if a.staticEligible(r.Method, path) {
		c := newContext(w, r, a, nil, nil)
		a.invoke(c, func(Context) error { return a.serveStaticPath(c) }, nil)
		return
	}

	c := newContext(w, r, a, nil, nil)
	if allowed := a.routes.allowedMethods(path); len(allowed) > 0 {
		c.SetHeader("Allow", strings.Join(allowed, ", "))
		a.invoke(c, a.methodNotAllowed(), nil)
		return
	}
	a.invoke(c, a.notFound(), nil)
}

// invoke wraps the handler in the middleware chain and runs it with the
// panic and error boundary in place. The first middleware in mw is the
// outermost.
func (a *App) invoke(c *requestContext, h HandlerFunc, mw []Middleware) {
	defer func() {
		if rec := recover(); rec != nil {
			a.fail(c, &PanicError{Value: rec, Stack: debug.Stack()})
		}
	}()

	chain := h
	for i := len(mw) - 1; i >= 0; i-- {
		chain = mw[i](chain)
	}
	if err := chain(c); err != nil {
		a.fail(c, err)
	}
}

// fail resolves a handler error exactly once. Aborts adopt their prepared
// response; everything else goes to the configured error handler or the
// default funnel. Errors never propagate past this point.
func (a *App) fail(c *requestContext, err error) {
	if ab, ok := AsAbort(err); ok {
		a.writeAbort(c, ab)
		return
	}

	if c.Written() {
		a.logError(c, err)
		return
	}

	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			a.logError(c, fmt.Errorf("error handler: %w", herr))
			a.writeDefaultErrorPage(c, ErrInternal("internal server error"), err)
		}
		return
	}

	a.renderError(c, err)
}

// renderError is the default funnel: parse failures become 400, HTTPErrors
// keep their status, anything else is logged and rendered as 500.
func (a *App) renderError(c *requestContext, err error) {
	if errors.Is(err, ErrParseValue) {
		err = ErrBadRequest(err.Error(), WithError(err))
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		a.logError(c, err)
		httpErr = ErrInternal("internal server error", WithError(err))
	}

	a.renderErrorPage(c, httpErr, err)
}

// renderErrorPage renders through the page registered for the status code,
// falling back to the built-in plain-text page. The HTTPError is exposed to
// custom pages via PageError.
func (a *App) renderErrorPage(c *requestContext, httpErr *HTTPError, cause error) {
	if page, ok := a.errorPages[httpErr.Code]; ok {
		c.Set(errorPageKey{}, httpErr)
		if perr := page(c); perr != nil {
			a.logError(c, fmt.Errorf("error page for status %d: %w", httpErr.Code, perr))
			if !c.Written() {
				a.writeDefaultErrorPage(c, httpErr, cause)
			}
		}
		return
	}
	a.writeDefaultErrorPage(c, httpErr, cause)
}

// writeDefaultErrorPage writes the built-in plain-text error page. In debug
// mode server errors include the cause and, for recovered panics, the stack.
func (a *App) writeDefaultErrorPage(c *requestContext, httpErr *HTTPError, cause error) {
	w := c.ResponseWriter()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpErr.Code)

	text := httpErr.Message
	if text == "" {
		text = httpErr.StatusText()
	}
	fmt.Fprintln(w, text)

	if httpErr.Code >= http.StatusInternalServerError && a.settings.Debug() && cause != nil {
		fmt.Fprintf(w, "\n%v\n", cause)
		var perr *PanicError
		if errors.As(cause, &perr) {
			_, _ = w.Write(perr.Stack)
		}
	}
}

// writeAbort adopts the response carried by an Abort. If the handler already
// wrote, the abort is logged and dropped since headers are on the wire.
func (a *App) writeAbort(c *requestContext, ab *Abort) {
	if c.Written() {
		a.logger.WarnContext(c, "abort after response started",
			slog.Int("status", ab.Response.Status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()))
		return
	}

	w := c.ResponseWriter()
	h := w.Header()
	for key, values := range ab.Response.Header {
		for _, v := range values {
			h.Add(key, v)
		}
	}
	status := ab.Response.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
	if len(ab.Response.Body) > 0 {
		_, _ = w.Write(ab.Response.Body)
	}
}

func (a *App) logError(c *requestContext, err error) {
	var perr *PanicError
	if errors.As(err, &perr) {
		a.logger.ErrorContext(c, "panic recovered",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", perr),
			slog.String("stack", string(perr.Stack)))
		return
	}
	a.logger.ErrorContext(c, "request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err))
}

// staticEligible reports whether the request may be served from the static
// directories: GET or HEAD under the configured URL prefix.
func (a *App) staticEligible(method, path string) bool {
	if method != http.MethodGet && method != http.MethodHead {
		return false
	}
	prefix := a.settings.StaticURLPrefix()
	if prefix == "" || len(a.settings.StaticDirs()) == 0 {
		return false
	}
	return strings.HasPrefix(path, prefix)
}

func (a *App) notFound() HandlerFunc {
	if a.notFoundHandler != nil {
		return a.notFoundHandler
	}
	if page, ok := a.errorPages[http.StatusNotFound]; ok {
		return page
	}
	return func(c Context) error {
		return c.String(http.StatusNotFound, "404 page not found\n")
	}
}

func (a *App) methodNotAllowed() HandlerFunc {
	if a.methodNotAllowedHandler != nil {
		return a.methodNotAllowedHandler
	}
	if page, ok := a.errorPages[http.StatusMethodNotAllowed]; ok {
		return page
	}
	return func(c Context) error {
		return c.String(http.StatusMethodNotAllowed, "405 method not allowed\n")
	}
}

type errorPageKey struct{}

// PageError returns the HTTPError being rendered by a custom error page
// registered via WithErrorPage. It returns nil outside of error rendering.
func PageError(c Context) *HTTPError {
	if err, ok := c.Get(errorPageKey{}).(*HTTPError); ok {
		return err
	}
	return nil
}
