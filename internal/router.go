package internal

import (
	"errors"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Router is the interface handlers use to declare routes.
// Registration methods return the created *Route so callers can chain
// Name and Settings. Registration is only valid while the App is being
// built; the router freezes when New returns.
type Router interface {
	// GET registers a handler for GET requests.
	GET(path string, h HandlerFunc, mw ...Middleware) *Route

	// POST registers a handler for POST requests.
	POST(path string, h HandlerFunc, mw ...Middleware) *Route

	// PUT registers a handler for PUT requests.
	PUT(path string, h HandlerFunc, mw ...Middleware) *Route

	// PATCH registers a handler for PATCH requests.
	PATCH(path string, h HandlerFunc, mw ...Middleware) *Route

	// DELETE registers a handler for DELETE requests.
	DELETE(path string, h HandlerFunc, mw ...Middleware) *Route

	// HEAD registers a handler for HEAD requests.
	HEAD(path string, h HandlerFunc, mw ...Middleware) *Route

	// OPTIONS registers a handler for OPTIONS requests.
	OPTIONS(path string, h HandlerFunc, mw ...Middleware) *Route

	// Handle registers a handler for an arbitrary HTTP method.
	Handle(method, path string, h HandlerFunc, mw ...Middleware) *Route

	// Group creates an inline route group.
	// Routes defined inside fn share this router's middleware but no
	// additional pattern prefix.
	Group(fn func(r Router))

	// Route creates a route group with a pattern prefix.
	// All routes defined inside fn share the pattern prefix.
	Route(prefix string, fn func(r Router))

	// Use appends middleware for routes registered after this call on this
	// router and its groups.
	Use(mw ...Middleware)

	// Mount attaches a plain http.Handler under the given path prefix.
	// The prefix is stripped before the handler sees the request.
	Mount(prefix string, h http.Handler)
}

// Route is a single registered route. The identity of a route is its
// (method, pattern) pair; a second registration of the same pair fails at
// boot. Name and Settings may be chained during registration.
type Route struct {
	method   string
	pattern  string
	handler  HandlerFunc
	mw       []Middleware
	rePath   *RePath
	name     string
	settings map[string]string
	table    *routeTable
}

// Name registers the route in the reverse table under the given name.
// Duplicate names panic with a RouteError.
func (r *Route) Name(name string) *Route {
	if err := r.table.setName(name, r); err != nil {
		panic(err)
	}
	return r
}

// Settings attaches a per-route settings overlay. Context setting lookups
// consult the overlay before the application settings; the overlay never
// mutates them.
func (r *Route) Settings(overlay map[string]string) *Route {
	r.settings = maps.Clone(overlay)
	return r
}

// Method returns the route's HTTP method.
func (r *Route) Method() string {
	return r.method
}

// Pattern returns the route's registered pattern.
func (r *Route) Pattern() string {
	return r.pattern
}

type routeKey struct {
	method  string
	pattern string
}

type mountPoint struct {
	handler http.Handler
	prefix  string
}

// routeTable holds the exact route map, the ordered pattern list, the
// reverse-lookup table, and mounted handlers. It is written during New and
// read-only afterwards.
type routeTable struct {
	exact    map[routeKey]*Route
	patterns []*Route
	names    map[string]*Route
	mounts   []mountPoint
	frozen   bool
}

func newRouteTable() *routeTable {
	return &routeTable{
		exact: make(map[routeKey]*Route),
		names: make(map[string]*Route),
	}
}

// register adds a route, compiling the pattern when it carries placeholders.
// Registration conflicts and compile failures panic with a RouteError so
// they surface at boot, not at request time.
func (t *routeTable) register(method, pattern string, h HandlerFunc, mw []Middleware) *Route {
	if t.frozen {
		panic(&RouteError{Method: method, Pattern: pattern, Err: errors.New("router is frozen")})
	}
	if h == nil {
		panic(&RouteError{Method: method, Pattern: pattern, Err: errors.New("nil handler")})
	}
	if !strings.HasPrefix(pattern, "/") {
		panic(&RouteError{Method: method, Pattern: pattern, Err: errors.New("pattern must begin with '/'")})
	}

	route := &Route{
		method:  method,
		pattern: pattern,
		handler: h,
		mw:      mw,
		table:   t,
	}

	if hasPlaceholders(pattern) {
		rePath, err := CompilePath(pattern)
		if err != nil {
			panic(&RouteError{Method: method, Pattern: pattern, Err: err})
		}
		for _, existing := range t.patterns {
			if existing.method == method && existing.pattern == pattern {
				panic(&RouteError{Method: method, Pattern: pattern, Err: ErrRouteExists})
			}
		}
		route.rePath = rePath
		t.patterns = append(t.patterns, route)
		return route
	}

	key := routeKey{method: method, pattern: pattern}
	if _, exists := t.exact[key]; exists {
		panic(&RouteError{Method: method, Pattern: pattern, Err: ErrRouteExists})
	}
	t.exact[key] = route
	return route
}

// setName records the route in the reverse table.
func (t *routeTable) setName(name string, route *Route) error {
	if t.frozen {
		return &RouteError{Name: name, Err: errors.New("router is frozen")}
	}
	if name == "" {
		return &RouteError{Name: name, Err: errors.New("empty route name")}
	}
	if _, exists := t.names[name]; exists {
		return &RouteError{Name: name, Err: ErrRouteNameExists}
	}
	if route.rePath == nil {
		// Exact patterns reverse to themselves; compile for uniform Fill.
		rePath, err := CompilePath(route.pattern)
		if err != nil {
			return &RouteError{Name: name, Pattern: route.pattern, Err: err}
		}
		route.rePath = rePath
	}
	route.name = name
	t.names[name] = route
	return nil
}

// mount registers a prefix-mounted http.Handler.
func (t *routeTable) mount(prefix string, h http.Handler) {
	if t.frozen {
		panic(&RouteError{Pattern: prefix, Err: errors.New("router is frozen")})
	}
	if h == nil {
		panic(&RouteError{Pattern: prefix, Err: errors.New("nil handler")})
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		t.mounts = append(t.mounts, mountPoint{prefix: "/", handler: h})
		return
	}
	t.mounts = append(t.mounts, mountPoint{prefix: prefix, handler: http.StripPrefix(prefix, h)})
}

// freeze makes any further registration a boot error.
func (t *routeTable) freeze() {
	t.frozen = true
}

// resolve looks up the route for (method, path): the exact map first, then
// the pattern list in registration order. The first matching pattern wins
// regardless of specificity.
func (t *routeTable) resolve(method, path string) (*Route, map[string]string, bool) {
	if route, ok := t.exact[routeKey{method: method, pattern: path}]; ok {
		return route, nil, true
	}
	for _, route := range t.patterns {
		if route.method != method {
			continue
		}
		if params, ok := route.rePath.Match(path); ok {
			return route, params, true
		}
	}
	return nil, nil, false
}

// resolveMount returns the first mounted handler whose prefix contains path.
func (t *routeTable) resolveMount(path string) (http.Handler, bool) {
	for _, m := range t.mounts {
		if m.prefix == "/" || path == m.prefix || strings.HasPrefix(path, m.prefix+"/") {
			return m.handler, true
		}
	}
	return nil, false
}

// allowedMethods collects the methods registered for a path, for the Allow
// header on 405 responses.
func (t *routeTable) allowedMethods(path string) []string {
	var methods []string
	for key := range t.exact {
		if key.pattern == path {
			methods = append(methods, key.method)
		}
	}
	for _, route := range t.patterns {
		if _, ok := route.rePath.Match(path); ok {
			methods = append(methods, route.method)
		}
	}
	slices.Sort(methods)
	return slices.Compact(methods)
}

// router implements Router on top of a shared routeTable. Groups copy the
// middleware slice so Use inside a group never leaks to the parent.
type router struct {
	table  *routeTable
	prefix string
	mw     []Middleware
}

func (r *router) GET(path string, h HandlerFunc, mw ...Middleware) *Route {
	return r.handle(http.MethodGet, path, h, mw...)
}

func (r *router) POST(path string, h HandlerFunc, mw ...Middleware) *Route {
	return r.handle(http.MethodPost, path, h, mw...)
}

func (r *router) PUT(path string, h HandlerFunc, mw ...Middleware) *Route {
	return r.handle(http.MethodPut, path, h, mw...)
}

func (r *router) PATCH(path string, h HandlerFunc, mw ...Middleware) *Route {
	return r.handle(http.MethodPatch, path, h, mw...)
}

func (r *router) DELETE(path string, h HandlerFunc, mw ...Middleware) *Route {
	return r.handle(http.MethodDelete, path, h, mw...)
}

func (r *router) HEAD(path string, h HandlerFunc, mw ...Middleware) *Route {
	return r.handle(http.MethodHead, path, h, mw...)
}

func (r *router) OPTIONS(path string, h HandlerFunc, mw ...Middleware) *Route {
	return r.handle(http.MethodOptions, path, h, mw...)
}

func (r *router) Handle(method, path string, h HandlerFunc, mw ...Middleware) *Route {
	return r.handle(method, path, h, mw...)
}

func (r *router) handle(method, path string, h HandlerFunc, mw ...Middleware) *Route {
	chain := slices.Clone(r.mw)
	chain = append(chain, mw...)
	return r.table.register(method, r.prefix+path, h, chain)
}

func (r *router) Group(fn func(Router)) {
	fn(&router{table: r.table, prefix: r.prefix, mw: slices.Clone(r.mw)})
}

func (r *router) Route(prefix string, fn func(Router)) {
	fn(&router{
		table:  r.table,
		prefix: r.prefix + strings.TrimSuffix(prefix, "/"),
		mw:     slices.Clone(r.mw),
	})
}

func (r *router) Use(mw ...Middleware) {
	r.mw = append(r.mw, mw...)
}

func (r *router) Mount(prefix string, h http.Handler) {
	r.table.mount(r.prefix+prefix, h)
}
