package anvil

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/cache"
	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/health"
	"github.com/dmitrymomot/anvil/pkg/logger"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It manages HTTP routing, middleware, and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Route is a single registered route. Name and Settings may be chained
	// during registration.
	Route = internal.Route

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// RoutesFunc adapts a plain function to the Handler interface.
	RoutesFunc = internal.RoutesFunc

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Settings holds immutable application configuration.
	Settings = internal.Settings

	// SettingsOption configures Settings.
	SettingsOption = internal.SettingsOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// AppStore is the application-scoped key/value store.
	AppStore = cache.Cache[any]

	// ResponseWriter wraps http.ResponseWriter with write tracking and hooks.
	ResponseWriter = internal.ResponseWriter

	// UploadFile is an uploaded multipart file with its metadata.
	UploadFile = internal.UploadFile

	// Extractor reads a string value from a prioritized chain of request
	// sources.
	Extractor = internal.Extractor

	// ExtractorSource reads a value from a single request source.
	ExtractorSource = internal.ExtractorSource

	// MIMELookupFunc resolves a content type from a file name.
	MIMELookupFunc = internal.MIMELookupFunc

	// ServeFileOption configures Context.ServeFile and ServeFileFS.
	ServeFileOption = internal.ServeFileOption

	// Abort short-circuits request processing with a prepared response.
	Abort = internal.Abort

	// AbortOption configures the response carried by an Abort.
	AbortOption = internal.AbortOption

	// HTTPError is a structured error with an HTTP status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// PanicError carries a recovered panic value and stack trace.
	PanicError = internal.PanicError

	// RouteError reports an invalid route registration at boot.
	RouteError = internal.RouteError

	// RePath is a compiled route pattern.
	RePath = internal.RePath
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := anvil.New(
//	    anvil.WithMiddleware(middlewares.Logging(log)),
//	    anvil.WithHandlers(
//	        handlers.NewAuth(repo),
//	        handlers.NewPages(repo),
//	    ),
//	)
//
//	err := app.Run(":8080", anvil.Logger(slog))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Use this for composing multiple Apps under different domain patterns.
//
// Example:
//
//	api := anvil.New(
//	    anvil.WithHandlers(handlers.NewAPIHandler()),
//	)
//
//	website := anvil.New(
//	    anvil.WithHandlers(handlers.NewLandingHandler()),
//	)
//
//	err := anvil.Run(
//	    anvil.Domain("api.acme.com", api),
//	    anvil.Domain("*.acme.com", website),
//	    anvil.Address(":8080"),
//	    anvil.Logger(slog),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// CompilePath compiles a route pattern template into a RePath.
// Patterns use {name} segments with optional regex constraints,
// e.g. "/users/{id:[0-9]+}".
func CompilePath(template string) (*RePath, error) {
	return internal.CompilePath(template)
}

// App options

// WithSettings sets the application settings.
func WithSettings(s *Settings) Option {
	return internal.WithSettings(s)
}

// WithSettingsFromEnv loads settings from environment variables and panics
// on malformed values. Use LoadSettings directly to handle the error.
func WithSettingsFromEnv() Option {
	return internal.WithSettingsFromEnv()
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	anvil.New(
//	    anvil.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithErrorPage registers a custom error page for the given status code.
// The page runs instead of the default plain-text error body; the triggering
// error is available through PageError.
func WithErrorPage(status int, page HandlerFunc) Option {
	return internal.WithErrorPage(status, page)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	anvil.WithHealthChecks(
//	    anvil.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, user_id).
//
// Example:
//
//	anvil.New(
//	    anvil.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
//
// Example:
//
//	customLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	anvil.New(
//	    anvil.WithCustomLogger(customLogger),
//	)
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithBaseDomain configures the base domain for subdomain extraction.
// This enables c.Subdomain() to work without parameters.
//
// Example:
//
//	anvil.New(
//	    anvil.WithBaseDomain("example.com"),
//	)
func WithBaseDomain(domain string) Option {
	return internal.WithBaseDomain(domain)
}

// WithCookieOptions configures the cookie manager.
// Signing and encryption use the secret key from Settings.
//
// Example:
//
//	anvil.New(
//	    anvil.WithCookieOptions(
//	        anvil.WithCookieSecure(true),
//	        anvil.WithCookieSameSite(http.SameSiteStrictMode),
//	    ),
//	)
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithAppStore sets the application-scoped key/value store backing
// c.AppValue and c.SetAppValue. Defaults to an in-memory cache.
func WithAppStore(store AppStore) Option {
	return internal.WithAppStore(store)
}

// WithAppValue seeds the application store with a value at boot.
func WithAppValue(key string, value any) Option {
	return internal.WithAppValue(key, value)
}

// WithMIMELookup overrides content-type detection for served files.
func WithMIMELookup(fn MIMELookupFunc) Option {
	return internal.WithMIMELookup(fn)
}

// WithStartupHook registers a function to run when the app starts serving.
// Equivalent to the StartupHook run option, attached at construction time.
func WithStartupHook(fn func(context.Context) error) Option {
	return internal.WithStartupHook(fn)
}

// WithShutdownHook registers a cleanup function to run during shutdown.
// Equivalent to the ShutdownHook run option, attached at construction time.
func WithShutdownHook(fn func(context.Context) error) Option {
	return internal.WithShutdownHook(fn)
}

// Settings options

// NewSettings creates settings from options, starting from defaults.
func NewSettings(opts ...SettingsOption) *Settings {
	return internal.NewSettings(opts...)
}

// LoadSettings loads settings from environment variables.
func LoadSettings() (*Settings, error) {
	return internal.LoadSettings()
}

// WithEnv sets the environment name (development, staging, production).
func WithEnv(name string) SettingsOption {
	return internal.WithEnv(name)
}

// WithDebug toggles debug mode. Debug mode includes error causes and stack
// traces in default error pages.
func WithDebug(debug bool) SettingsOption {
	return internal.WithDebug(debug)
}

// WithAddr sets the default listen address.
func WithAddr(addr string) SettingsOption {
	return internal.WithAddr(addr)
}

// WithSecretKey sets the secret used for cookie signing and encryption.
// Must be at least 32 bytes.
func WithSecretKey(key string) SettingsOption {
	return internal.WithSecretKey(key)
}

// WithStaticDirs sets the directories searched by the static fallback.
func WithStaticDirs(dirs ...string) SettingsOption {
	return internal.WithStaticDirs(dirs...)
}

// WithStaticURLPrefix sets the URL prefix for the static fallback.
func WithStaticURLPrefix(prefix string) SettingsOption {
	return internal.WithStaticURLPrefix(prefix)
}

// WithSetting sets an arbitrary key/value setting readable via c.Setting.
func WithSetting(key, value string) SettingsOption {
	return internal.WithSetting(key, value)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the application logger.
// If nil, logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run during server startup.
// Hooks are called in the order they were registered, after the port is bound
// but before serving requests. If any hook fails, the server stops and
// returns the error.
//
// Example:
//
//	anvil.StartupHook(janitor.Start)
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
// Each hook receives a context with the shutdown timeout.
//
// Example:
//
//	anvil.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Domain maps a host pattern to an App.
// Patterns: "api.example.com" (exact) or "*.example.com" (wildcard)
//
// Example:
//
//	anvil.Run(
//	    anvil.Domain("api.acme.com", apiApp),
//	    anvil.Domain("*.acme.com", tenantApp),
//	)
func Domain(pattern string, app *App) RunOption {
	return internal.Domain(pattern, app)
}

// Fallback sets the default App for requests that don't match any domain.
// If no domains are configured, the fallback becomes the main handler.
//
// Example:
//
//	anvil.Run(
//	    anvil.Domain("api.acme.com", apiApp),
//	    anvil.Fallback(landingApp),
//	)
func Fallback(app *App) RunOption {
	return internal.Fallback(app)
}

// WithContext sets a custom base context for signal handling.
// Useful for testing or when integrating with existing context hierarchies.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Context helpers

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not found or type assertion fails.
//
// Example:
//
//	type tenantKey struct{}
//
//	tenant := anvil.ContextValue[string](c, tenantKey{})
//	user := anvil.ContextValue[*User](c, userKey{})
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a typed path parameter, or the zero value when missing or
// unparseable.
//
// Example:
//
//	id := anvil.Param[int64](c, "id")
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// ParseParam returns a typed path parameter. Parse failures are reported as
// a 400 response when the error is returned from the handler.
func ParseParam[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) (T, error) {
	return internal.ParseParam[T](c, name)
}

// Query returns a typed query parameter, or the zero value when missing or
// unparseable.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a typed query parameter, or defaultValue when missing
// or unparseable.
//
// Example:
//
//	limit := anvil.QueryDefault(c, "limit", 25)
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault[T](c, name, defaultValue)
}

// ParseQuery returns a typed query parameter. Parse failures are reported as
// a 400 response when the error is returned from the handler.
func ParseQuery[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) (T, error) {
	return internal.ParseQuery[T](c, name)
}

// Form returns a typed form value, or the zero value when missing or
// unparseable.
func Form[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Form[T](c, name)
}

// FormDefault returns a typed form value, or defaultValue when missing or
// unparseable.
func FormDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.FormDefault[T](c, name, defaultValue)
}

// ParseForm returns a typed form value. Parse failures are reported as a 400
// response when the error is returned from the handler.
func ParseForm[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) (T, error) {
	return internal.ParseForm[T](c, name)
}

// ErrParseValue reports a typed getter that could not parse its input.
var ErrParseValue = internal.ErrParseValue

// Value extractors

// NewExtractor builds an extractor that tries each source in order and
// returns the first non-empty value.
//
// Example:
//
//	tokenFrom := anvil.NewExtractor(
//	    anvil.FromBearerToken(),
//	    anvil.FromCookie("token"),
//	)
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return internal.FromHeader(name)
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return internal.FromQuery(name)
}

// FromForm reads a form value.
func FromForm(name string) ExtractorSource {
	return internal.FromForm(name)
}

// FromParam reads a path parameter.
func FromParam(name string) ExtractorSource {
	return internal.FromParam(name)
}

// FromCookie reads a plain cookie.
func FromCookie(name string) ExtractorSource {
	return internal.FromCookie(name)
}

// FromCookieSigned reads a signed cookie. Invalid signatures read as absent.
func FromCookieSigned(name string) ExtractorSource {
	return internal.FromCookieSigned(name)
}

// FromCookieEncrypted reads an encrypted cookie. Values that fail to decrypt
// read as absent.
func FromCookieEncrypted(name string) ExtractorSource {
	return internal.FromCookieEncrypted(name)
}

// FromSession reads a session value, formatting non-string values with
// fmt.Sprint.
func FromSession(key string) ExtractorSource {
	return internal.FromSession(key)
}

// FromBearerToken reads the token from an "Authorization: Bearer" header.
func FromBearerToken() ExtractorSource {
	return internal.FromBearerToken()
}

// Errors

// NewAbort creates an Abort carrying a response with the given status code.
func NewAbort(status int, opts ...AbortOption) *Abort {
	return internal.NewAbort(status, opts...)
}

// AbortText creates an Abort with a plain-text body.
func AbortText(status int, body string) *Abort {
	return internal.AbortText(status, body)
}

// AbortRedirect creates an Abort that redirects to location.
func AbortRedirect(status int, location string) *Abort {
	return internal.AbortRedirect(status, location)
}

// WithHeader adds a header to the response carried by an Abort.
func WithHeader(key, value string) AbortOption {
	return internal.WithHeader(key, value)
}

// WithBody sets the body of the response carried by an Abort.
func WithBody(body []byte) AbortOption {
	return internal.WithBody(body)
}

// AsAbort reports whether err carries an Abort, unwrapping as needed.
func AsAbort(err error) (*Abort, bool) {
	return internal.AsAbort(err)
}

// NewHTTPError creates an HTTPError with the given status code and message.
// Options fill the optional fields.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithTitle sets the human-readable title of an HTTPError.
func WithTitle(title string) HTTPErrorOption {
	return internal.WithTitle(title)
}

// WithDetail sets the detail text of an HTTPError.
func WithDetail(detail string) HTTPErrorOption {
	return internal.WithDetail(detail)
}

// WithErrorCode sets the machine-readable code of an HTTPError.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// WithRequestID attaches a request ID to an HTTPError.
func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

// WithError wraps an underlying cause in an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// ErrBadRequest creates a 400 error.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrUnauthorized creates a 401 error.
func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

// ErrForbidden creates a 403 error.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound creates a 404 error.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrConflict creates a 409 error.
func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

// ErrUnprocessable creates a 422 error.
func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

// ErrInternal creates a 500 error.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// ErrServiceUnavailable creates a 503 error.
func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// IsHTTPError reports whether err is or wraps an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError extracts the HTTPError from err, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// PageError returns the error being rendered by a custom error page.
// Returns nil outside error page handlers.
func PageError(c Context) *HTTPError {
	return internal.PageError(c)
}

// File serving options

// WithDir restricts ServeFile to files under the given directory.
func WithDir(dir string) ServeFileOption {
	return internal.WithDir(dir)
}

// WithContentType overrides content-type detection for a served file.
func WithContentType(contentType string) ServeFileOption {
	return internal.WithContentType(contentType)
}

// WithDownloadName serves the file as an attachment with the given name.
func WithDownloadName(name string) ServeFileOption {
	return internal.WithDownloadName(name)
}

// Cookie options

// WithCookieDomain sets the cookie domain.
func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

// WithCookiePath sets the cookie path.
func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

// WithCookieSecure sets the Secure flag.
func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

// WithCookieHTTPOnly sets the HttpOnly flag.
func WithCookieHTTPOnly(httpOnly bool) CookieOption {
	return cookie.WithHTTPOnly(httpOnly)
}

// WithCookieSameSite sets the SameSite attribute.
func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

// Cookie errors for checking return values.
var (
	ErrCookieNotFound  = cookie.ErrNotFound
	ErrCookieNoSecret  = cookie.ErrNoSecret
	ErrCookieBadSecret = cookie.ErrBadSecret
	ErrCookieBadSig    = cookie.ErrBadSig
	ErrCookieDecrypt   = cookie.ErrDecrypt
)

// Session options

// WithSession enables server-side session management.
// A SessionStore implementation must be provided (e.g., PostgresStore).
// Sessions are loaded lazily and saved automatically before the response is written.
//
// Example:
//
//	store := session.NewPostgresStore(pool)
//	anvil.New(
//	    anvil.WithSession(store,
//	        anvil.WithSessionCookieName("__sid"),
//	        anvil.WithSessionMaxAge(86400 * 30),
//	    ),
//	)
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithSessionCookieName sets the session cookie name.
// Defaults to "__sid".
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session max age in seconds.
// Defaults to 30 days.
func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

// WithSessionPath sets the session cookie path.
// Defaults to "/".
func WithSessionPath(path string) SessionOption {
	return internal.WithSessionPath(path)
}

// WithSessionSecure sets the session cookie Secure flag.
// Defaults to false (should be true in production with HTTPS).
func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

// WithSessionHTTPOnly sets the session cookie HttpOnly flag.
// Defaults to true (recommended for security).
func WithSessionHTTPOnly(httpOnly bool) SessionOption {
	return internal.WithSessionHTTPOnly(httpOnly)
}

// WithSessionSameSite sets the session cookie SameSite attribute.
// Defaults to SameSiteLaxMode.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return internal.WithSessionSameSite(sameSite)
}

// WithSessionTouchInterval sets how often a clean session's last-activity
// timestamp is persisted. Defaults to 5 minutes.
func WithSessionTouchInterval(d time.Duration) SessionOption {
	return internal.WithSessionTouchInterval(d)
}

// Session errors for checking return values.
var (
	ErrSessionNotConfigured = session.ErrNotConfigured
	ErrSessionNotFound      = session.ErrNotFound
	ErrSessionExpired       = session.ErrExpired
	ErrSessionInvalidToken  = session.ErrInvalidToken
	ErrSessionTypeMismatch  = session.ErrTypeMismatch
)

// SessionValue is a typed helper to retrieve session values with type safety.
// Returns an error if the key doesn't exist or type assertion fails.
//
// Example:
//
//	theme, err := anvil.SessionValue[string](sess, "theme")
func SessionValue[T any](sess *Session, key string) (T, error) {
	return session.Value[T](sess, key)
}

// SessionValueOr is a typed helper that returns a default value if the key
// doesn't exist or type assertion fails.
//
// Example:
//
//	theme := anvil.SessionValueOr(sess, "theme", "light")
func SessionValueOr[T any](sess *Session, key string, defaultVal T) T {
	return session.ValueOr(sess, key, defaultVal)
}
