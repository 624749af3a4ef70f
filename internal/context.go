package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dmitrymomot/anvil/pkg/cache"
	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/hostrouter"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// UploadFile is an uploaded file extracted from multipart form data:
// the client-reported filename plus the raw bytes. It is owned by the
// handler that requested it and discarded with the request.
type UploadFile struct {
	Filename string
	Data     []byte
}

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Method returns the request's HTTP method.
	Method() string

	// Path returns the request's URL path.
	Path() string

	// Param returns the path parameter captured by the router, or "" when
	// the matched pattern declares no such placeholder.
	Param(name string) string

	// Query returns the named query parameter, or "" when absent.
	Query(name string) string

	// QueryDefault returns the named query parameter, or the default when
	// absent or empty.
	QueryDefault(name, defaultValue string) string

	// Form returns the named form value, parsing the body on first access.
	Form(name string) string

	// FormDefault returns the named form value, or the default when absent
	// or empty.
	FormDefault(name, defaultValue string) string

	// FormFile opens the first uploaded file under the given form key.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// UploadFile reads the first file for the given form key into memory.
	UploadFile(name string) (*UploadFile, error)

	// Domain returns the request's host, lowercased, with any port and
	// IPv6 brackets stripped.
	Domain() string

	// Subdomain returns the labels below the base domain configured via
	// WithBaseDomain, or "" when no base domain is set or the host falls
	// outside it.
	Subdomain() string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Setting looks up a configuration key: the matched route's settings
	// overlay first, then the application settings.
	Setting(key string) (string, bool)

	// SettingOrDefault looks up a configuration key with a fallback.
	SettingOrDefault(key, defaultValue string) string

	// Settings returns the application settings.
	Settings() *Settings

	// AppValue retrieves a value from the application-level store.
	// Returns cache.ErrNotFound if the key does not exist.
	AppValue(key string) (any, error)

	// SetAppValue stores a value in the application-level store.
	// Values persist until deleted; the store is shared across requests.
	SetAppValue(key string, value any) error

	// URLFor builds the URL for a named route, substituting placeholder
	// args and appending URL-encoded query parameters.
	URLFor(name string, args map[string]string, query map[string]string) (string, error)

	// JSON writes v as a JSON response with the given status code. When v
	// fails to marshal nothing is written, so the returned error can still
	// reach the error funnel and produce a proper error response.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes the status code with an empty body.
	NoContent(code int) error

	// Redirect sends a redirect to the given URL with the given status code.
	Redirect(code int, url string) error

	// ServeFile serves a file from the configured static directories with
	// conditional-request support. See ServeFileOption for overrides.
	ServeFile(name string, opts ...ServeFileOption) error

	// Error creates and returns an HTTPError without writing a response.
	// The error should be returned from the handler to trigger the error funnel.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Abort creates an Abort carrying a prepared response. Return it from
	// a handler or middleware to short-circuit the chain; the dispatch
	// boundary adopts the carried response.
	Abort(status int, opts ...AbortOption) *Abort

	// Written reports whether the response header has already gone out.
	Written() bool

	// Logger returns the request-scoped logger, including any attributes
	// middleware attached to it.
	Logger() *slog.Logger

	// LogDebug logs at debug level with the request context attached.
	LogDebug(msg string, attrs ...any)

	// LogInfo logs at info level with the request context attached.
	LogInfo(msg string, attrs ...any)

	// LogWarn logs at warn level with the request context attached.
	LogWarn(msg string, attrs ...any)

	// LogError logs at error level with the request context attached.
	LogError(msg string, attrs ...any)

	// Set stores a value on the request context. Both Get and
	// c.Context().Value observe it.
	Set(key any, value any)

	// Get retrieves a value stored with Set, or nil.
	Get(key any) any

	// Cookie returns a plain cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a plain cookie. Options override the manager defaults
	// for this call only.
	SetCookie(name, value string, maxAge int, opts ...cookie.Option)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string, opts ...cookie.Option)

	// CookieSigned returns a signed cookie value.
	// Returns cookie.ErrNoSecret if no secret is configured.
	CookieSigned(name string) (string, error)

	// SetCookieSigned sets a signed cookie.
	// Returns cookie.ErrNoSecret if no secret is configured.
	SetCookieSigned(name, value string, maxAge int, opts ...cookie.Option) error

	// CookieEncrypted returns an encrypted cookie value.
	// Returns cookie.ErrNoSecret if no secret is configured.
	CookieEncrypted(name string) (string, error)

	// SetCookieEncrypted sets an encrypted cookie.
	// Returns cookie.ErrNoSecret if no secret is configured.
	SetCookieEncrypted(name, value string, maxAge int, opts ...cookie.Option) error

	// Flash reads and deletes a flash message.
	// Returns cookie.ErrNoSecret if no secret is configured.
	Flash(key string, dest any) error

	// SetFlash sets a flash message.
	// Returns cookie.ErrNoSecret if no secret is configured.
	SetFlash(key string, value any) error

	// Session returns the current session, loading it from the store as needed.
	// Returns session.ErrNotConfigured if WithSession was not called.
	// Returns nil, nil if no session cookie accompanied the request.
	Session() (*session.Session, error)

	// InitSession starts a fresh session for this request and sets its
	// cookie. Returns session.ErrNotConfigured if WithSession was not called.
	InitSession() error

	// AuthenticateSession binds the user to the session and rotates the
	// session token, creating a session first if the request arrived
	// without one. Returns session.ErrNotConfigured if WithSession was
	// not called.
	AuthenticateSession(userID string) error

	// SessionValue retrieves a value from the session. Returns
	// session.ErrNotConfigured without session support, session.ErrNotFound
	// without a session, and nil, nil for a missing key.
	SessionValue(key string) (any, error)

	// SetSessionValue stores a value in the session and marks it dirty so
	// the change is persisted before the response goes out. Returns
	// session.ErrNotConfigured without session support and
	// session.ErrNotFound without a session.
	SetSessionValue(key string, val any) error

	// DeleteSessionValue removes a value from the session. Returns
	// session.ErrNotConfigured without session support and
	// session.ErrNotFound without a session.
	DeleteSessionValue(key string) error

	// DestroySession deletes the session from the store and expires its
	// cookie. Returns session.ErrNotConfigured if WithSession was not called.
	DestroySession() error

	// UserID returns the authenticated user's ID, loading the session on
	// first use. Anonymous and session-less requests yield "".
	UserID() string

	// IsAuthenticated reports whether a user is bound to the session.
	IsAuthenticated() bool

	// IsCurrentUser reports whether the authenticated user's ID equals id.
	// An anonymous request never matches.
	IsCurrentUser(id string) bool

	// ResponseWriter exposes the wrapped response writer for handlers that
	// need flushing, hijacking, or the write state.
	ResponseWriter() *ResponseWriter
}

// requestContext implements the Context interface.
type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
	cookieManager  *cookie.Manager

	// Session management
	sessionManager *SessionManager
	session        *session.Session

	// Routing
	table   *routeTable
	params  map[string]string
	overlay map[string]string

	// Application state
	settings   *Settings
	appStore   cache.Cache[any]
	mime       MIMELookupFunc
	baseDomain string

	sessionLoaded         bool
	sessionHookRegistered bool
}

// newContext creates a per-request context with the response wrapper.
// route and params are nil when no route matched (static lookup, error pages).
func newContext(w http.ResponseWriter, r *http.Request, app *App, route *Route, params map[string]string) *requestContext {
	rw := NewResponseWriter(w)

	c := &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         app.logger,
		cookieManager:  app.cookieManager,
		sessionManager: app.sessionManager,
		table:          app.routes,
		params:         params,
		settings:       app.settings,
		appStore:       app.store,
		mime:           app.mimeLookup,
		baseDomain:     app.baseDomain,
	}
	if route != nil {
		c.overlay = route.settings
	}
	return c
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Method() string {
	return c.request.Method
}

func (c *requestContext) Path() string {
	return c.request.URL.Path
}

func (c *requestContext) Param(name string) string {
	return c.params[name]
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormDefault(name, defaultValue string) string {
	v := c.request.FormValue(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) UploadFile(name string) (*UploadFile, error) {
	f, header, err := c.request.FormFile(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &UploadFile{Filename: header.Filename, Data: data}, nil
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Domain() string {
	return hostrouter.GetDomain(c.request)
}

func (c *requestContext) Subdomain() string {
	if c.baseDomain == "" {
		return ""
	}
	return hostrouter.GetSubdomain(c.request, c.baseDomain)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Setting(key string) (string, bool) {
	if v, ok := c.overlay[key]; ok {
		return v, true
	}
	if c.settings == nil {
		return "", false
	}
	return c.settings.Get(key)
}

func (c *requestContext) SettingOrDefault(key, defaultValue string) string {
	if v, ok := c.Setting(key); ok {
		return v
	}
	return defaultValue
}

func (c *requestContext) Settings() *Settings {
	return c.settings
}

func (c *requestContext) AppValue(key string) (any, error) {
	return c.appStore.Get(c.Context(), key)
}

func (c *requestContext) SetAppValue(key string, value any) error {
	return c.appStore.Set(c.Context(), key, value, -1)
}

func (c *requestContext) URLFor(name string, args map[string]string, query map[string]string) (string, error) {
	return c.table.urlFor(name, args, query)
}

func (c *requestContext) JSON(code int, v any) error {
	// Encode first so a marshal failure leaves the response untouched.
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	_, err = c.response.Write(data)
	return err
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Abort(status int, opts ...AbortOption) *Abort {
	return NewAbort(status, opts...)
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int, opts ...cookie.Option) {
	c.cookieManager.Set(c.response, name, value, maxAge, opts...)
}

func (c *requestContext) DeleteCookie(name string, opts ...cookie.Option) {
	c.cookieManager.Delete(c.response, name, opts...)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.cookieManager.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int, opts ...cookie.Option) error {
	return c.cookieManager.SetSigned(c.response, name, value, maxAge, opts...)
}

func (c *requestContext) CookieEncrypted(name string) (string, error) {
	return c.cookieManager.GetEncrypted(c.request, name)
}

func (c *requestContext) SetCookieEncrypted(name, value string, maxAge int, opts ...cookie.Option) error {
	return c.cookieManager.SetEncrypted(c.response, name, value, maxAge, opts...)
}

func (c *requestContext) Flash(key string, dest any) error {
	return c.cookieManager.Flash(c.response, c.request, key, dest)
}

func (c *requestContext) SetFlash(key string, value any) error {
	return c.cookieManager.SetFlash(c.response, key, value)
}

// registerSessionHook arms the before-write hook that persists session
// state. Idempotent; the hook itself fires at most once per response.
func (c *requestContext) registerSessionHook() {
	if c.sessionHookRegistered || c.sessionManager == nil || c.responseWriter == nil {
		return
	}
	c.sessionHookRegistered = true
	c.responseWriter.OnBeforeWrite(func() {
		if c.session == nil {
			return
		}
		ctx := c.Context()
		if c.session.IsDirty() {
			c.session.LastActiveAt = time.Now()
			// Best-effort save; errors are logged but not propagated
			// to avoid interrupting response rendering
			if err := c.sessionManager.Store().Update(ctx, c.session); err != nil {
				c.logger.ErrorContext(ctx, "failed to save session", "error", err)
				return
			}
			c.session.ClearDirty()
			return
		}
		// Clean sessions still advance the activity clock.
		if err := c.sessionManager.TouchSession(ctx, c.session); err != nil {
			c.logger.WarnContext(ctx, "failed to touch session", "error", err)
		}
	})
}

// Session returns the current session, loading it from the store on first
// use. The result is cached for the rest of the request, so a failed load
// is retried on the next call rather than pinning the failure.
func (c *requestContext) Session() (*session.Session, error) {
	if c.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}
	c.registerSessionHook()

	if !c.sessionLoaded {
		sess, err := c.sessionManager.LoadSession(c.Context(), c.request)
		if err != nil {
			return nil, err
		}
		c.session = sess
		c.sessionLoaded = true
	}
	return c.session, nil
}

// InitSession starts a fresh anonymous session and sets its cookie,
// replacing whatever session was cached for this request.
func (c *requestContext) InitSession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}
	c.registerSessionHook()

	sess, err := c.sessionManager.CreateSession(c.Context(), c.request)
	if err != nil {
		return err
	}
	c.session = sess
	c.sessionLoaded = true
	c.sessionManager.SaveSession(c.response, sess)
	return nil
}

// AuthenticateSession binds the user to the session and rotates the token,
// so credentials issued before login never identify an authenticated user.
func (c *requestContext) AuthenticateSession(userID string) error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	sess, err := c.Session()
	if err != nil {
		c.logger.WarnContext(c.Context(), "failed to load session", "error", err)
	}
	if sess == nil {
		// Login without a prior session starts one on the spot.
		if err := c.InitSession(); err != nil {
			return err
		}
		sess = c.session
	}

	sess.UserID = &userID
	sess.MarkDirty()

	if err := c.sessionManager.RotateToken(c.Context(), sess); err != nil {
		return err
	}
	c.sessionManager.SaveSession(c.response, sess)
	return nil
}

// requireSession loads the session and insists the request has one.
func (c *requestContext) requireSession() (*session.Session, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func (c *requestContext) SessionValue(key string) (any, error) {
	sess, err := c.requireSession()
	if err != nil {
		return nil, err
	}
	val, ok := sess.GetValue(key)
	if !ok {
		return nil, nil
	}
	return val, nil
}

func (c *requestContext) SetSessionValue(key string, val any) error {
	sess, err := c.requireSession()
	if err != nil {
		return err
	}
	sess.SetValue(key, val)
	return nil
}

func (c *requestContext) DeleteSessionValue(key string) error {
	sess, err := c.requireSession()
	if err != nil {
		return err
	}
	sess.DeleteValue(key)
	return nil
}

func (c *requestContext) DestroySession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	if c.session != nil {
		if err := c.sessionManager.Store().Delete(c.Context(), c.session.ID); err != nil {
			return err
		}
	}
	c.sessionManager.DeleteSession(c.response)

	// Cache the absence so a later Session() call does not resurrect the
	// deleted record from the request cookie.
	c.session = nil
	c.sessionLoaded = true

	return nil
}

func (c *requestContext) UserID() string {
	sess, err := c.Session()
	if err != nil || sess == nil || sess.UserID == nil {
		return ""
	}
	return *sess.UserID
}

func (c *requestContext) IsAuthenticated() bool {
	return c.UserID() != ""
}

func (c *requestContext) IsCurrentUser(id string) bool {
	uid := c.UserID()
	return uid != "" && uid == id
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}
