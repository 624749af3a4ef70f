package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// Registration-time sentinels. A RouteError wrapping one of these is
// panicked during New, which aborts boot before the server ever listens.
var (
	ErrRouteExists     = errors.New("route already registered")
	ErrRouteNameExists = errors.New("route name already registered")
	ErrBadPattern      = errors.New("invalid route pattern")
)

// ErrParseValue marks coercion failures from the typed Param/Query/Form
// accessors. The default error funnel renders it as 400.
var ErrParseValue = errors.New("cannot parse value")

// RouteError reports a registration conflict or an invalid pattern.
// It only ever surfaces at registration time, never during a request.
type RouteError struct {
	Err     error
	Method  string
	Pattern string
	Name    string
}

func (e *RouteError) Error() string {
	switch {
	case e.Name != "" && e.Pattern == "":
		return fmt.Sprintf("route name %q: %v", e.Name, e.Err)
	case e.Method != "":
		return fmt.Sprintf("route %s %s: %v", e.Method, e.Pattern, e.Err)
	default:
		return fmt.Sprintf("route %s: %v", e.Pattern, e.Err)
	}
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

// Response is a fully prepared HTTP response carried by an Abort.
type Response struct {
	Header http.Header
	Body   []byte
	Status int
}

// Abort short-circuits the middleware chain with a prepared response.
// Handlers return it like any other error; the dispatch boundary recognizes
// it, writes the carried response unless something was already written, and
// never propagates it further. It is always a request-time signal, never a
// startup error.
type Abort struct {
	Response Response
}

func (a *Abort) Error() string {
	return fmt.Sprintf("abort with status %d", a.Response.Status)
}

// AbortOption configures the response carried by an Abort.
type AbortOption func(*Abort)

// NewAbort creates an Abort carrying a response with the given status code.
func NewAbort(status int, opts ...AbortOption) *Abort {
	a := &Abort{Response: Response{Status: status, Header: make(http.Header)}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AbortText creates an Abort carrying a plain-text response.
func AbortText(status int, body string) *Abort {
	return NewAbort(status,
		WithHeader("Content-Type", "text/plain; charset=utf-8"),
		WithBody([]byte(body)),
	)
}

// AbortRedirect creates an Abort carrying a redirect response.
func AbortRedirect(status int, location string) *Abort {
	return NewAbort(status, WithHeader("Location", location))
}

// WithHeader sets a header on the carried response.
func WithHeader(key, value string) AbortOption {
	return func(a *Abort) {
		a.Response.Header.Set(key, value)
	}
}

// WithBody sets the carried response body.
func WithBody(body []byte) AbortOption {
	return func(a *Abort) {
		a.Response.Body = body
	}
}

// AsAbort extracts an Abort from an error chain.
func AsAbort(err error) (*Abort, bool) {
	var a *Abort
	if errors.As(err, &a) {
		return a, true
	}
	return nil, false
}

// PanicError wraps a panic recovered at the dispatch boundary together with
// the stack captured at recovery time.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// HTTPError is a request failure with everything an error page needs.
// The default funnel renders Message, Title, and Detail; Err stays on the
// server side, in logs only.
type HTTPError struct {
	// Err is the wrapped cause. Logged, never shown to the client.
	Err error

	// Message is the client-facing description.
	Message string

	// Title optionally overrides the heading derived from Code.
	Title string

	// Detail is an optional longer explanation shown below the message.
	Detail string

	// ErrorCode is a stable machine-readable code for API clients.
	ErrorCode string

	// RequestID ties the rendered page to the server logs.
	RequestID string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError builds an HTTPError from a status code and client-facing
// message; options fill the optional fields.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Title = title
	}
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Status-specific constructors for the errors handlers raise most often.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// Helper functions for error inspection. Both unwrap, so an HTTPError
// wrapped with fmt.Errorf("...: %w", err) is still recognized.

func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// AsHTTPError extracts the HTTPError from an error if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
