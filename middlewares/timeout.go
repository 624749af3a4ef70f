package middlewares

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/dmitrymomot/anvil/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// timeoutContextKey is used to store the timeout context.
type timeoutContextKey struct{}

// Timeout returns middleware that enforces a request deadline. When the
// handler does not finish in time a TimeoutError is returned for the error
// funnel to render.
//
// The handler goroutine keeps running after the deadline; long-running
// operations should watch GetTimeoutContext(c).Done() and bail out early.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			c.Set(timeoutContextKey{}, ctx)

			// The handler runs on its own goroutine so the deadline can fire
			// independently. Panics must be forwarded as values; a raw panic
			// here would escape the dispatch recover and kill the process.
			done := make(chan error, 1)
			go func() {
				defer func() {
					if rec := recover(); rec != nil {
						done <- &internal.PanicError{Value: rec, Stack: debug.Stack()}
					}
				}()
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					c.LogWarn("request timeout", "timeout", timeout.String())
					return &TimeoutError{Duration: timeout}
				}
				return ctx.Err()
			}
		}
	}
}

// GetTimeoutContext retrieves the deadline-bound context if the Timeout
// middleware is active, falling back to the request context.
func GetTimeoutContext(c internal.Context) context.Context {
	if v, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return v
	}
	return c.Context()
}
