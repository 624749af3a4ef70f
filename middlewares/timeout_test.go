package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast handler passes through", func(t *testing.T) {
		t.Parallel()

		app := mwApp(middlewares.Timeout(time.Second), okText)

		rec := do(app, httptest.NewRequest(http.MethodGet, "/t", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", rec.Body.String())
	})

	t.Run("slow handler times out", func(t *testing.T) {
		t.Parallel()

		app := mwApp(
			middlewares.Timeout(20*time.Millisecond),
			func(c internal.Context) error {
				time.Sleep(200 * time.Millisecond)
				return nil
			},
		)

		rec := do(app, httptest.NewRequest(http.MethodGet, "/t", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "internal server error\n", rec.Body.String())
	})

	t.Run("error handler can render timeouts", func(t *testing.T) {
		t.Parallel()

		app := mwApp(
			middlewares.Timeout(20*time.Millisecond),
			func(c internal.Context) error {
				time.Sleep(200 * time.Millisecond)
				return nil
			},
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				if middlewares.IsTimeoutError(err) {
					return c.String(http.StatusGatewayTimeout, "upstream took too long")
				}
				return err
			}),
		)

		rec := do(app, httptest.NewRequest(http.MethodGet, "/t", nil))

		require.Equal(t, http.StatusGatewayTimeout, rec.Code)
		require.Equal(t, "upstream took too long", rec.Body.String())
	})

	t.Run("handler can watch the deadline", func(t *testing.T) {
		t.Parallel()

		app := mwApp(
			middlewares.Timeout(20*time.Millisecond),
			func(c internal.Context) error {
				select {
				case <-middlewares.GetTimeoutContext(c).Done():
					return internal.ErrServiceUnavailable("search backend timed out")
				case <-time.After(time.Second):
					return okText(c)
				}
			},
		)

		rec := do(app, httptest.NewRequest(http.MethodGet, "/t", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "search backend timed out\n", rec.Body.String())
	})

	t.Run("deadline is set on the context", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool
		app := mwApp(middlewares.Timeout(time.Second), func(c internal.Context) error {
			_, hasDeadline = middlewares.GetTimeoutContext(c).Deadline()
			return okText(c)
		})

		do(app, httptest.NewRequest(http.MethodGet, "/t", nil))

		require.True(t, hasDeadline)
	})

	t.Run("panic inside handler is recovered", func(t *testing.T) {
		t.Parallel()

		app := mwApp(
			middlewares.Timeout(time.Second),
			func(c internal.Context) error {
				panic("boom in goroutine")
			},
		)

		// A panic on the handler goroutine must surface as a 500, not kill
		// the process.
		rec := do(app, httptest.NewRequest(http.MethodGet, "/t", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		rec = do(app, httptest.NewRequest(http.MethodGet, "/t", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("zero duration falls back to default", func(t *testing.T) {
		t.Parallel()

		app := mwApp(middlewares.Timeout(0), okText)

		rec := do(app, httptest.NewRequest(http.MethodGet, "/t", nil))

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetTimeoutContext_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	app := mwApp(
		func(next internal.HandlerFunc) internal.HandlerFunc { return next },
		func(c internal.Context) error {
			_, hasDeadline = middlewares.GetTimeoutContext(c).Deadline()
			return okText(c)
		},
	)

	do(app, httptest.NewRequest(http.MethodGet, "/t", nil))

	require.False(t, hasDeadline)
}
