package internal_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/internal"
)

func newApp(routes func(internal.Router), opts ...internal.Option) *internal.App {
	if routes != nil {
		opts = append(opts, internal.WithHandlers(internal.RoutesFunc(routes)))
	}
	return internal.New(opts...)
}

func doRequest(app *internal.App, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func textHandler(status int, body string) internal.HandlerFunc {
	return func(c internal.Context) error {
		return c.String(status, body)
	}
}

func countingMiddleware(calls *int) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			*calls++
			return next(c)
		}
	}
}

func TestApp_Dispatch(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/hello", textHandler(http.StatusOK, "hi"))
		r.GET("/users/{id}", func(c internal.Context) error {
			return c.String(http.StatusOK, "user "+c.Param("id"))
		})
	})

	rec := doRequest(app, http.MethodGet, "/hello")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hi", rec.Body.String())

	rec = doRequest(app, http.MethodGet, "/users/42")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user 42", rec.Body.String())
}

func TestApp_NotFound(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/hello", textHandler(http.StatusOK, "hi"))
	})

	rec := doRequest(app, http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "404 page not found\n", rec.Body.String())
	require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestApp_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/widgets", textHandler(http.StatusOK, "list"))
		r.POST("/widgets", textHandler(http.StatusCreated, "made"))
		r.DELETE("/widgets/{id}", textHandler(http.StatusOK, "gone"))
	})

	rec := doRequest(app, http.MethodDelete, "/widgets")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "GET, POST", rec.Header().Get("Allow"))
	require.Equal(t, "405 method not allowed\n", rec.Body.String())

	// Pattern routes contribute to Allow too.
	rec = doRequest(app, http.MethodPut, "/widgets/7")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "DELETE", rec.Header().Get("Allow"))
}

func TestApp_CustomNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/only", textHandler(http.StatusOK, "here"))
	},
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.String(http.StatusNotFound, "lost")
		}),
		internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return c.String(http.StatusMethodNotAllowed, "allowed: "+c.ResponseWriter().Header().Get("Allow"))
		}),
	)

	rec := doRequest(app, http.MethodGet, "/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "lost", rec.Body.String())

	rec = doRequest(app, http.MethodPost, "/only")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "allowed: GET", rec.Body.String())
}

func TestApp_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name+":in")
				err := next(c)
				order = append(order, name+":out")
				return err
			}
		}
	}

	app := newApp(func(r internal.Router) {
		r.GET("/run", func(c internal.Context) error {
			order = append(order, "handler")
			return c.NoContent(http.StatusNoContent)
		}, mark("route"))
	}, internal.WithMiddleware(mark("g1"), mark("g2")))

	doRequest(app, http.MethodGet, "/run")
	require.Equal(t, []string{"g1:in", "g2:in", "route:in", "handler", "route:out", "g2:out", "g1:out"}, order)
}

func TestApp_MiddlewareShortCircuit(t *testing.T) {
	t.Parallel()

	handlerRan := false
	app := newApp(func(r internal.Router) {
		r.GET("/gate", func(c internal.Context) error {
			handlerRan = true
			return nil
		})
	}, internal.WithMiddleware(func(internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			return c.String(http.StatusForbidden, "denied")
		}
	}))

	rec := doRequest(app, http.MethodGet, "/gate")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "denied", rec.Body.String())
	require.False(t, handlerRan)
}

func TestApp_MiddlewareOnlyForMatchedRoutes(t *testing.T) {
	t.Parallel()

	var calls int
	app := newApp(func(r internal.Router) {
		r.GET("/here", textHandler(http.StatusOK, "ok"))
	}, internal.WithMiddleware(countingMiddleware(&calls)))

	doRequest(app, http.MethodGet, "/here")
	require.Equal(t, 1, calls)

	// Neither 404 nor 405 responses pass through the chain.
	doRequest(app, http.MethodGet, "/missing")
	doRequest(app, http.MethodPost, "/here")
	require.Equal(t, 1, calls)
}

func TestApp_GroupPrefixAndUse(t *testing.T) {
	t.Parallel()

	stamp := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.SetHeader("X-API", "v1")
			return next(c)
		}
	}

	app := newApp(func(r internal.Router) {
		r.Route("/api", func(r internal.Router) {
			r.Use(stamp)
			r.GET("/ping", textHandler(http.StatusOK, "pong"))
		})
		r.GET("/plain", textHandler(http.StatusOK, "plain"))
	})

	rec := doRequest(app, http.MethodGet, "/api/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pong", rec.Body.String())
	require.Equal(t, "v1", rec.Header().Get("X-API"))

	rec = doRequest(app, http.MethodGet, "/plain")
	require.Empty(t, rec.Header().Get("X-API"))
}

func TestApp_AbortAdopted(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/teapot", func(c internal.Context) error {
			return c.Abort(http.StatusTeapot,
				internal.WithHeader("X-Reason", "short and stout"),
				internal.WithBody([]byte("teapot")))
		})
		r.GET("/wrapped", func(c internal.Context) error {
			return fmt.Errorf("auth check: %w", c.Abort(http.StatusUnauthorized))
		})
	})

	rec := doRequest(app, http.MethodGet, "/teapot")
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "teapot", rec.Body.String())
	require.Equal(t, "short and stout", rec.Header().Get("X-Reason"))

	// Aborts are recognized through error wrapping.
	rec = doRequest(app, http.MethodGet, "/wrapped")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApp_AbortPanicked(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/bail", func(internal.Context) error {
			panic(internal.AbortText(http.StatusServiceUnavailable, "try later"))
		})
	})

	rec := doRequest(app, http.MethodGet, "/bail")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "try later", rec.Body.String())
}

func TestApp_AbortAfterWriteDropped(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/late", func(c internal.Context) error {
			if err := c.String(http.StatusOK, "already sent"); err != nil {
				return err
			}
			return c.Abort(http.StatusTeapot)
		})
	})

	rec := doRequest(app, http.MethodGet, "/late")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "already sent", rec.Body.String())
}

func TestApp_PanicRecovered(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/boom", func(internal.Context) error {
			panic("boom")
		})
		r.GET("/ok", textHandler(http.StatusOK, "fine"))
	})

	rec := doRequest(app, http.MethodGet, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal server error\n", rec.Body.String())
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	// One crashed request never takes the app down.
	rec = doRequest(app, http.MethodGet, "/ok")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "fine", rec.Body.String())
}

func TestApp_DebugModeShowsPanicDetails(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/boom", func(internal.Context) error {
			panic("boom")
		})
	}, internal.WithSettings(internal.NewSettings(internal.WithDebug(true))))

	rec := doRequest(app, http.MethodGet, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "panic: boom")
	require.Contains(t, rec.Body.String(), "goroutine")
}

func TestApp_HandlerErrorStatus(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/missing", func(internal.Context) error {
			return internal.ErrNotFound("no such widget")
		})
		r.GET("/wrapped", func(internal.Context) error {
			return fmt.Errorf("save widget: %w", internal.ErrConflict("widget exists"))
		})
		r.GET("/opaque", func(internal.Context) error {
			return errors.New("disk on fire")
		})
	})

	rec := doRequest(app, http.MethodGet, "/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "no such widget\n", rec.Body.String())

	rec = doRequest(app, http.MethodGet, "/wrapped")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "widget exists\n", rec.Body.String())

	// Non-HTTP errors never leak their message to the client.
	rec = doRequest(app, http.MethodGet, "/opaque")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal server error\n", rec.Body.String())
}

func TestApp_ParseFailureBecomes400(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/items", func(c internal.Context) error {
			page, err := internal.ParseQuery[int](c, "page")
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, fmt.Sprintf("page %d", page))
		})
	})

	rec := doRequest(app, http.MethodGet, "/items?page=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "cannot parse value")

	rec = doRequest(app, http.MethodGet, "/items?page=3")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "page 3", rec.Body.String())
}

func TestApp_ErrorPage(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/missing", func(internal.Context) error {
			return internal.ErrNotFound("widget not found")
		})
	}, internal.WithErrorPage(http.StatusNotFound, func(c internal.Context) error {
		msg := "not found"
		if page := internal.PageError(c); page != nil {
			msg = page.Message
		}
		return c.String(http.StatusNotFound, "custom: "+msg)
	}))

	// Handler errors render through the page with the error exposed.
	rec := doRequest(app, http.MethodGet, "/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "custom: widget not found", rec.Body.String())

	// Unmatched paths use the same page; PageError is nil there.
	rec = doRequest(app, http.MethodGet, "/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "custom: not found", rec.Body.String())
}

func TestApp_ErrorPageFallsBackOnFailure(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/missing", func(internal.Context) error {
			return internal.ErrNotFound("widget not found")
		})
	}, internal.WithErrorPage(http.StatusNotFound, func(internal.Context) error {
		return errors.New("template exploded")
	}))

	rec := doRequest(app, http.MethodGet, "/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "widget not found\n", rec.Body.String())
}

func TestApp_CustomErrorHandler(t *testing.T) {
	t.Parallel()

	t.Run("renders the response", func(t *testing.T) {
		t.Parallel()
		app := newApp(func(r internal.Router) {
			r.GET("/fail", func(internal.Context) error {
				return errors.New("db gone")
			})
		}, internal.WithErrorHandler(func(c internal.Context, err error) error {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}))

		rec := doRequest(app, http.MethodGet, "/fail")
		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.JSONEq(t, `{"error":"db gone"}`, rec.Body.String())
	})

	t.Run("skipped for aborts", func(t *testing.T) {
		t.Parallel()
		app := newApp(func(r internal.Router) {
			r.GET("/bail", func(c internal.Context) error {
				return c.Abort(http.StatusTeapot)
			})
		}, internal.WithErrorHandler(func(c internal.Context, err error) error {
			return c.String(http.StatusBadGateway, "should not happen")
		}))

		rec := doRequest(app, http.MethodGet, "/bail")
		require.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("failure falls back to the default page", func(t *testing.T) {
		t.Parallel()
		app := newApp(func(r internal.Router) {
			r.GET("/fail", func(internal.Context) error {
				return errors.New("db gone")
			})
		}, internal.WithErrorHandler(func(internal.Context, error) error {
			return errors.New("handler broken")
		}))

		rec := doRequest(app, http.MethodGet, "/fail")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "internal server error\n", rec.Body.String())
	})
}

func TestApp_WrittenResponseUnchanged(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/late-error", func(c internal.Context) error {
			if err := c.String(http.StatusOK, "partial"); err != nil {
				return err
			}
			return errors.New("too late")
		})
	})

	rec := doRequest(app, http.MethodGet, "/late-error")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "partial", rec.Body.String())
}

func TestApp_HealthEndpoints(t *testing.T) {
	t.Parallel()

	var mwCalls int
	checked := false
	app := newApp(nil,
		internal.WithHealthChecks(
			internal.WithReadinessCheck("probe", func(context.Context) error {
				checked = true
				return nil
			}),
		),
		internal.WithMiddleware(countingMiddleware(&mwCalls)),
	)

	rec := doRequest(app, http.MethodGet, "/health/live")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())

	rec = doRequest(app, http.MethodGet, "/health/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, checked)

	// Health endpoints are ordinary routes, so middleware sees them.
	require.Equal(t, 2, mwCalls)
}

func TestApp_HealthReadinessFailure(t *testing.T) {
	t.Parallel()

	app := newApp(nil, internal.WithHealthChecks(
		internal.WithReadinessCheck("db", func(context.Context) error {
			return errors.New("connection refused")
		}),
	))

	rec := doRequest(app, http.MethodGet, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApp_AppValues(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/flag", func(c internal.Context) error {
			v, err := c.AppValue("feature.signup")
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, fmt.Sprint(v))
		})
	}, internal.WithAppValue("feature.signup", true))

	rec := doRequest(app, http.MethodGet, "/flag")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "true", rec.Body.String())
}

func TestApp_MountBypassesMiddleware(t *testing.T) {
	t.Parallel()

	var mwCalls int
	mounted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "mounted %s", r.URL.Path)
	})

	app := newApp(func(r internal.Router) {
		r.Mount("/admin", mounted)
	}, internal.WithMiddleware(countingMiddleware(&mwCalls)))

	rec := doRequest(app, http.MethodGet, "/admin/panel")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "mounted /panel", rec.Body.String())
	require.Zero(t, mwCalls)
}

func TestApp_WithStaticFiles(t *testing.T) {
	t.Parallel()

	assets := fstest.MapFS{
		"public/app.js": &fstest.MapFile{Data: []byte("console.log(1)")},
	}
	app := newApp(nil, internal.WithStaticFiles("/assets/", assets, "public"))

	rec := doRequest(app, http.MethodGet, "/assets/app.js")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "console.log(1)", rec.Body.String())
	require.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	// Directory listings are blocked.
	rec = doRequest(app, http.MethodGet, "/assets/")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_BootPanicsOnRouteConflict(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		newApp(func(r internal.Router) {
			r.GET("/dup", textHandler(http.StatusOK, "a"))
			r.GET("/dup", textHandler(http.StatusOK, "b"))
		})
	})
}

func TestApp_URLFor(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/users/{id}", textHandler(http.StatusOK, "u")).Name("user.show")
	})

	url, err := app.URLFor("user.show", map[string]string{"id": "7"})
	require.NoError(t, err)
	require.Equal(t, "/users/7", url)

	_, err = app.URLFor("ghost", nil)
	require.Error(t, err)
}
