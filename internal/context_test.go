package internal_test

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// carryCookies copies the cookies set by a previous response onto the next
// request, skipping deletion markers.
func carryCookies(rec *httptest.ResponseRecorder, req *http.Request) {
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge >= 0 {
			req.AddCookie(ck)
		}
	}
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestContext_RequestAccessors(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/echo/{word}", func(c internal.Context) error {
			parts := []string{
				c.Method(),
				c.Path(),
				c.Param("word"),
				c.Query("q"),
				c.QueryDefault("missing", "fallback"),
				c.Header("X-Probe"),
			}
			return c.String(http.StatusOK, strings.Join(parts, "|"))
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/echo/hi?q=term", nil)
	req.Header.Set("X-Probe", "on")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, "GET|/echo/hi|hi|term|fallback|on", rec.Body.String())
}

func TestContext_Form(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.POST("/submit", func(c internal.Context) error {
			return c.String(http.StatusOK, c.Form("name")+"|"+c.FormDefault("missing", "dflt"))
		})
	})

	form := url.Values{"name": {"anvil"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, "anvil|dflt", rec.Body.String())
}

func TestContext_UploadFile(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.POST("/upload", func(c internal.Context) error {
			up, err := c.UploadFile("avatar")
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, up.Filename+":"+string(up.Data))
		})
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("pngbytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "me.png:pngbytes", rec.Body.String())
}

func TestContext_Responses(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/json", func(c internal.Context) error {
			return c.JSON(http.StatusCreated, map[string]any{"ok": true})
		})
		r.GET("/empty", func(c internal.Context) error {
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/away", func(c internal.Context) error {
			return c.Redirect(http.StatusFound, "/login")
		})
	})

	rec := doRequest(app, http.MethodGet, "/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = doRequest(app, http.MethodGet, "/empty")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = doRequest(app, http.MethodGet, "/away")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestContext_SetGet(t *testing.T) {
	t.Parallel()

	type userKey struct{}

	inject := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.Set(userKey{}, "u-99")
			return next(c)
		}
	}

	app := newApp(func(r internal.Router) {
		r.GET("/who", func(c internal.Context) error {
			direct, _ := c.Get(userKey{}).(string)
			typed := internal.ContextValue[string](c, userKey{})
			viaCtx, _ := c.Value(userKey{}).(string)
			return c.String(http.StatusOK, direct+"|"+typed+"|"+viaCtx)
		}, inject)
	})

	rec := doRequest(app, http.MethodGet, "/who")
	require.Equal(t, "u-99|u-99|u-99", rec.Body.String())
}

func TestContext_SettingsOverlay(t *testing.T) {
	t.Parallel()

	read := func(c internal.Context) error {
		theme, _ := c.Setting("theme")
		return c.String(http.StatusOK, theme+"|"+c.SettingOrDefault("missing", "std"))
	}

	app := newApp(func(r internal.Router) {
		r.GET("/plain", read)
		r.GET("/special", read).Settings(map[string]string{"theme": "dark"})
	}, internal.WithSettings(internal.NewSettings(internal.WithSetting("theme", "light"))))

	rec := doRequest(app, http.MethodGet, "/plain")
	require.Equal(t, "light|std", rec.Body.String())

	// The route overlay shadows the application settings without mutating them.
	rec = doRequest(app, http.MethodGet, "/special")
	require.Equal(t, "dark|std", rec.Body.String())

	rec = doRequest(app, http.MethodGet, "/plain")
	require.Equal(t, "light|std", rec.Body.String())
	require.Equal(t, "development", app.Settings().Env())
}

func TestContext_AppValues(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.POST("/remember", func(c internal.Context) error {
			if err := c.SetAppValue("greeting", "hello"); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/recall", func(c internal.Context) error {
			v, err := c.AppValue("greeting")
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, fmt.Sprint(v))
		})
	})

	// Unknown keys surface as errors.
	rec := doRequest(app, http.MethodGet, "/recall")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	doRequest(app, http.MethodPost, "/remember")

	// The store is shared across requests.
	rec = doRequest(app, http.MethodGet, "/recall")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello", rec.Body.String())
}

func TestContext_Cookies(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/set-plain", func(c internal.Context) error {
			c.SetCookie("theme", "dark", 3600)
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/get-plain", func(c internal.Context) error {
			v, err := c.Cookie("theme")
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, v)
		})
		r.GET("/del-plain", func(c internal.Context) error {
			c.DeleteCookie("theme")
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/set-signed", func(c internal.Context) error {
			if err := c.SetCookieSigned("uid", "42", 3600); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/get-signed", func(c internal.Context) error {
			v, err := c.CookieSigned("uid")
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, v)
		})
		r.GET("/set-enc", func(c internal.Context) error {
			if err := c.SetCookieEncrypted("token", "s3cr3t", 3600); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/get-enc", func(c internal.Context) error {
			v, err := c.CookieEncrypted("token")
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, v)
		})
	}, internal.WithSettings(internal.NewSettings(
		internal.WithSecretKey("test-secret-key-0123456789abcdef"),
	)))

	t.Run("plain round trip", func(t *testing.T) {
		rec := doRequest(app, http.MethodGet, "/set-plain")
		require.Equal(t, "dark", findCookie(t, rec, "theme").Value)

		req := httptest.NewRequest(http.MethodGet, "/get-plain", nil)
		carryCookies(rec, req)
		rec2 := httptest.NewRecorder()
		app.ServeHTTP(rec2, req)
		require.Equal(t, "dark", rec2.Body.String())
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(app, http.MethodGet, "/del-plain")
		require.Negative(t, findCookie(t, rec, "theme").MaxAge)
	})

	t.Run("signed round trip", func(t *testing.T) {
		rec := doRequest(app, http.MethodGet, "/set-signed")
		wire := findCookie(t, rec, "uid").Value
		require.NotEqual(t, "42", wire)

		req := httptest.NewRequest(http.MethodGet, "/get-signed", nil)
		carryCookies(rec, req)
		rec2 := httptest.NewRecorder()
		app.ServeHTTP(rec2, req)
		require.Equal(t, "42", rec2.Body.String())
	})

	t.Run("tampered signature rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/get-signed", nil)
		req.AddCookie(&http.Cookie{Name: "uid", Value: "forged-value"})
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("encrypted round trip", func(t *testing.T) {
		rec := doRequest(app, http.MethodGet, "/set-enc")
		wire := findCookie(t, rec, "token").Value
		require.NotContains(t, wire, "s3cr3t")

		req := httptest.NewRequest(http.MethodGet, "/get-enc", nil)
		carryCookies(rec, req)
		rec2 := httptest.NewRecorder()
		app.ServeHTTP(rec2, req)
		require.Equal(t, "s3cr3t", rec2.Body.String())
	})
}

func TestContext_Flash(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/flash-set", func(c internal.Context) error {
			if err := c.SetFlash("notice", "saved!"); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/flash-get", func(c internal.Context) error {
			var msg string
			if err := c.Flash("notice", &msg); err != nil {
				return err
			}
			return c.String(http.StatusOK, msg)
		})
	}, internal.WithSettings(internal.NewSettings(
		internal.WithSecretKey("test-secret-key-0123456789abcdef"),
	)))

	rec := doRequest(app, http.MethodGet, "/flash-set")
	require.Equal(t, http.StatusNoContent, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/flash-get", nil)
	carryCookies(rec, req)
	rec2 := httptest.NewRecorder()
	app.ServeHTTP(rec2, req)

	require.Equal(t, "saved!", rec2.Body.String())

	// Reading consumes the flash: the response deletes its cookie.
	deleted := false
	for _, ck := range rec2.Result().Cookies() {
		if ck.MaxAge < 0 {
			deleted = true
		}
	}
	require.True(t, deleted)
}

func TestContext_SessionLifecycle(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	app := newApp(func(r internal.Router) {
		r.POST("/session/init", func(c internal.Context) error {
			if err := c.InitSession(); err != nil {
				return err
			}
			return c.NoContent(http.StatusCreated)
		})
		r.POST("/session/cart", func(c internal.Context) error {
			if err := c.SetSessionValue("cart", "3 items"); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/session/cart", func(c internal.Context) error {
			v, err := c.SessionValue("cart")
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, fmt.Sprint(v))
		})
		r.POST("/session/login", func(c internal.Context) error {
			if err := c.AuthenticateSession("user-7"); err != nil {
				return err
			}
			return c.String(http.StatusOK, c.UserID())
		})
		r.GET("/session/me", func(c internal.Context) error {
			return c.String(http.StatusOK, fmt.Sprintf("%s|%t|%t",
				c.UserID(), c.IsAuthenticated(), c.IsCurrentUser("user-7")))
		})
		r.POST("/session/logout", func(c internal.Context) error {
			if err := c.DestroySession(); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		})
	}, internal.WithSession(store))

	withSession := func(method, target string, prev *httptest.ResponseRecorder) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		carryCookies(prev, req)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		return rec
	}

	// New session sets the cookie.
	init := doRequest(app, http.MethodPost, "/session/init")
	require.Equal(t, http.StatusCreated, init.Code)
	firstToken := findCookie(t, init, "__sid").Value
	require.NotEmpty(t, firstToken)

	// Dirty sessions flush when the response is written.
	rec := withSession(http.MethodPost, "/session/cart", init)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = withSession(http.MethodGet, "/session/cart", init)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "3 items", rec.Body.String())

	// Authentication rotates the token.
	login := withSession(http.MethodPost, "/session/login", init)
	require.Equal(t, http.StatusOK, login.Code)
	require.Equal(t, "user-7", login.Body.String())
	secondToken := findCookie(t, login, "__sid").Value
	require.NotEqual(t, firstToken, secondToken)

	rec = withSession(http.MethodGet, "/session/me", login)
	require.Equal(t, "user-7|true|true", rec.Body.String())

	// The pre-login token no longer resolves to a session.
	rec = withSession(http.MethodGet, "/session/me", init)
	require.Equal(t, "|false|false", rec.Body.String())

	// Logout clears cookie and store.
	logout := withSession(http.MethodPost, "/session/logout", login)
	require.Equal(t, http.StatusNoContent, logout.Code)
	require.Negative(t, findCookie(t, logout, "__sid").MaxAge)

	rec = withSession(http.MethodGet, "/session/cart", login)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestContext_SessionNotConfigured(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/session", func(c internal.Context) error {
			if _, err := c.Session(); !errors.Is(err, session.ErrNotConfigured) {
				return fmt.Errorf("want ErrNotConfigured, got %v", err)
			}
			if err := c.InitSession(); !errors.Is(err, session.ErrNotConfigured) {
				return fmt.Errorf("want ErrNotConfigured, got %v", err)
			}
			return c.NoContent(http.StatusOK)
		})
	})

	rec := doRequest(app, http.MethodGet, "/session")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestContext_DomainSubdomain(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/host", func(c internal.Context) error {
			return c.String(http.StatusOK, c.Domain()+"|"+c.Subdomain())
		})
	}, internal.WithBaseDomain("example.com"))

	req := httptest.NewRequest(http.MethodGet, "/host", nil)
	req.Host = "api.example.com:8443"
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, "api.example.com|api", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/host", nil)
	req.Host = "example.com"
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, "example.com|", rec.Body.String())
}

func TestContext_URLFor(t *testing.T) {
	t.Parallel()

	app := newApp(func(r internal.Router) {
		r.GET("/users/{id}", textHandler(http.StatusOK, "u")).Name("user.show")
		r.GET("/links", func(c internal.Context) error {
			u, err := c.URLFor("user.show", map[string]string{"id": "9"}, map[string]string{"tab": "posts"})
			if err != nil {
				return err
			}
			return c.String(http.StatusOK, u)
		})
	})

	rec := doRequest(app, http.MethodGet, "/links")
	require.Equal(t, "/users/9?tab=posts", rec.Body.String())
}
