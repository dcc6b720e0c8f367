package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/masterdesk/internal/auth"
	"github.com/odyssey-erp/masterdesk/internal/backend"
	"github.com/odyssey-erp/masterdesk/internal/dashboard"
	"github.com/odyssey-erp/masterdesk/internal/export"
	"github.com/odyssey-erp/masterdesk/internal/i18n"
	"github.com/odyssey-erp/masterdesk/internal/observability"
	"github.com/odyssey-erp/masterdesk/internal/shared"
	"github.com/odyssey-erp/masterdesk/internal/view"
	_ "github.com/odyssey-erp/masterdesk/testing"
)

type stubGateway struct{}

func (stubGateway) Login(ctx context.Context, req backend.LoginRequest) (string, error) {
	return "tok-" + req.Username, nil
}

func (stubGateway) Logout(ctx context.Context, creds backend.Credentials) error { return nil }

type panicPage struct{}

func (panicPage) MountRoutes(r chi.Router) {
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

type routerHarness struct {
	handler  http.Handler
	sessions *shared.SessionManager
	links    *export.Links
}

func newRouterHarness(t *testing.T) *routerHarness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf")
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := newLogger(&strings.Builder{}, nil)
	links := export.NewLinks(client, time.Minute, "/downloads/")

	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, RateLimit: 1000}
	handler := NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessions,
		CSRFManager:      csrf,
		AuthHandler:      auth.NewHandler(logger, auth.NewService(stubGateway{}, logger), templates, sessions, csrf),
		DashboardHandler: dashboard.NewHandler(logger, templates, csrf, sessions, nil),
		Pages:            []RouteMounter{panicPage{}},
		Exporter:         export.NewExporter(export.Config{Links: links, Logger: logger}),
		Metrics:          observability.NewMetrics(),
	})
	return &routerHarness{handler: handler, sessions: sessions, links: links}
}

func (h *routerHarness) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	h.handler.ServeHTTP(res, req)
	return res
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", name)
	return nil
}

// csrfToken reads the token stored in the session behind cookie.
func (h *routerHarness) csrfToken(t *testing.T, cookie *http.Cookie) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err := h.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	token := sess.Get(shared.CSRFSessionKey)
	require.NotEmpty(t, token)
	return token
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// signIn walks through the login form and returns the session cookie.
func (h *routerHarness) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	res := h.do(httptest.NewRequest(http.MethodGet, "/login", nil), nil)
	require.Equal(t, http.StatusOK, res.Code)
	cookie := sessionCookie(t, res, "test_session")

	form := url.Values{}
	form.Set("username", "mai")
	form.Set("password", "secret")
	form.Set("company_id", "C01")
	form.Set(shared.CSRFFormField, h.csrfToken(t, cookie))
	res = h.do(postForm("/login", form), cookie)
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/", res.Header().Get("Location"))
	return cookie
}

func TestHealthz(t *testing.T) {
	h := newRouterHarness(t)

	res := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())
}

func TestAnonymousVisitorsAreSentToLogin(t *testing.T) {
	h := newRouterHarness(t)

	res := h.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	h := newRouterHarness(t)

	res := h.do(postForm("/logout", url.Values{}), nil)

	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestLoginThenDashboard(t *testing.T) {
	h := newRouterHarness(t)
	cookie := h.signIn(t)

	res := h.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie)

	assert.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, i18n.T(i18n.Default, "dashboard.welcome", "mai"))
	assert.Contains(t, body, i18n.T(i18n.Default, "login.success"), "the login flash shows once")
	assert.NotEmpty(t, res.Header().Get("X-Frame-Options"))
}

func TestPanicRendersErrorPage(t *testing.T) {
	h := newRouterHarness(t)
	cookie := h.signIn(t)

	res := h.do(httptest.NewRequest(http.MethodGet, "/boom", nil), cookie)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Contains(t, res.Body.String(), i18n.T(i18n.Default, "error.generic"))
}

func TestDownloadServesExportedWorkbook(t *testing.T) {
	h := newRouterHarness(t)
	cookie := h.signIn(t)
	token, link, err := h.links.Put(context.Background(), "quan-ly-don-vi-tinh.xlsx", []byte("PK"))
	require.NoError(t, err)
	assert.Equal(t, "/downloads/"+token, link)

	res := h.do(httptest.NewRequest(http.MethodGet, link, nil), cookie)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, export.ContentType, res.Header().Get("Content-Type"))
	assert.Contains(t, res.Header().Get("Content-Disposition"), "quan-ly-don-vi-tinh.xlsx")
	assert.Equal(t, "PK", res.Body.String())

	require.NoError(t, h.links.Revoke(context.Background(), token))
	res = h.do(httptest.NewRequest(http.MethodGet, link, nil), cookie)
	assert.Equal(t, http.StatusGone, res.Code)
}

func TestDownloadRequiresLogin(t *testing.T) {
	h := newRouterHarness(t)
	_, link, err := h.links.Put(context.Background(), "x.xlsx", []byte("PK"))
	require.NoError(t, err)

	res := h.do(httptest.NewRequest(http.MethodGet, link, nil), nil)

	assert.Equal(t, http.StatusSeeOther, res.Code)
}

func TestStaticAssetsAreCached(t *testing.T) {
	h := newRouterHarness(t)

	res := h.do(httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil), nil)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "public, max-age=3600", res.Header().Get("Cache-Control"))
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	h := newRouterHarness(t)

	res := h.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil), nil)

	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Contains(t, res.Body.String(), http.StatusText(http.StatusNotFound))
}
