package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/calview/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                "development",
		Port:               8080,
		BaseURL:            "http://localhost:8080",
		Storage:            config.StorageMemory,
		RateLimitPerMinute: 100,
		Session: config.SessionConfig{
			CookieName: "calview_session",
			TTL:        time.Hour,
		},
		Widget: config.DefaultWidget(),
	}
}

func newTestApp(t *testing.T, cfg *config.Config, rdb *redis.Client) *App {
	t.Helper()
	a := New(cfg, nil, rdb)
	if err := a.RegisterRoutes(); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return a
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthz_MemoryBackends(t *testing.T) {
	a := newTestApp(t, testConfig(), nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := body["redis"]; ok {
		t.Error("expected no redis entry without a client")
	}
}

func TestHealthz_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	a := newTestApp(t, testConfig(), rdb)
	mr.Close()

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redis":"unreachable"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestRoutes_RootRedirects(t *testing.T) {
	a := newTestApp(t, testConfig(), nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/calendar" {
		t.Errorf("expected redirect to /calendar, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestWidget_CSRFRoundTrip(t *testing.T) {
	a := newTestApp(t, testConfig(), nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/calendar", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var csrf, session *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		switch ck.Name {
		case "calview_csrf":
			csrf = ck
		case "calview_session":
			session = ck
		}
	}
	if csrf == nil || session == nil {
		t.Fatal("expected csrf and session cookies")
	}
	if !strings.Contains(rec.Body.String(), `<meta name="csrf-token" content="`+csrf.Value+`">`) {
		t.Error("expected the token in the page meta tag")
	}

	req := httptest.NewRequest(http.MethodPost, "/calendar/nav/next", nil)
	req.Header.Set("HX-Request", "true")
	req.AddCookie(csrf)
	req.AddCookie(session)
	rec = serve(a, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 without the header, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Retarget") != "body" {
		t.Error("expected HTMX errors to be retargeted to the body")
	}

	req = httptest.NewRequest(http.MethodPost, "/calendar/nav/next", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", csrf.Value)
	req.AddCookie(csrf)
	req.AddCookie(session)
	rec = serve(a, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `id="calendar-widget"`) {
		t.Error("expected the widget fragment")
	}
}

func TestAPI_ValidationErrorsAsJSON(t *testing.T) {
	a := newTestApp(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events",
		strings.NewReader(`{"title":"","startDate":"2024-11-15T10:00:00Z","endDate":"2024-11-15T09:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(a, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Type   string            `json:"type"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields["title"] == "" || body.Fields["end"] == "" {
		t.Errorf("expected title and end field errors, got %v", body.Fields)
	}
}

func TestAPI_UnknownRouteIsJSON(t *testing.T) {
	a := newTestApp(t, testConfig(), nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		t.Errorf("expected JSON, got %q", rec.Header().Get("Content-Type"))
	}
}

func TestAPI_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerMinute = 1
	a := newTestApp(t, cfg, nil)

	serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
}

func TestRegisterRoutes_InvalidSnapshotSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Snapshot = config.SnapshotConfig{Cron: "whenever", Path: t.TempDir() + "/c.ics"}

	if err := New(cfg, nil, nil).RegisterRoutes(); err == nil {
		t.Error("expected an error for an invalid schedule")
	}
}

func TestAPI_PreflightFromBaseURL(t *testing.T) {
	a := newTestApp(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/events/abc", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := serve(a, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:8080" {
		t.Errorf("expected the base URL to be allowed, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch) {
		t.Error("expected PATCH to be allowed")
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("expected no credentials for the API")
	}
}
