package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/onurcolak/daily-campaign-mailer/environments"
)

func testConfig(t *testing.T) *environments.Config {
	t.Helper()

	return &environments.Config{
		Server: environments.ServerConfig{Port: "0"},
		SendGrid: environments.SendGridConfig{
			BaseURL: "http://127.0.0.1:1",
			Timeout: time.Second,
		},
		Campaign: environments.CampaignConfig{
			TemplatePath:      filepath.Join(t.TempDir(), "missing.html"),
			SubjectPrefix:     "Daily Forex Signals",
			UTCOffsetHours:    4,
			Concurrency:       2,
			RunTimeout:        time.Second,
			AcceptedStatus:    http.StatusAccepted,
			TestSubjectPrefix: "[TEST] Daily Forex Signals",
		},
		Schedule: environments.ScheduleConfig{
			FilePath:      filepath.Join(t.TempDir(), "schedule_config.json"),
			DefaultHour:   10,
			DefaultMinute: 0,
		},
		Health: environments.HealthConfig{
			StaleAfter:    25 * time.Hour,
			CheckInterval: 30 * time.Minute,
		},
		Auth: environments.AuthConfig{TriggerAPIKey: "secret"},
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()

	a, err := newApp(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.Close)

	if _, err := a.scheduler.Load(); err != nil {
		t.Fatalf("scheduler load: %v", err)
	}
	return a
}

func TestNewApp_WithoutOptionalStores(t *testing.T) {
	a := newTestApp(t)

	if a.redis != nil || a.db != nil || a.deliveries != nil {
		t.Fatalf("expected optional stores to stay disabled")
	}
	if got := a.scheduler.GetSchedule(); got.Hour != 10 || got.Minute != 0 {
		t.Fatalf("expected default schedule 10:00, got %s", got)
	}
}

func TestRoutes_ScheduleIsOpen(t *testing.T) {
	e := newEcho(newTestApp(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-schedule", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["hour"] != float64(10) {
		t.Fatalf("expected hour 10, got %v", body["hour"])
	}
}

func TestRoutes_OperatorEndpointsRequireKey(t *testing.T) {
	e := newEcho(newTestApp(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	req.Header.Set("x-mailer-auth-key", "secret")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with delivery log disabled, got %d", rec.Code)
	}
}

func TestRoutes_SendWithoutCredentialsFails(t *testing.T) {
	e := newEcho(newTestApp(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/send-emails", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when SendGrid is not configured, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRoutes_DailyTemplateMissing(t *testing.T) {
	e := newEcho(newTestApp(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/daily-template", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing template, got %d", rec.Code)
	}
}
