package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/pkg/validator"
)

//
// Test fakes – only for this package.
//

type fakeCampaigns struct {
	mu       sync.Mutex
	result   domain.CampaignResult
	err      error
	preview  string
	prevErr  error
	prefixes []string
	triggers []domain.Trigger
	ctxErr   error
}

func (f *fakeCampaigns) Run(ctx context.Context, subjectPrefix string, trigger domain.Trigger) (domain.CampaignResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, subjectPrefix)
	f.triggers = append(f.triggers, trigger)
	f.ctxErr = ctx.Err()
	return f.result, f.err
}

func (f *fakeCampaigns) Preview(name string) (string, error) {
	if f.prevErr != nil {
		return "", f.prevErr
	}
	return strings.ReplaceAll(f.preview, "{{NAME}}", name), nil
}

type fakeScheduleController struct {
	cfg     domain.ScheduleConfig
	calls   int
	saveErr error
}

func (f *fakeScheduleController) GetSchedule() domain.ScheduleConfig { return f.cfg }

func (f *fakeScheduleController) Reconfigure(hour, minute int, actor string) (domain.ScheduleConfig, domain.ScheduleConfig, error) {
	f.calls++
	next := domain.ScheduleConfig{Hour: hour, Minute: minute, UpdatedBy: actor}
	if err := next.Validate(); err != nil {
		return f.cfg, f.cfg, err
	}
	if f.saveErr != nil {
		return f.cfg, f.cfg, f.saveErr
	}
	old := f.cfg
	f.cfg = next
	return old, next, nil
}

type fakeDeliveryReader struct {
	runs     []domain.RunRecord
	total    int64
	outcomes []domain.SendOutcome
	err      error
	gotPage  int
	gotSize  int
	gotRunID string
}

func (f *fakeDeliveryReader) ListRuns(ctx context.Context, page, pageSize int) ([]domain.RunRecord, int64, error) {
	f.gotPage, f.gotSize = page, pageSize
	return f.runs, f.total, f.err
}

func (f *fakeDeliveryReader) GetAttempts(ctx context.Context, runID string) ([]domain.SendOutcome, error) {
	f.gotRunID = runID
	return f.outcomes, f.err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

func newRequest(method, target, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, target, nil)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	return serve(e, newRequest(method, target, body))
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (body: %s)", want, rec.Code, rec.Body.String())
	}
}

var errBoom = fmt.Errorf("%w: missing SENDGRID_API_KEY", domain.ErrConfiguration)
