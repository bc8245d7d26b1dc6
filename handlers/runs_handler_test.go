package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/pkg/response"
)

func newRunsEcho(h *RunsHandler) *echo.Echo {
	e := newTestEcho()
	e.GET("/api/v1/runs", h.ListRuns)
	e.GET("/api/v1/runs/:id/deliveries", h.GetDeliveries)
	return e
}

func TestListRuns_Pagination(t *testing.T) {
	reader := &fakeDeliveryReader{
		runs:  []domain.RunRecord{{RunID: "run-1", Status: domain.RunSuccess}},
		total: 41,
	}
	e := newRunsEcho(NewRunsHandler(reader))

	rec := doRequest(e, http.MethodGet, "/api/v1/runs?page=3&pageSize=500", "")
	assertStatus(t, rec, http.StatusOK)

	if reader.gotPage != 3 || reader.gotSize != maxPageSize {
		t.Errorf("expected page=3 size=%d, got page=%d size=%d", maxPageSize, reader.gotPage, reader.gotSize)
	}

	var body response.PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.TotalCount != 41 || body.TotalPages != 1 {
		t.Errorf("unexpected pagination: %+v", body)
	}
}

func TestListRuns_Defaults(t *testing.T) {
	reader := &fakeDeliveryReader{}
	e := newRunsEcho(NewRunsHandler(reader))

	rec := doRequest(e, http.MethodGet, "/api/v1/runs?page=abc", "")
	assertStatus(t, rec, http.StatusOK)

	if reader.gotPage != 1 || reader.gotSize != defaultPageSize {
		t.Errorf("expected defaults, got page=%d size=%d", reader.gotPage, reader.gotSize)
	}
}

func TestListRuns_DisabledIs503(t *testing.T) {
	e := newRunsEcho(NewRunsHandler(nil))

	rec := doRequest(e, http.MethodGet, "/api/v1/runs", "")
	assertStatus(t, rec, http.StatusServiceUnavailable)
}

func TestListRuns_StoreErrorIs500(t *testing.T) {
	e := newRunsEcho(NewRunsHandler(&fakeDeliveryReader{err: errors.New("db down")}))

	rec := doRequest(e, http.MethodGet, "/api/v1/runs", "")
	assertStatus(t, rec, http.StatusInternalServerError)
}

func TestGetDeliveries(t *testing.T) {
	reader := &fakeDeliveryReader{outcomes: []domain.SendOutcome{
		{Email: "ana@example.com", Status: domain.OutcomeSent, StatusCode: 202},
	}}
	e := newRunsEcho(NewRunsHandler(reader))

	rec := doRequest(e, http.MethodGet, "/api/v1/runs/run-42/deliveries", "")
	assertStatus(t, rec, http.StatusOK)

	if reader.gotRunID != "run-42" {
		t.Errorf("expected run id run-42, got %q", reader.gotRunID)
	}
}

func TestGetDeliveries_UnknownRunIs404(t *testing.T) {
	e := newRunsEcho(NewRunsHandler(&fakeDeliveryReader{}))

	rec := doRequest(e, http.MethodGet, "/api/v1/runs/missing/deliveries", "")
	assertStatus(t, rec, http.StatusNotFound)
}
