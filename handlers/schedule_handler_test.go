package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
)

func newScheduleEcho(ctrl *fakeScheduleController) *echo.Echo {
	e := newTestEcho()
	h := NewScheduleHandler(ctrl)
	e.GET("/get-schedule", h.GetSchedule)
	e.POST("/update-schedule", h.UpdateSchedule)
	return e
}

func TestGetSchedule(t *testing.T) {
	e := newScheduleEcho(&fakeScheduleController{cfg: domain.ScheduleConfig{Hour: 10, Minute: 5}})

	rec := doRequest(e, http.MethodGet, "/get-schedule", "")
	assertStatus(t, rec, http.StatusOK)

	var body ScheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.Hour != 10 || body.Minute != 5 {
		t.Errorf("unexpected schedule: %+v", body)
	}
}

func TestUpdateSchedule_Valid(t *testing.T) {
	ctrl := &fakeScheduleController{cfg: domain.ScheduleConfig{Hour: 10, Minute: 0}}
	e := newScheduleEcho(ctrl)

	rec := doRequest(e, http.MethodPost, "/update-schedule", `{"hour":0,"minute":30,"updated_by":"ops"}`)
	assertStatus(t, rec, http.StatusOK)

	var body UpdateScheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.OldSchedule.Hour != 10 || body.NewSchedule.Hour != 0 || body.NewSchedule.Minute != 30 {
		t.Errorf("unexpected body: %+v", body)
	}
	if ctrl.cfg.UpdatedBy != "ops" {
		t.Errorf("expected actor ops, got %q", ctrl.cfg.UpdatedBy)
	}
}

func TestUpdateSchedule_DefaultActor(t *testing.T) {
	ctrl := &fakeScheduleController{}
	e := newScheduleEcho(ctrl)

	rec := doRequest(e, http.MethodPost, "/update-schedule", `{"hour":9,"minute":15}`)
	assertStatus(t, rec, http.StatusOK)

	if ctrl.cfg.UpdatedBy != "api" {
		t.Errorf("expected default actor api, got %q", ctrl.cfg.UpdatedBy)
	}
}

func TestUpdateSchedule_InvalidInputIs400AndUnchanged(t *testing.T) {
	cases := map[string]string{
		"hour too large":   `{"hour":24,"minute":0}`,
		"minute too large": `{"hour":10,"minute":60}`,
		"negative hour":    `{"hour":-1,"minute":0}`,
		"missing minute":   `{"hour":10}`,
		"not a number":     `{"hour":"ten","minute":0}`,
		"malformed json":   `{"hour":`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ctrl := &fakeScheduleController{cfg: domain.ScheduleConfig{Hour: 10, Minute: 0}}
			e := newScheduleEcho(ctrl)

			rec := doRequest(e, http.MethodPost, "/update-schedule", body)
			assertStatus(t, rec, http.StatusBadRequest)

			if ctrl.calls != 0 {
				t.Errorf("scheduler must not be called for invalid input")
			}
			if ctrl.cfg.Hour != 10 || ctrl.cfg.Minute != 0 {
				t.Errorf("schedule changed: %+v", ctrl.cfg)
			}
		})
	}
}

func TestUpdateSchedule_PersistFailureIs500(t *testing.T) {
	ctrl := &fakeScheduleController{saveErr: errors.New("read-only filesystem")}
	e := newScheduleEcho(ctrl)

	rec := doRequest(e, http.MethodPost, "/update-schedule", `{"hour":8,"minute":0}`)
	assertStatus(t, rec, http.StatusInternalServerError)
}
