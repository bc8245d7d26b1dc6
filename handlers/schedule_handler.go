package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/pkg/response"
	"github.com/onurcolak/daily-campaign-mailer/pkg/validator"
)

type scheduleController interface {
	GetSchedule() domain.ScheduleConfig
	Reconfigure(hour, minute int, actor string) (domain.ScheduleConfig, domain.ScheduleConfig, error)
}

type ScheduleHandler struct {
	scheduler scheduleController
}

type UpdateScheduleRequest struct {
	Hour      *int   `json:"hour" validate:"required,min=0,max=23"`
	Minute    *int   `json:"minute" validate:"required,min=0,max=59"`
	UpdatedBy string `json:"updated_by,omitempty" validate:"omitempty,notblank,max=64"`
}

type ScheduleResponse struct {
	Hour        int    `json:"hour"`
	Minute      int    `json:"minute"`
	LastUpdated string `json:"last_updated,omitempty"`
	UpdatedBy   string `json:"updated_by,omitempty"`
}

type UpdateScheduleResponse struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message"`
	OldSchedule domain.ScheduleConfig `json:"old_schedule"`
	NewSchedule domain.ScheduleConfig `json:"new_schedule"`
}

func NewScheduleHandler(sched scheduleController) *ScheduleHandler {
	return &ScheduleHandler{scheduler: sched}
}

// GetSchedule godoc
// @Summary Current daily trigger time
// @Tags schedule
// @Produce json
// @Success 200 {object} ScheduleResponse
// @Router /get-schedule [get]
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	cfg := h.scheduler.GetSchedule()

	resp := ScheduleResponse{Hour: cfg.Hour, Minute: cfg.Minute, UpdatedBy: cfg.UpdatedBy}
	if !cfg.LastUpdated.IsZero() {
		resp.LastUpdated = cfg.LastUpdated.Format(time.RFC3339)
	}

	return c.JSON(http.StatusOK, resp)
}

// UpdateSchedule godoc
// @Summary Change the daily trigger time
// @Description Validates, persists and activates a new hour/minute in the reference time zone. Invalid input leaves the current schedule untouched.
// @Tags schedule
// @Accept json
// @Produce json
// @Param request body UpdateScheduleRequest true "New trigger time"
// @Success 200 {object} UpdateScheduleResponse
// @Failure 400 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /update-schedule [post]
func (h *ScheduleHandler) UpdateSchedule(c echo.Context) error {
	var req UpdateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	actor := req.UpdatedBy
	if actor == "" {
		actor = "api"
	}

	oldCfg, newCfg, err := h.scheduler.Reconfigure(*req.Hour, *req.Minute, actor)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSchedule) {
			return response.BadRequest(c, err)
		}
		return response.InternalServerError(c, err)
	}

	return c.JSON(http.StatusOK, UpdateScheduleResponse{
		Success:     true,
		Message:     "Schedule updated to " + newCfg.String(),
		OldSchedule: oldCfg,
		NewSchedule: newCfg,
	})
}
