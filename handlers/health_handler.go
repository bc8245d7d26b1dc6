package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/internal/scheduler"
	"github.com/onurcolak/daily-campaign-mailer/internal/service"
	"github.com/onurcolak/daily-campaign-mailer/pkg/response"
)

type healthReporter interface {
	Check(ctx context.Context, notify bool) domain.HealthStatus
	Status() domain.HealthStatus
	VerifySender(ctx context.Context) (domain.SenderCheck, error)
}

type runReporter interface {
	LastRun() domain.RunRecord
	IsRunning() bool
	Configuration() service.ConfigurationSummary
}

type schedulerReporter interface {
	GetStatus() scheduler.SchedulerStatus
	GetSchedule() domain.ScheduleConfig
}

// Pinger is implemented by optional backing stores (Redis, MySQL).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves status, health and sender verification.
type HealthHandler struct {
	health       healthReporter
	runs         runReporter
	scheduler    schedulerReporter
	components   map[string]Pinger
	checkTimeout time.Duration
}

func NewHealthHandler(health healthReporter, runs runReporter, sched schedulerReporter) *HealthHandler {
	return &HealthHandler{
		health:       health,
		runs:         runs,
		scheduler:    sched,
		components:   map[string]Pinger{},
		checkTimeout: 10 * time.Second,
	}
}

// WithComponent adds a backing store to the /health component report.
func (h *HealthHandler) WithComponent(name string, p Pinger) *HealthHandler {
	h.components[name] = p
	return h
}

type RootResponse struct {
	Message       string           `json:"message"`
	Status        string           `json:"status"`
	Schedule      string           `json:"schedule"`
	LastExecution domain.RunRecord `json:"last_execution"`
}

type HealthResponse struct {
	Status     string                    `json:"status"`
	Timestamp  string                    `json:"timestamp"`
	Checks     map[string]string         `json:"checks"`
	Issues     []string                  `json:"issues"`
	Scheduler  scheduler.SchedulerStatus `json:"scheduler"`
	Components map[string]string         `json:"components,omitempty"`
}

type StatusResponse struct {
	Status         string                       `json:"status"`
	CampaignActive bool                         `json:"campaign_in_progress"`
	ScheduleConfig domain.ScheduleConfig        `json:"schedule_config"`
	Scheduler      scheduler.SchedulerStatus    `json:"scheduler"`
	LastExecution  domain.RunRecord             `json:"last_execution"`
	LastHealth     domain.HealthStatus          `json:"last_health_check"`
	Configuration  service.ConfigurationSummary `json:"configuration"`
}

type MonitorResponse struct {
	Status string            `json:"status"`
	Issues []string          `json:"issues"`
	Checks map[string]string `json:"checks"`
}

func schedulerState(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}

// Root godoc
// @Summary Liveness and summary
// @Tags health
// @Produce json
// @Success 200 {object} RootResponse
// @Router / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	st := h.scheduler.GetStatus()

	return c.JSON(http.StatusOK, RootResponse{
		Message:       "Daily campaign mailer is running",
		Status:        schedulerState(st.Running),
		Schedule:      st.Schedule.String() + " " + st.Timezone,
		LastExecution: h.runs.LastRun(),
	})
}

// Health godoc
// @Summary Health check
// @Description Runs the self-check battery without sending an alert. Returns 503 when any check fails.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	status := h.health.Check(ctx, false)

	overall := "healthy"
	if !status.Healthy() {
		overall = "degraded"
	}

	var components map[string]string
	if len(h.components) > 0 {
		components = make(map[string]string, len(h.components))
		for name, p := range h.components {
			if err := p.Ping(ctx); err != nil {
				components[name] = "down"
				overall = "degraded"
			} else {
				components[name] = "up"
			}
		}
	}

	code := http.StatusOK
	if overall != "healthy" {
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, HealthResponse{
		Status:     overall,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Checks:     status.Checks,
		Issues:     status.Issues,
		Scheduler:  h.scheduler.GetStatus(),
		Components: components,
	})
}

// Status godoc
// @Summary Detailed status
// @Description Schedule, scheduler state, last run, latest health result and non-secret configuration.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /status [get]
func (h *HealthHandler) Status(c echo.Context) error {
	st := h.scheduler.GetStatus()

	return c.JSON(http.StatusOK, StatusResponse{
		Status:         schedulerState(st.Running),
		CampaignActive: h.runs.IsRunning(),
		ScheduleConfig: h.scheduler.GetSchedule(),
		Scheduler:      st,
		LastExecution:  h.runs.LastRun(),
		LastHealth:     h.health.Status(),
		Configuration:  h.runs.Configuration(),
	})
}

// Monitor godoc
// @Summary Manual health check
// @Description Runs the self-check battery and emails the alert address if any issue is found.
// @Tags health
// @Produce json
// @Param x-mailer-auth-key header string true "Trigger API key"
// @Success 200 {object} MonitorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /monitor [post]
func (h *HealthHandler) Monitor(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())
	ctx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	status := h.health.Check(ctx, true)

	overall := "healthy"
	if !status.Healthy() {
		overall = "issues_found"
	}

	return c.JSON(http.StatusOK, MonitorResponse{
		Status: overall,
		Issues: status.Issues,
		Checks: status.Checks,
	})
}

// CheckSender godoc
// @Summary Verify the sender address
// @Tags health
// @Produce json
// @Success 200 {object} domain.SenderCheck
// @Failure 500 {object} response.ErrorResponse
// @Router /check-sender [get]
func (h *HealthHandler) CheckSender(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	result, err := h.health.VerifySender(ctx)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
