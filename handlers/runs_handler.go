package handlers

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/pkg/response"
)

type deliveryReader interface {
	ListRuns(ctx context.Context, page, pageSize int) ([]domain.RunRecord, int64, error)
	GetAttempts(ctx context.Context, runID string) ([]domain.SendOutcome, error)
}

// RunsHandler serves the delivery log. log is nil when the log is disabled.
type RunsHandler struct {
	log deliveryReader
}

func NewRunsHandler(log deliveryReader) *RunsHandler {
	return &RunsHandler{log: log}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parsePagination(c echo.Context) (page, pageSize int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err = strconv.Atoi(c.QueryParam("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize
}

// ListRuns godoc
// @Summary List campaign runs
// @Description Paginated runs from the delivery log, newest first.
// @Tags runs
// @Produce json
// @Param x-mailer-auth-key header string true "Trigger API key"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} response.PaginatedResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/runs [get]
func (h *RunsHandler) ListRuns(c echo.Context) error {
	if h.log == nil {
		return response.ServiceUnavailable(c, "Delivery log is not enabled")
	}

	page, pageSize := parsePagination(c)

	runs, total, err := h.log.ListRuns(c.Request().Context(), page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}

	return response.Paginated(c, runs, page, pageSize, total)
}

// GetDeliveries godoc
// @Summary Per-recipient outcomes of a run
// @Tags runs
// @Produce json
// @Param x-mailer-auth-key header string true "Trigger API key"
// @Param id path string true "Run ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/runs/{id}/deliveries [get]
func (h *RunsHandler) GetDeliveries(c echo.Context) error {
	if h.log == nil {
		return response.ServiceUnavailable(c, "Delivery log is not enabled")
	}

	runID := c.Param("id")
	if runID == "" {
		return response.BadRequestWithMessage(c, "run id is required")
	}

	outcomes, err := h.log.GetAttempts(c.Request().Context(), runID)
	if err != nil {
		return response.InternalServerError(c, err)
	}
	if len(outcomes) == 0 {
		return response.NotFound(c, "No deliveries recorded for run "+runID)
	}

	return response.Ok(c, outcomes)
}
