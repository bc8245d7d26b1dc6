package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/pkg/response"
	"github.com/onurcolak/daily-campaign-mailer/pkg/validator"
)

type campaignRunner interface {
	Run(ctx context.Context, subjectPrefix string, trigger domain.Trigger) (domain.CampaignResult, error)
	Preview(name string) (string, error)
}

// CampaignHandler exposes manual campaign triggers and the template preview.
type CampaignHandler struct {
	campaigns         campaignRunner
	testSubjectPrefix string
}

type SendCampaignRequest struct {
	Subject string `json:"subject,omitempty" query:"subject" validate:"omitempty,notblank,max=200"`
}

func NewCampaignHandler(campaigns campaignRunner, testSubjectPrefix string) *CampaignHandler {
	return &CampaignHandler{
		campaigns:         campaigns,
		testSubjectPrefix: testSubjectPrefix,
	}
}

// SendEmails godoc
// @Summary Run the daily campaign now
// @Description Fetches contacts and sends the rendered template to each of them. An optional subject overrides the configured prefix.
// @Tags campaign
// @Accept json
// @Produce json
// @Param request body SendCampaignRequest false "Optional subject prefix"
// @Success 200 {object} domain.CampaignResult
// @Failure 400 {object} validator.ValidationErrorResponse
// @Failure 409 {object} domain.CampaignResult
// @Failure 500 {object} domain.CampaignResult
// @Router /send-emails [post]
func (h *CampaignHandler) SendEmails(c echo.Context) error {
	return h.trigger(c, domain.TriggerManual, "")
}

// SendCustomEmails godoc
// @Summary Run the campaign with a custom subject
// @Description Same as /send-emails; the subject from the body is used as the subject prefix.
// @Tags campaign
// @Accept json
// @Produce json
// @Param request body SendCampaignRequest false "Subject prefix"
// @Success 200 {object} domain.CampaignResult
// @Failure 400 {object} validator.ValidationErrorResponse
// @Failure 409 {object} domain.CampaignResult
// @Failure 500 {object} domain.CampaignResult
// @Router /send-custom-emails [post]
func (h *CampaignHandler) SendCustomEmails(c echo.Context) error {
	return h.trigger(c, domain.TriggerManual, "")
}

// TriggerTest godoc
// @Summary Guarded test run
// @Description Runs the campaign with the test subject prefix. Requires the trigger key.
// @Tags campaign
// @Produce json
// @Param x-mailer-auth-key header string true "Trigger API key"
// @Success 200 {object} domain.CampaignResult
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} domain.CampaignResult
// @Failure 500 {object} domain.CampaignResult
// @Router /trigger-test [post]
func (h *CampaignHandler) TriggerTest(c echo.Context) error {
	return h.trigger(c, domain.TriggerTest, h.testSubjectPrefix)
}

func (h *CampaignHandler) trigger(c echo.Context, trigger domain.Trigger, defaultPrefix string) error {
	var req SendCampaignRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	prefix := req.Subject
	if prefix == "" {
		prefix = defaultPrefix
	}

	// The run outlives a disconnected client; only the runner's own budget
	// bounds it.
	ctx := context.WithoutCancel(c.Request().Context())

	result, err := h.campaigns.Run(ctx, prefix, trigger)

	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		return c.JSON(http.StatusConflict, result)
	case err != nil:
		return c.JSON(http.StatusInternalServerError, result)
	case !result.Success:
		return c.JSON(http.StatusInternalServerError, result)
	default:
		return c.JSON(http.StatusOK, result)
	}
}

// DailyTemplate godoc
// @Summary Preview today's email
// @Description Renders the template for today's date in the reference time zone.
// @Tags campaign
// @Produce html
// @Param name query string false "Display name substituted into the template"
// @Success 200 {string} string "rendered HTML"
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /daily-template [get]
func (h *CampaignHandler) DailyTemplate(c echo.Context) error {
	html, err := h.campaigns.Preview(c.QueryParam("name"))
	if err != nil {
		if errors.Is(err, domain.ErrTemplateMissing) {
			return response.NotFound(c, err.Error())
		}
		return response.InternalServerError(c, err)
	}

	return c.HTML(http.StatusOK, html)
}
