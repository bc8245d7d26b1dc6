package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/daily-campaign-mailer/environments"
	"github.com/onurcolak/daily-campaign-mailer/handlers"
	"github.com/onurcolak/daily-campaign-mailer/internal/middlewares"
	"github.com/onurcolak/daily-campaign-mailer/pkg/metrics"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	scheduleHandler *handlers.ScheduleHandler,
	campaignHandler *handlers.CampaignHandler,
	runsHandler *handlers.RunsHandler,
	cfg *environments.Config,
) {
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Health)
	e.GET("/status", healthHandler.Status)
	e.GET("/check-sender", healthHandler.CheckSender)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Schedule control
	e.GET("/get-schedule", scheduleHandler.GetSchedule)
	e.POST("/update-schedule", scheduleHandler.UpdateSchedule)

	// Manual campaign triggers
	e.Match([]string{http.MethodGet, http.MethodPost}, "/send-emails", campaignHandler.SendEmails)
	e.POST("/send-custom-emails", campaignHandler.SendCustomEmails)
	e.GET("/daily-template", campaignHandler.DailyTemplate)

	// Operator endpoints share the trigger key
	guard := middlewares.APIKeyAuth(cfg.Auth.TriggerAPIKey)

	e.POST("/monitor", healthHandler.Monitor, guard)
	e.POST("/trigger-test", campaignHandler.TriggerTest, guard)

	v1 := e.Group("/api/v1", guard)

	v1.GET("/runs", runsHandler.ListRuns)
	v1.GET("/runs/:id/deliveries", runsHandler.GetDeliveries)
}
