package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/onurcolak/daily-campaign-mailer/handlers"
	"github.com/onurcolak/daily-campaign-mailer/internal/middlewares"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
	"github.com/onurcolak/daily-campaign-mailer/pkg/validator"
	"github.com/onurcolak/daily-campaign-mailer/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func newEcho(a *app) *echo.Echo {
	healthHandler := handlers.NewHealthHandler(a.health, a.campaigns, a.scheduler)
	if a.redis != nil {
		healthHandler.WithComponent("redis", a.redis)
	}

	runsHandler := handlers.NewRunsHandler(nil)
	if a.deliveries != nil {
		healthHandler.WithComponent("mysql", a.deliveries)
		runsHandler = handlers.NewRunsHandler(a.deliveries)
	}

	scheduleHandler := handlers.NewScheduleHandler(a.scheduler)
	campaignHandler := handlers.NewCampaignHandler(a.campaigns, a.cfg.Campaign.TestSubjectPrefix)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middlewares.Observability())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"x-mailer-auth-key",
		},
	}))

	routes.RegisterRoutes(e, healthHandler, scheduleHandler, campaignHandler, runsHandler, a.cfg)

	return e
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("Starting daily campaign mailer...")

	if cfg.SendGrid.APIKey == "" || cfg.SendGrid.SenderEmail == "" {
		logger.Warnf("SENDGRID_API_KEY or SENDER_EMAIL is not set; campaign runs will fail until configured")
	}
	if cfg.Auth.TriggerAPIKey == "" {
		logger.Warnf("TRIGGER_API_KEY is not set; guarded endpoints will reject every request")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	e := newEcho(a)

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Errorf("Failed to start server: %v", err)
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.scheduler.Stop(stopCtx)
		return err
	}

	logger.Infof("Shutting down gracefully...")

	// Stop scheduler first (with timeout)
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	logger.Infof("Stopping scheduler...")
	if err := a.scheduler.Stop(stopCtx); err != nil {
		logger.Warnf("Scheduler stop timeout, in-flight jobs cancelled: %v", err)
	}

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	logger.Infof("Graceful shutdown completed")
	return nil
}
