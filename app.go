package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/daily-campaign-mailer/environments"
	"github.com/onurcolak/daily-campaign-mailer/internal/repository"
	"github.com/onurcolak/daily-campaign-mailer/internal/scheduler"
	"github.com/onurcolak/daily-campaign-mailer/internal/service"
	"github.com/onurcolak/daily-campaign-mailer/pkg/database"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
	"github.com/onurcolak/daily-campaign-mailer/pkg/redis"
	"github.com/onurcolak/daily-campaign-mailer/pkg/sendgrid"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg *environments.Config

	sendgrid  *sendgrid.Client
	campaigns *service.CampaignService
	health    *service.HealthService
	scheduler *scheduler.Scheduler

	// Optional backing stores; nil when disabled or unreachable.
	db         *sqlx.DB
	deliveries *repository.DeliveryRepository
	redis      *redis.Client
}

func newApp(ctx context.Context, cfg *environments.Config) (*app, error) {
	a := &app{cfg: cfg}

	a.sendgrid = sendgrid.NewClient(cfg.SendGrid, cfg.Campaign.AcceptedStatus)
	logger.Infof("SendGrid configured: %s", a.sendgrid.GetBaseURL())

	a.campaigns = service.NewCampaignService(a.sendgrid, cfg.SendGrid, cfg.Campaign)

	if cfg.Redis.Enabled {
		client, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Warnf("Redis not available, run lock and cache disabled: %v", err)
		} else {
			a.redis = client
			a.campaigns.UseRunCache(client)
			a.campaigns.RestoreLastRun(ctx)
		}
	}

	if cfg.Database.Enabled {
		db, err := database.NewMySQLDB(cfg.Database)
		if err != nil {
			logger.Warnf("MySQL not available, delivery log disabled: %v", err)
		} else if err := database.RunMigrations(db); err != nil {
			_ = db.Close()
			logger.Warnf("Delivery log migrations failed, delivery log disabled: %v", err)
		} else {
			a.db = db
			a.deliveries = repository.NewDeliveryRepository(db)
			a.campaigns.UseDeliveryLog(a.deliveries)
		}
	}

	health, err := service.NewHealthService(a.sendgrid, a.campaigns, cfg.SendGrid, cfg.Campaign, cfg.Health)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize health service: %w", err)
	}
	a.health = health

	a.scheduler = scheduler.NewScheduler(
		a.campaigns,
		a.health,
		repository.NewScheduleFileRepository(cfg.Schedule.FilePath),
		scheduler.Options{
			Location:       cfg.Campaign.Location(),
			DefaultHour:    cfg.Schedule.DefaultHour,
			DefaultMinute:  cfg.Schedule.DefaultMinute,
			HealthInterval: cfg.Health.CheckInterval,
			SubjectPrefix:  cfg.Campaign.SubjectPrefix,
		},
	)
	a.health.SetScheduleSource(a.scheduler)

	return a, nil
}

// Close releases the optional backing stores.
func (a *app) Close() {
	if a.db != nil {
		logger.Infof("Closing database connection...")
		if err := a.db.Close(); err != nil {
			logger.Errorf("Error closing database: %v", err)
		}
	}

	if a.redis != nil {
		logger.Infof("Closing Redis connection...")
		if err := a.redis.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}
}
