package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
)

const (
	DailyJobKey      = "daily_job"
	HealthMonitorKey = "health_monitor"
)

// campaignRunner is the part of CampaignService the scheduler needs. It lets
// us unit test the scheduler with a small fake implementation.
type campaignRunner interface {
	Run(ctx context.Context, subjectPrefix string, trigger domain.Trigger) (domain.CampaignResult, error)
}

type healthChecker interface {
	Check(ctx context.Context, notify bool) domain.HealthStatus
}

type scheduleStore interface {
	Load() (*domain.ScheduleConfig, error)
	Save(cfg domain.ScheduleConfig) error
}

type Options struct {
	Location       *time.Location
	DefaultHour    int
	DefaultMinute  int
	HealthInterval time.Duration
	SubjectPrefix  string
}

// Scheduler owns the daily campaign trigger and the periodic health monitor.
// Both are cron entries in a fixed reference zone; each key has at most one
// registered entry.
type Scheduler struct {
	runner campaignRunner
	health healthChecker
	store  scheduleStore
	opts   Options
	now    func() time.Time

	// regMu guards cron registration and the active schedule.
	regMu   sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID
	config  domain.ScheduleConfig
	loaded  bool

	// jobMu serializes scheduled callbacks.
	jobMu sync.Mutex

	mu      sync.RWMutex
	running bool
	jobCtx  context.Context
	cancel  context.CancelFunc

	// Statistics
	lastFireAt     time.Time
	fireCount      int64
	lastRunStatus  string
	monitorCount   int64
	lastMonitorAt  time.Time
	reconfigureCnt int64
}

func NewScheduler(runner campaignRunner, health healthChecker, store scheduleStore, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Scheduler{
		runner:  runner,
		health:  health,
		store:   store,
		opts:    opts,
		now:     time.Now,
		entries: make(map[string]cron.EntryID, 2),
	}
}

// Load reads the persisted schedule. When none exists the default is used and
// written back immediately; if that write fails the default still applies in
// memory. An unreadable file falls back to the default without overwriting it.
func (s *Scheduler) Load() (domain.ScheduleConfig, error) {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	return s.loadLocked()
}

func (s *Scheduler) loadLocked() (domain.ScheduleConfig, error) {
	cfg, err := s.store.Load()
	switch {
	case err == nil:
		s.config = *cfg
		logger.Infof("Loaded schedule %s from store", s.config)

	case errors.Is(err, domain.ErrScheduleNotFound):
		s.config = s.defaultSchedule()
		if err := s.store.Save(s.config); err != nil {
			logger.Errorf("No saved schedule, using default %s in memory; failed to persist it: %v", s.config, err)
			break
		}
		logger.Infof("No saved schedule, using default %s", s.config)

	default:
		s.config = s.defaultSchedule()
		logger.Errorf("Failed to load schedule, using default %s: %v", s.config, err)
	}

	s.loaded = true
	return s.config, nil
}

func (s *Scheduler) defaultSchedule() domain.ScheduleConfig {
	cfg := domain.ScheduleConfig{
		Hour:        s.opts.DefaultHour,
		Minute:      s.opts.DefaultMinute,
		LastUpdated: s.now(),
		UpdatedBy:   "default",
	}
	if cfg.Validate() != nil {
		cfg.Hour, cfg.Minute = 10, 0
	}
	return cfg
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is already running")
		return nil
	}
	s.jobCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Unlock()

	s.regMu.Lock()
	defer s.regMu.Unlock()

	if !s.loaded {
		if _, err := s.loadLocked(); err != nil {
			return err
		}
	}

	c := cron.New(
		cron.WithLocation(s.opts.Location),
		cron.WithLogger(logger.Cron()),
		cron.WithChain(cron.Recover(logger.Cron())),
	)

	dailyID, err := c.AddFunc(s.config.CronSpec(), s.fireDaily)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", DailyJobKey, err)
	}
	s.entries = map[string]cron.EntryID{DailyJobKey: dailyID}

	if s.opts.HealthInterval > 0 && s.health != nil {
		monitorID, err := c.AddFunc(fmt.Sprintf("@every %s", s.opts.HealthInterval), s.fireMonitor)
		if err != nil {
			return fmt.Errorf("failed to register %s: %w", HealthMonitorKey, err)
		}
		s.entries[HealthMonitorKey] = monitorID
	}

	s.cron = c
	c.Start()

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	logger.Infof("Scheduler started: daily campaign at %s %s, health check every %s",
		s.config, s.opts.Location, s.opts.HealthInterval)

	return nil
}

// Stop stops both entries and waits for in-flight jobs. If ctx expires first
// the jobs' context is cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is not running")
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	s.regMu.Lock()
	c := s.cron
	s.regMu.Unlock()

	done := c.Stop()
	defer cancel()

	select {
	case <-done.Done():
		logger.Infof("Scheduler stopped")
		return nil
	case <-ctx.Done():
		cancel()
		<-done.Done()
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) GetSchedule() domain.ScheduleConfig {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	return s.config
}

// Reconfigure validates, persists, and activates a new daily trigger time.
// On validation failure nothing changes. A run already in flight is not
// affected.
func (s *Scheduler) Reconfigure(hour, minute int, actor string) (oldCfg, newCfg domain.ScheduleConfig, err error) {
	next := domain.ScheduleConfig{Hour: hour, Minute: minute, LastUpdated: s.now(), UpdatedBy: actor}

	s.regMu.Lock()
	defer s.regMu.Unlock()

	oldCfg = s.config
	if err := next.Validate(); err != nil {
		return oldCfg, oldCfg, err
	}

	if err := s.store.Save(next); err != nil {
		return oldCfg, oldCfg, fmt.Errorf("failed to persist schedule: %w", err)
	}
	s.config = next
	s.loaded = true

	if s.cron != nil {
		newID, err := s.cron.AddFunc(next.CronSpec(), s.fireDaily)
		if err != nil {
			return oldCfg, next, fmt.Errorf("failed to register %s: %w", DailyJobKey, err)
		}
		if oldID, ok := s.entries[DailyJobKey]; ok {
			s.cron.Remove(oldID)
		}
		s.entries[DailyJobKey] = newID
	}

	s.mu.Lock()
	s.reconfigureCnt++
	s.mu.Unlock()

	logger.Infof("Schedule updated by %s: %s -> %s", actor, oldCfg, next)

	return oldCfg, next, nil
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.jobCtx == nil {
		return context.Background()
	}
	return s.jobCtx
}

func (s *Scheduler) fireDaily() {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	s.mu.Lock()
	s.lastFireAt = s.now()
	s.fireCount++
	fireNumber := s.fireCount
	s.mu.Unlock()

	logger.Infof("[Fire #%d] Daily campaign triggered", fireNumber)

	result, err := s.runner.Run(s.jobContext(), s.opts.SubjectPrefix, domain.TriggerScheduled)

	status := "success"
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		status = "skipped"
		logger.Warnf("[Fire #%d] Skipped: a run is already in progress", fireNumber)
	case err != nil:
		status = "error"
		logger.Errorf("[Fire #%d] Campaign failed: %v", fireNumber, err)
	case !result.Success:
		status = "failed"
		logger.Warnf("[Fire #%d] %s", fireNumber, result.Message)
	default:
		logger.Infof("[Fire #%d] %s", fireNumber, result.Message)
	}

	s.mu.Lock()
	s.lastRunStatus = status
	s.mu.Unlock()
}

func (s *Scheduler) fireMonitor() {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	s.mu.Lock()
	s.lastMonitorAt = s.now()
	s.monitorCount++
	s.mu.Unlock()

	status := s.health.Check(s.jobContext(), true)
	logger.Debugf("Health monitor: %d issue(s)", len(status.Issues))
}

type SchedulerStatus struct {
	Running            bool                  `json:"running"`
	Schedule           domain.ScheduleConfig `json:"schedule"`
	Timezone           string                `json:"timezone"`
	NextRunAt          *time.Time            `json:"next_run,omitempty"`
	LastFireAt         *time.Time            `json:"last_fire,omitempty"`
	FireCount          int64                 `json:"fire_count"`
	LastRunStatus      string                `json:"last_run_status,omitempty"`
	HealthInterval     string                `json:"health_check_interval"`
	NextHealthCheckAt  *time.Time            `json:"next_health_check,omitempty"`
	LastHealthCheckAt  *time.Time            `json:"last_health_check,omitempty"`
	HealthChecksRun    int64                 `json:"health_checks_run"`
	ReconfigureCount   int64                 `json:"reconfigure_count"`
	RegisteredJobCount int                   `json:"registered_jobs"`
}

func (s *Scheduler) GetStatus() SchedulerStatus {
	s.regMu.Lock()
	status := SchedulerStatus{
		Schedule:       s.config,
		Timezone:       s.opts.Location.String(),
		HealthInterval: s.opts.HealthInterval.String(),
	}
	if s.cron != nil {
		status.RegisteredJobCount = len(s.cron.Entries())
		status.NextRunAt = s.nextFor(DailyJobKey)
		status.NextHealthCheckAt = s.nextFor(HealthMonitorKey)
	}
	s.regMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	status.Running = s.running
	status.FireCount = s.fireCount
	status.LastRunStatus = s.lastRunStatus
	status.HealthChecksRun = s.monitorCount
	status.ReconfigureCount = s.reconfigureCnt
	if !s.lastFireAt.IsZero() {
		t := s.lastFireAt
		status.LastFireAt = &t
	}
	if !s.lastMonitorAt.IsZero() {
		t := s.lastMonitorAt
		status.LastHealthCheckAt = &t
	}
	if !s.running {
		status.NextRunAt = nil
		status.NextHealthCheckAt = nil
	}

	return status
}

func (s *Scheduler) nextFor(key string) *time.Time {
	id, ok := s.entries[key]
	if !ok {
		return nil
	}
	next := s.cron.Entry(id).Next
	if next.IsZero() {
		return nil
	}
	return &next
}
