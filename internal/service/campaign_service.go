package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/onurcolak/daily-campaign-mailer/environments"
	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/internal/render"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
	"github.com/onurcolak/daily-campaign-mailer/pkg/metrics"
	"github.com/onurcolak/daily-campaign-mailer/pkg/sendgrid"
)

// Small internal interfaces so we can test without touching the real provider,
// Redis or MySQL.
type contactSource interface {
	ListContacts(ctx context.Context) ([]domain.Recipient, error)
	SearchContacts(ctx context.Context, query string) ([]domain.Recipient, error)
}

type mailSender interface {
	SendEmail(ctx context.Context, email domain.Email) (int, error)
}

type campaignProvider interface {
	contactSource
	mailSender
}

type runCache interface {
	AcquireRunLock(ctx context.Context, token string, ttl time.Duration) (bool, error)
	ReleaseRunLock(ctx context.Context, token string) error
	CacheRunRecord(ctx context.Context, rec domain.RunRecord) error
	GetCachedRunRecord(ctx context.Context) (*domain.RunRecord, error)
}

type deliveryLog interface {
	SaveRun(ctx context.Context, rec domain.RunRecord, outcomes []domain.SendOutcome) error
}

const (
	noContactsMessage    = "No contacts found; nothing to send."
	runInProgressMessage = "Campaign run already in progress"
	persistTimeout       = 5 * time.Second
)

// CampaignService runs the daily campaign: fetch recipients, render the
// template once, send one personalised email per recipient, record the outcome.
type CampaignService struct {
	provider campaignProvider
	sender   environments.SendGridConfig
	config   environments.CampaignConfig
	loc      *time.Location
	now      func() time.Time

	cache       runCache
	deliveryLog deliveryLog

	inFlight atomic.Bool

	mu     sync.RWMutex
	record domain.RunRecord
}

func NewCampaignService(
	provider campaignProvider,
	sender environments.SendGridConfig,
	config environments.CampaignConfig,
) *CampaignService {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.DefaultName == "" {
		config.DefaultName = domain.DefaultRecipientName
	}

	return &CampaignService{
		provider: provider,
		sender:   sender,
		config:   config,
		loc:      config.Location(),
		now:      time.Now,
		record:   domain.RunRecord{Status: domain.RunNotStarted, Message: "No campaign has run yet"},
	}
}

// UseRunCache enables the cross-process run lock and last-run cache.
func (s *CampaignService) UseRunCache(cache runCache) {
	s.cache = cache
}

// UseDeliveryLog enables the persistent audit of runs and outcomes.
func (s *CampaignService) UseDeliveryLog(log deliveryLog) {
	s.deliveryLog = log
}

// RestoreLastRun seeds the in-memory RunRecord from the cache so status
// survives a restart.
func (s *CampaignService) RestoreLastRun(ctx context.Context) {
	if s.cache == nil {
		return
	}

	rec, err := s.cache.GetCachedRunRecord(ctx)
	if err != nil {
		logger.Warnf("Failed to restore last run from cache: %v", err)
		return
	}
	if rec == nil {
		return
	}

	s.mu.Lock()
	if s.record.Status == domain.RunNotStarted {
		s.record = *rec
	}
	s.mu.Unlock()

	logger.Infof("Restored last run %s (%s) from cache", rec.RunID, rec.Status)
}

// LastRun returns a snapshot of the most recent run.
func (s *CampaignService) LastRun() domain.RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

func (s *CampaignService) IsRunning() bool {
	return s.inFlight.Load()
}

// Run executes one campaign. At most one run is in flight at a time; a
// concurrent caller gets domain.ErrRunInProgress without side effects.
//
// The returned error is non-nil only for fatal outcomes (configuration,
// fetch, run-in-progress). Per-recipient failures are reported through the
// result.
func (s *CampaignService) Run(ctx context.Context, subjectPrefix string, trigger domain.Trigger) (domain.CampaignResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return s.rejectBusy(trigger)
	}
	defer s.inFlight.Store(false)

	runID := uuid.NewString()

	if s.cache != nil {
		acquired, err := s.cache.AcquireRunLock(ctx, runID, s.lockTTL())
		switch {
		case err != nil:
			logger.Warnf("Run lock unavailable, continuing with local guard only: %v", err)
		case !acquired:
			return s.rejectBusy(trigger)
		default:
			defer func() {
				releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
				defer cancel()
				if err := s.cache.ReleaseRunLock(releaseCtx, runID); err != nil {
					logger.Warnf("Failed to release run lock: %v", err)
				}
			}()
		}
	}

	if subjectPrefix == "" {
		subjectPrefix = s.config.SubjectPrefix
	}

	startedAt := s.now()
	s.markRunning(runID, trigger, startedAt)
	logger.Infof("[Run %s] Starting campaign (trigger: %s)", runID, trigger)

	runCtx := ctx
	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	result, err := s.execute(runCtx, subjectPrefix)
	result.RunID = runID

	s.finish(ctx, runID, trigger, startedAt, result, err)

	return result, err
}

func (s *CampaignService) rejectBusy(trigger domain.Trigger) (domain.CampaignResult, error) {
	metrics.RunsRejectedTotal.Inc()
	logger.Warnf("Campaign trigger (%s) rejected: a run is already in progress", trigger)
	return domain.CampaignResult{Success: false, Message: runInProgressMessage}, domain.ErrRunInProgress
}

func (s *CampaignService) lockTTL() time.Duration {
	if s.config.RunTimeout > 0 {
		return s.config.RunTimeout + time.Minute
	}
	return time.Hour
}

func (s *CampaignService) execute(ctx context.Context, subjectPrefix string) (domain.CampaignResult, error) {
	if err := s.checkConfiguration(); err != nil {
		return domain.CampaignResult{Message: err.Error()}, err
	}

	recipients, err := s.FetchRecipients(ctx)
	if err != nil {
		return domain.CampaignResult{Message: err.Error()}, err
	}

	if len(recipients) == 0 {
		logger.Infof("No contacts returned by provider; nothing to send")
		return domain.CampaignResult{Success: true, Message: noContactsMessage}, nil
	}

	tpl, err := render.LoadTemplate(s.config.TemplatePath)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		return domain.CampaignResult{Message: err.Error(), Total: len(recipients)}, err
	}

	campaign := s.buildCampaign(tpl, subjectPrefix, recipients)
	logger.Infof("Sending %q to %d contacts", campaign.Subject, len(recipients))

	outcomes := s.dispatch(ctx, campaign)

	return summarize(outcomes), nil
}

func (s *CampaignService) checkConfiguration() error {
	var missing []string
	if s.sender.APIKey == "" {
		missing = append(missing, "SENDGRID_API_KEY")
	}
	if s.sender.SenderEmail == "" {
		missing = append(missing, "SENDER_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// FetchRecipients lists contacts, falling back to an unfiltered search when
// the list request fails.
func (s *CampaignService) FetchRecipients(ctx context.Context) ([]domain.Recipient, error) {
	recipients, listErr := s.provider.ListContacts(ctx)
	if listErr == nil {
		return recipients, nil
	}

	logger.Warnf("Contact list request failed, falling back to search: %v", listErr)

	recipients, searchErr := s.provider.SearchContacts(ctx, "")
	if searchErr == nil {
		return recipients, nil
	}

	logger.Errorf("Contact search request failed: %v", searchErr)

	return nil, &domain.FetchError{
		ListErr:   listErr,
		SearchErr: searchErr,
		Raw:       providerBody(searchErr, listErr),
	}
}

func providerBody(errs ...error) string {
	for _, err := range errs {
		var apiErr *sendgrid.APIError
		if errors.As(err, &apiErr) && apiErr.Body != "" {
			return apiErr.Body
		}
	}
	return ""
}

func (s *CampaignService) buildCampaign(tpl, subjectPrefix string, recipients []domain.Recipient) domain.Campaign {
	shared := render.RenderShared(tpl, s.now(), s.loc)

	return domain.Campaign{
		SubjectPrefix: subjectPrefix,
		Subject:       render.Subject(subjectPrefix, shared.Date),
		Date:          shared.Date,
		Timestamp:     shared.Timestamp,
		HTML:          shared.HTML,
		Recipients:    recipients,
	}
}

// dispatch sends to every recipient on a bounded pool and waits for all of
// them. Recipients not started before ctx expires are marked not attempted.
func (s *CampaignService) dispatch(ctx context.Context, campaign domain.Campaign) []domain.SendOutcome {
	outcomes := make([]domain.SendOutcome, len(campaign.Recipients))

	var g errgroup.Group
	g.SetLimit(s.config.Concurrency)

	for i, recipient := range campaign.Recipients {
		if err := ctx.Err(); err != nil {
			outcomes[i] = notAttempted(recipient, err)
			continue
		}

		g.Go(func() error {
			outcomes[i] = s.sendOne(ctx, campaign, recipient)
			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}

func (s *CampaignService) sendOne(ctx context.Context, campaign domain.Campaign, recipient domain.Recipient) domain.SendOutcome {
	if err := ctx.Err(); err != nil {
		return notAttempted(recipient, err)
	}

	sendCtx := ctx
	if s.config.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.config.SendTimeout)
		defer cancel()
	}

	name := recipient.DisplayName(s.config.DefaultName)

	code, err := s.provider.SendEmail(sendCtx, domain.Email{
		ToEmail:   recipient.Email,
		ToName:    name,
		FromEmail: s.sender.SenderEmail,
		FromName:  s.sender.SenderName,
		Subject:   campaign.Subject,
		HTML:      render.Personalize(campaign.HTML, name),
	})
	if err != nil {
		logger.Warnf("Failed to send to %s: %v", logger.RedactEmail(recipient.Email), err)
		metrics.EmailsTotal.WithLabelValues(string(domain.OutcomeFailed)).Inc()
		return domain.SendOutcome{
			Email:      recipient.Email,
			Status:     domain.OutcomeFailed,
			StatusCode: code,
			Error:      err.Error(),
		}
	}

	metrics.EmailsTotal.WithLabelValues(string(domain.OutcomeSent)).Inc()
	return domain.SendOutcome{Email: recipient.Email, Status: domain.OutcomeSent, StatusCode: code}
}

func notAttempted(recipient domain.Recipient, cause error) domain.SendOutcome {
	metrics.EmailsTotal.WithLabelValues(string(domain.OutcomeNotAttempted)).Inc()
	return domain.SendOutcome{
		Email:  recipient.Email,
		Status: domain.OutcomeNotAttempted,
		Error:  "not attempted: " + cause.Error(),
	}
}

func summarize(outcomes []domain.SendOutcome) domain.CampaignResult {
	result := domain.CampaignResult{Total: len(outcomes), Outcomes: outcomes}

	for _, o := range outcomes {
		switch o.Status {
		case domain.OutcomeSent:
			result.SentCount++
		case domain.OutcomeFailed:
			result.Failures = append(result.Failures, o)
		case domain.OutcomeNotAttempted:
			result.NotAttempted++
		}
	}

	if len(result.Failures) == 0 && result.NotAttempted == 0 {
		result.Success = true
		result.Message = fmt.Sprintf("Emails sent to %d contacts.", result.SentCount)
		return result
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sent %d of %d emails", result.SentCount, result.Total)
	if len(result.Failures) > 0 {
		fmt.Fprintf(&b, "; %d failed: ", len(result.Failures))
		for i, f := range result.Failures {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s (%s)", f.Email, f.Error)
		}
	}
	if result.NotAttempted > 0 {
		fmt.Fprintf(&b, "; %d not attempted (run budget exceeded)", result.NotAttempted)
	}
	result.Message = b.String()

	return result
}

func (s *CampaignService) markRunning(runID string, trigger domain.Trigger, startedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastSuccess := s.record.LastSuccessAt
	s.record = domain.RunRecord{
		RunID:         runID,
		Trigger:       trigger,
		Timestamp:     &startedAt,
		StartedAt:     &startedAt,
		Status:        domain.RunRunning,
		Message:       "Campaign run in progress",
		LastSuccessAt: lastSuccess,
	}
}

func (s *CampaignService) finish(
	ctx context.Context,
	runID string,
	trigger domain.Trigger,
	startedAt time.Time,
	result domain.CampaignResult,
	runErr error,
) {
	finishedAt := s.now()

	status := domain.RunSuccess
	lastError := ""
	switch {
	case runErr != nil:
		status = domain.RunError
		lastError = runErr.Error()
	case !result.Success:
		status = domain.RunFailed
		if len(result.Failures) > 0 {
			lastError = result.Failures[0].Error
		} else {
			lastError = result.Message
		}
	}

	s.mu.Lock()
	lastSuccess := s.record.LastSuccessAt
	if status == domain.RunSuccess {
		lastSuccess = &finishedAt
	}
	s.record = domain.RunRecord{
		RunID:         runID,
		Trigger:       trigger,
		Timestamp:     &finishedAt,
		StartedAt:     &startedAt,
		FinishedAt:    &finishedAt,
		Status:        status,
		Message:       result.Message,
		SentCount:     result.SentCount,
		FailedCount:   len(result.Failures),
		LastError:     lastError,
		LastSuccessAt: lastSuccess,
	}
	rec := s.record
	s.mu.Unlock()

	metrics.CampaignRunsTotal.WithLabelValues(string(trigger), string(status)).Inc()
	metrics.CampaignRunDuration.Observe(finishedAt.Sub(startedAt).Seconds())

	if runErr != nil {
		logger.Errorf("[Run %s] Campaign failed: %v", runID, runErr)
	} else {
		logger.Infof("[Run %s] %s", runID, result.Message)
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if s.cache != nil {
		if err := s.cache.CacheRunRecord(persistCtx, rec); err != nil {
			logger.Warnf("Failed to cache run record: %v", err)
		}
	}

	if s.deliveryLog != nil {
		if err := s.deliveryLog.SaveRun(persistCtx, rec, result.Outcomes); err != nil {
			logger.Warnf("Failed to write delivery log for run %s: %v", runID, err)
		}
	}
}

// Preview renders the template for a single display name without sending.
func (s *CampaignService) Preview(name string) (string, error) {
	tpl, err := render.LoadTemplate(s.config.TemplatePath)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = s.config.DefaultName
	}

	shared := render.RenderShared(tpl, s.now(), s.loc)
	return render.Personalize(shared.HTML, name), nil
}

// ConfigurationSummary is the non-secret view of the runner's configuration.
type ConfigurationSummary struct {
	SendGridConfigured bool   `json:"sendgrid_configured"`
	SenderEmail        string `json:"sender_email"`
	SenderName         string `json:"sender_name"`
	TemplatePath       string `json:"template_path"`
	TemplateExists     bool   `json:"template_exists"`
	SubjectPrefix      string `json:"subject_prefix"`
	Timezone           string `json:"timezone"`
	Concurrency        int    `json:"concurrency"`
	RunTimeout         string `json:"run_timeout"`
}

func (s *CampaignService) Configuration() ConfigurationSummary {
	return ConfigurationSummary{
		SendGridConfigured: s.sender.APIKey != "",
		SenderEmail:        s.sender.SenderEmail,
		SenderName:         s.sender.SenderName,
		TemplatePath:       s.config.TemplatePath,
		TemplateExists:     render.TemplateExists(s.config.TemplatePath),
		SubjectPrefix:      s.config.SubjectPrefix,
		Timezone:           s.loc.String(),
		Concurrency:        s.config.Concurrency,
		RunTimeout:         s.config.RunTimeout.String(),
	}
}
