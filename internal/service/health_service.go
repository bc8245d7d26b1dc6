package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/osteele/liquid"

	"github.com/onurcolak/daily-campaign-mailer/environments"
	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/internal/render"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
	"github.com/onurcolak/daily-campaign-mailer/pkg/metrics"
)

const (
	CheckConfiguration = "configuration"
	CheckSender        = "sender"
	CheckLastRun       = "last_run"
	CheckRecipients    = "recipients"

	alertSubject = "Daily campaign mailer: health check issues"
)

const alertTemplate = `<h2>Daily campaign mailer health check</h2>
<p>Checked at {{ checked_at | escape }}. {{ issues | size }} issue(s) found:</p>
<ul>
{% for issue in issues %}  <li>{{ issue | escape }}</li>
{% endfor %}</ul>
<h3>Context</h3>
<ul>
  <li>Daily schedule: {{ schedule | escape }}</li>
  <li>Last run status: {{ last_status | escape }}</li>
  <li>Last run at: {{ last_run_at | escape }}</li>
  <li>Last run message: {{ last_message | escape }}</li>
</ul>`

type senderDirectory interface {
	VerifiedSenders(ctx context.Context) ([]domain.VerifiedSender, error)
	SendEmail(ctx context.Context, email domain.Email) (int, error)
}

type runSource interface {
	LastRun() domain.RunRecord
	FetchRecipients(ctx context.Context) ([]domain.Recipient, error)
}

type scheduleSource interface {
	GetSchedule() domain.ScheduleConfig
}

// HealthService runs the self-check battery and alerts the operator when
// anything is wrong.
type HealthService struct {
	provider senderDirectory
	runs     runSource
	schedule scheduleSource

	sender    environments.SendGridConfig
	campaign  environments.CampaignConfig
	config    environments.HealthConfig
	startedAt time.Time
	now       func() time.Time

	alert *liquid.Template

	mu     sync.RWMutex
	status domain.HealthStatus
}

func NewHealthService(
	provider senderDirectory,
	runs runSource,
	sender environments.SendGridConfig,
	campaign environments.CampaignConfig,
	config environments.HealthConfig,
) (*HealthService, error) {
	tpl, err := liquid.NewEngine().ParseString(alertTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse alert template: %w", err)
	}

	return &HealthService{
		provider:  provider,
		runs:      runs,
		sender:    sender,
		campaign:  campaign,
		config:    config,
		startedAt: time.Now(),
		now:       time.Now,
		alert:     tpl,
		status:    domain.HealthStatus{Issues: []string{}, Checks: map[string]string{}},
	}, nil
}

// SetScheduleSource provides the schedule shown in alert emails. The
// scheduler owns the schedule and is built after this service.
func (s *HealthService) SetScheduleSource(src scheduleSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = src
}

// Status returns the result of the latest check.
func (s *HealthService) Status() domain.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStatus(s.status)
}

// Check runs every check, records the snapshot, and, when notify is set,
// emails the configured alert address if any issue was found. A failed
// alert is logged and never changes the returned status.
func (s *HealthService) Check(ctx context.Context, notify bool) domain.HealthStatus {
	checks := make(map[string]string, 4)
	issues := []string{}

	record := func(name string, found []string) {
		if len(found) == 0 {
			checks[name] = domain.CheckOK
			return
		}
		checks[name] = domain.CheckFailing
		issues = append(issues, found...)
	}

	record(CheckConfiguration, s.checkConfiguration())
	record(CheckSender, s.checkSender(ctx))
	record(CheckLastRun, s.checkLastRun())
	record(CheckRecipients, s.checkRecipients(ctx))

	checkedAt := s.now()

	s.mu.Lock()
	s.status.LastCheckAt = &checkedAt
	s.status.Issues = issues
	s.status.Checks = checks
	for _, v := range checks {
		if v == domain.CheckOK {
			s.status.Passed++
		} else {
			s.status.Failed++
		}
	}
	snapshot := copyStatus(s.status)
	s.mu.Unlock()

	metrics.HealthIssues.Set(float64(len(issues)))

	if len(issues) == 0 {
		logger.Debugf("Health check passed")
		return snapshot
	}

	logger.Warnf("Health check found %d issue(s): %s", len(issues), strings.Join(issues, "; "))

	if notify {
		s.notify(ctx, snapshot)
	}

	return snapshot
}

func copyStatus(st domain.HealthStatus) domain.HealthStatus {
	out := st
	out.Issues = append([]string{}, st.Issues...)
	out.Checks = make(map[string]string, len(st.Checks))
	for k, v := range st.Checks {
		out.Checks[k] = v
	}
	return out
}

func (s *HealthService) checkConfiguration() []string {
	var issues []string
	if s.sender.APIKey == "" {
		issues = append(issues, "SendGrid API key is not configured")
	}
	if s.sender.SenderEmail == "" {
		issues = append(issues, "Sender email is not configured")
	}
	if !render.TemplateExists(s.campaign.TemplatePath) {
		issues = append(issues, fmt.Sprintf("Email template not found at %s", s.campaign.TemplatePath))
	}
	return issues
}

func (s *HealthService) checkSender(ctx context.Context) []string {
	if s.sender.APIKey == "" || s.sender.SenderEmail == "" {
		return []string{"Sender verification skipped: SendGrid is not configured"}
	}

	result, err := s.VerifySender(ctx)
	if err != nil {
		return []string{fmt.Sprintf("Sender verification failed: %v", err)}
	}
	if !result.IsVerified {
		return []string{fmt.Sprintf("Sender %s is not verified with SendGrid", s.sender.SenderEmail)}
	}
	return nil
}

func (s *HealthService) checkLastRun() []string {
	staleAfter := s.config.StaleAfter
	if staleAfter <= 0 {
		return nil
	}

	last := s.runs.LastRun()

	reference := s.startedAt
	since := "process start"
	if last.LastSuccessAt != nil {
		reference = *last.LastSuccessAt
		since = "last success at " + reference.Format(time.RFC3339)
	}

	if age := s.now().Sub(reference); age > staleAfter {
		return []string{fmt.Sprintf(
			"No successful campaign run in the last %s (%s)", staleAfter, since,
		)}
	}
	return nil
}

func (s *HealthService) checkRecipients(ctx context.Context) []string {
	if s.sender.APIKey == "" {
		return []string{"Recipient check skipped: SendGrid is not configured"}
	}

	recipients, err := s.runs.FetchRecipients(ctx)
	if err != nil {
		return []string{fmt.Sprintf("Failed to fetch contacts: %v", err)}
	}
	if len(recipients) == 0 {
		return []string{"Contact list is empty"}
	}
	return nil
}

// VerifySender looks the configured sender address up among the provider's
// verified senders.
func (s *HealthService) VerifySender(ctx context.Context) (domain.SenderCheck, error) {
	senders, err := s.provider.VerifiedSenders(ctx)
	if err != nil {
		return domain.SenderCheck{}, err
	}

	for i := range senders {
		if strings.EqualFold(senders[i].FromEmail, s.sender.SenderEmail) {
			info := senders[i]
			return domain.SenderCheck{IsVerified: info.Verified.Verified, SenderInfo: &info}, nil
		}
	}

	return domain.SenderCheck{IsVerified: false}, nil
}

func (s *HealthService) notify(ctx context.Context, status domain.HealthStatus) {
	if s.config.AlertEmail == "" {
		logger.Warnf("Health issues found but ALERT_EMAIL is not configured; skipping alert")
		return
	}
	if s.sender.APIKey == "" || s.sender.SenderEmail == "" {
		logger.Warnf("Health issues found but SendGrid is not configured; cannot send alert")
		metrics.AlertsTotal.WithLabelValues("skipped").Inc()
		return
	}

	body, err := s.renderAlert(status)
	if err != nil {
		logger.Errorf("Failed to render alert email: %v", err)
		metrics.AlertsTotal.WithLabelValues("failed").Inc()
		return
	}

	sendCtx := ctx
	if s.campaign.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.campaign.SendTimeout)
		defer cancel()
	}

	_, err = s.provider.SendEmail(sendCtx, domain.Email{
		ToEmail:   s.config.AlertEmail,
		FromEmail: s.sender.SenderEmail,
		FromName:  s.sender.SenderName,
		Subject:   alertSubject,
		HTML:      body,
	})
	if err != nil {
		logger.Errorf("Failed to send health alert to %s: %v", logger.RedactEmail(s.config.AlertEmail), err)
		metrics.AlertsTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.AlertsTotal.WithLabelValues("sent").Inc()
	logger.Infof("Health alert sent to %s", logger.RedactEmail(s.config.AlertEmail))
}

func (s *HealthService) renderAlert(status domain.HealthStatus) (string, error) {
	last := s.runs.LastRun()

	lastRunAt := "never"
	if last.Timestamp != nil {
		lastRunAt = last.Timestamp.In(s.campaign.Location()).Format(time.RFC1123)
	}

	schedule := "unknown"
	s.mu.RLock()
	src := s.schedule
	s.mu.RUnlock()
	if src != nil {
		schedule = src.GetSchedule().String() + " " + s.campaign.Location().String()
	}

	checkedAt := ""
	if status.LastCheckAt != nil {
		checkedAt = status.LastCheckAt.In(s.campaign.Location()).Format(time.RFC1123)
	}

	out, err := s.alert.RenderString(liquid.Bindings{
		"checked_at":   checkedAt,
		"issues":       status.Issues,
		"schedule":     schedule,
		"last_status":  string(last.Status),
		"last_run_at":  lastRunAt,
		"last_message": last.Message,
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
