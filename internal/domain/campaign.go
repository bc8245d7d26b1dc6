package domain

import "time"

const DefaultRecipientName = "Trader"

type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// DisplayName returns the recipient's name, or fallback when the provider
// returned none.
func (r Recipient) DisplayName(fallback string) string {
	if r.Name != "" {
		return r.Name
	}
	if fallback == "" {
		return DefaultRecipientName
	}
	return fallback
}

// Campaign is the shared content of one run. It is built once per run and
// personalised per recipient.
type Campaign struct {
	SubjectPrefix string
	Subject       string
	Date          string
	Timestamp     int64
	HTML          string
	Recipients    []Recipient
}

// Email is a single message handed to the provider.
type Email struct {
	ToEmail   string
	ToName    string
	FromEmail string
	FromName  string
	Subject   string
	HTML      string
}

type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerTest      Trigger = "test"
	TriggerCLI       Trigger = "cli"
)

type OutcomeStatus string

const (
	OutcomeSent         OutcomeStatus = "sent"
	OutcomeFailed       OutcomeStatus = "failed"
	OutcomeNotAttempted OutcomeStatus = "not_attempted"
)

type SendOutcome struct {
	Email      string        `db:"email" json:"email"`
	Status     OutcomeStatus `db:"status" json:"status"`
	StatusCode int           `db:"status_code" json:"statusCode,omitempty"`
	Error      string        `db:"error" json:"error,omitempty"`
}

type CampaignResult struct {
	RunID        string        `json:"runId,omitempty"`
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	SentCount    int           `json:"count"`
	Total        int           `json:"total"`
	NotAttempted int           `json:"notAttempted,omitempty"`
	Failures     []SendOutcome `json:"failures,omitempty"`
	Outcomes     []SendOutcome `json:"-"`
}

type RunStatus string

const (
	RunNotStarted RunStatus = "not_started"
	RunRunning    RunStatus = "running"
	RunSuccess    RunStatus = "success"
	RunFailed     RunStatus = "failed"
	RunError      RunStatus = "error"
)

// RunRecord summarises the most recent campaign run.
type RunRecord struct {
	RunID         string     `json:"run_id,omitempty" db:"id"`
	Trigger       Trigger    `json:"trigger,omitempty" db:"trigger_source"`
	Timestamp     *time.Time `json:"timestamp" db:"-"`
	StartedAt     *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Status        RunStatus  `json:"status" db:"status"`
	Message       string     `json:"message" db:"message"`
	SentCount     int        `json:"sent_count" db:"sent_count"`
	FailedCount   int        `json:"failed_count" db:"failed_count"`
	LastError     string     `json:"error,omitempty" db:"last_error"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty" db:"-"`
}
