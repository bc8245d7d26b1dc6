package domain

import "time"

const (
	CheckOK      = "ok"
	CheckFailing = "failing"
)

type HealthStatus struct {
	LastCheckAt *time.Time        `json:"last_check"`
	Issues      []string          `json:"issues"`
	Checks      map[string]string `json:"checks"`
	Passed      int64             `json:"checks_passed"`
	Failed      int64             `json:"checks_failed"`
}

func (h HealthStatus) Healthy() bool {
	return len(h.Issues) == 0
}
