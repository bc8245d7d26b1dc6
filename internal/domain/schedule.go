package domain

import (
	"fmt"
	"time"
)

type ScheduleConfig struct {
	Hour        int       `json:"hour"`
	Minute      int       `json:"minute"`
	LastUpdated time.Time `json:"last_updated"`
	UpdatedBy   string    `json:"updated_by"`
}

// Validate enforces 0<=hour<=23 and 0<=minute<=59.
func (c ScheduleConfig) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour must be between 0 and 23, got %d", ErrInvalidSchedule, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: minute must be between 0 and 59, got %d", ErrInvalidSchedule, c.Minute)
	}
	return nil
}

// CronSpec renders the daily trigger as a standard five-field cron expression.
func (c ScheduleConfig) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", c.Minute, c.Hour)
}

func (c ScheduleConfig) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
