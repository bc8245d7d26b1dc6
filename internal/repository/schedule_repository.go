package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
)

// Accepted last_updated layouts. Files written by older deployments carry a
// timezone-less ISO timestamp, read as UTC.
var lastUpdatedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// scheduleFile is the on-disk shape. last_updated is decoded leniently so
// that bad metadata never discards a valid hour and minute.
type scheduleFile struct {
	Hour        int             `json:"hour"`
	Minute      int             `json:"minute"`
	LastUpdated json.RawMessage `json:"last_updated"`
	UpdatedBy   string          `json:"updated_by"`
}

func parseLastUpdated(raw json.RawMessage) (time.Time, bool) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return time.Time{}, false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, true
	}

	for _, layout := range lastUpdatedLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ScheduleFileRepository persists the daily trigger time as a small JSON
// file: {"hour", "minute", "last_updated", "updated_by"}.
type ScheduleFileRepository struct {
	path string
	mu   sync.Mutex
}

func NewScheduleFileRepository(path string) *ScheduleFileRepository {
	return &ScheduleFileRepository{path: path}
}

// Load returns domain.ErrScheduleNotFound when the file does not exist.
func (r *ScheduleFileRepository) Load() (*domain.ScheduleConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}

	var file scheduleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file %s: %w", r.path, err)
	}

	cfg := domain.ScheduleConfig{Hour: file.Hour, Minute: file.Minute, UpdatedBy: file.UpdatedBy}
	if len(file.LastUpdated) > 0 {
		lastUpdated, ok := parseLastUpdated(file.LastUpdated)
		if !ok {
			logger.Warnf("Ignoring unparsable last_updated %s in %s", string(file.LastUpdated), r.path)
		}
		cfg.LastUpdated = lastUpdated
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("schedule file %s: %w", r.path, err)
	}

	return &cfg, nil
}

// Save writes the config through a temp file and rename so readers never
// observe a partial file.
func (r *ScheduleFileRepository) Save(cfg domain.ScheduleConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create schedule directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".schedule-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp schedule file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write schedule: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close schedule file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace schedule file: %w", err)
	}

	return nil
}
