package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
)

// DeliveryRepository stores campaign runs and their per-recipient outcomes.
type DeliveryRepository struct {
	db *sqlx.DB
}

func NewDeliveryRepository(db *sqlx.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// SaveRun writes the run summary and its outcomes in one transaction.
func (r *DeliveryRepository) SaveRun(ctx context.Context, rec domain.RunRecord, outcomes []domain.SendOutcome) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runQuery := `
		INSERT INTO campaign_runs
			(id, trigger_source, status, message, sent_count, failed_count, last_error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			message = VALUES(message),
			sent_count = VALUES(sent_count),
			failed_count = VALUES(failed_count),
			last_error = VALUES(last_error),
			finished_at = VALUES(finished_at)
	`

	if _, err := tx.ExecContext(ctx, runQuery,
		rec.RunID, rec.Trigger, rec.Status, rec.Message, rec.SentCount, rec.FailedCount,
		rec.LastError, rec.StartedAt, rec.FinishedAt,
	); err != nil {
		return fmt.Errorf("failed to save campaign run: %w", err)
	}

	attemptQuery := `
		INSERT INTO delivery_attempts (run_id, email, status, status_code, error)
		VALUES (?, ?, ?, ?, ?)
	`

	for _, o := range outcomes {
		if _, err := tx.ExecContext(ctx, attemptQuery, rec.RunID, o.Email, o.Status, o.StatusCode, o.Error); err != nil {
			return fmt.Errorf("failed to save delivery attempt for run %s: %w", rec.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit campaign run: %w", err)
	}

	return nil
}

func (r *DeliveryRepository) ListRuns(ctx context.Context, page, pageSize int) ([]domain.RunRecord, int64, error) {
	offset := (page - 1) * pageSize

	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, "SELECT COUNT(*) FROM campaign_runs"); err != nil {
		return nil, 0, fmt.Errorf("failed to count campaign runs: %w", err)
	}

	query := `
		SELECT id, trigger_source, status, message, sent_count, failed_count,
		       COALESCE(last_error, '') AS last_error, started_at, finished_at
		FROM campaign_runs
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`

	var runs []domain.RunRecord
	if err := r.db.SelectContext(ctx, &runs, query, pageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to get campaign runs: %w", err)
	}

	return runs, totalCount, nil
}

func (r *DeliveryRepository) GetAttempts(ctx context.Context, runID string) ([]domain.SendOutcome, error) {
	query := `
		SELECT email, status, status_code, COALESCE(error, '') AS error
		FROM delivery_attempts
		WHERE run_id = ?
		ORDER BY id ASC
	`

	var outcomes []domain.SendOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, runID); err != nil {
		return nil, fmt.Errorf("failed to get delivery attempts: %w", err)
	}

	return outcomes, nil
}

func (r *DeliveryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
