package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
)

func newMockRepo(t *testing.T) (*DeliveryRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewDeliveryRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestDeliveryRepository_SaveRun(t *testing.T) {
	repo, mock := newMockRepo(t)

	started := time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC)
	finished := started.Add(time.Minute)
	rec := domain.RunRecord{
		RunID:       "run-1",
		Trigger:     domain.TriggerScheduled,
		Status:      domain.RunFailed,
		Message:     "Sent 1 of 2 emails",
		SentCount:   1,
		FailedCount: 1,
		StartedAt:   &started,
		FinishedAt:  &finished,
	}
	outcomes := []domain.SendOutcome{
		{Email: "ana@example.com", Status: domain.OutcomeSent, StatusCode: 202},
		{Email: "bo@example.com", Status: domain.OutcomeFailed, StatusCode: 400, Error: "bad address"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO campaign_runs").
		WithArgs("run-1", sqlmock.AnyArg(), sqlmock.AnyArg(), "Sent 1 of 2 emails", 1, 1, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO delivery_attempts").
		WithArgs("run-1", "ana@example.com", sqlmock.AnyArg(), 202, "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO delivery_attempts").
		WithArgs("run-1", "bo@example.com", sqlmock.AnyArg(), 400, "bad address").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveRun(context.Background(), rec, outcomes))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepository_SaveRunRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO campaign_runs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO delivery_attempts").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveRun(context.Background(), domain.RunRecord{RunID: "run-2"}, []domain.SendOutcome{{Email: "x@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepository_ListRuns(t *testing.T) {
	repo, mock := newMockRepo(t)

	started := time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM campaign_runs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery("FROM campaign_runs").
		WithArgs(20, 20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "trigger_source", "status", "message", "sent_count", "failed_count", "last_error", "started_at", "finished_at",
		}).AddRow("run-1", "scheduled", "success", "Emails sent to 3 contacts.", 3, 0, "", started, started))

	runs, total, err := repo.ListRuns(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(21), total)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
	assert.Equal(t, domain.RunSuccess, runs[0].Status)
	assert.Equal(t, 3, runs[0].SentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepository_GetAttempts(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM delivery_attempts").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"email", "status", "status_code", "error"}).
			AddRow("ana@example.com", "sent", 202, "").
			AddRow("bo@example.com", "not_attempted", 0, "run budget exceeded"))

	outcomes, err := repo.GetAttempts(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, domain.OutcomeNotAttempted, outcomes[1].Status)
	assert.Equal(t, "run budget exceeded", outcomes[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
