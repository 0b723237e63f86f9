package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
)

func newBlockedRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBlockedIntervalRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newBlockedRepoMock(t)
	defer cleanup()

	repo := NewBlockedIntervalRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO blocked_intervals")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	now := time.Now()
	block, err := repo.Create(context.Background(), &models.BlockedInterval{
		ResourceID: "res-1",
		Date:       "2026-09-01",
		StartClock: "12:00",
		EndClock:   "13:00",
		Reason:     "lunch",
		CreatedBy:  "user-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, block.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockedIntervalRepositoryCountOverlapping(t *testing.T) {
	db, mock, cleanup := newBlockedRepoMock(t)
	defer cleanup()

	repo := NewBlockedIntervalRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM blocked_intervals")).
		WithArgs("res-1", "2026-09-01", "12:00", "13:00", "blk-2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountOverlapping(context.Background(), "res-1", "2026-09-01", "12:00", "13:00", "blk-2")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockedIntervalRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newBlockedRepoMock(t)
	defer cleanup()

	repo := NewBlockedIntervalRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE blocked_intervals SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.BlockedInterval{ID: "missing"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockedIntervalRepositoryListForDate(t *testing.T) {
	db, mock, cleanup := newBlockedRepoMock(t)
	defer cleanup()

	repo := NewBlockedIntervalRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "resource_id", "date", "start_clock", "end_clock", "reason", "created_by", "created_at", "updated_at"}).
		AddRow("blk-1", "res-1", "2026-09-01", "12:00", "13:00", "lunch", "user-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, resource_id, date")).
		WithArgs("res-1", "2026-09-01").
		WillReturnRows(rows)

	blocks, err := repo.ListForDate(context.Background(), "res-1", "2026-09-01")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, "lunch", blocks[0].Reason)
	require.NoError(t, mock.ExpectationsWereMet())
}
