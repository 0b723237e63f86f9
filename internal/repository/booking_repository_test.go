package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
)

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func bookingRows(id string, version int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "title", "resource_id", "host_id", "organizer_id", "team_id", "is_internal", "start_at", "end_at", "status", "version", "cancel_reason", "created_at", "updated_at"}).
		AddRow(id, "Weekly sync", "res-1", "host-1", "org-1", nil, false, now, now.Add(time.Hour), "CONFIRMED", version, nil, now, now)
}

func TestBookingRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, resource_id")).
		WithArgs("bk-1").
		WillReturnRows(bookingRows("bk-1", 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT resource_id FROM booking_participants")).
		WithArgs("bk-1").
		WillReturnRows(sqlmock.NewRows([]string{"resource_id"}))

	booking, err := repo.FindByID(context.Background(), "bk-1")
	require.NoError(t, err)
	require.Equal(t, "bk-1", booking.ID)
	require.Equal(t, 3, booking.Version)
	require.Empty(t, booking.Participants)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	start := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	created, err := repo.Create(context.Background(), &models.Booking{
		Title:       "Intro call",
		ResourceID:  "res-1",
		HostID:      "host-1",
		OrganizerID: "org-1",
		StartAt:     start,
		EndAt:       start.Add(time.Hour),
		Status:      models.BookingStatusNew,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, 1, created.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateWritesParticipants(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_participants")).
		WithArgs("bk-team", "res-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_participants")).
		WithArgs("bk-team", "res-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	start := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	_, err := repo.Create(context.Background(), &models.Booking{
		ID:           "bk-team",
		Title:        "Sprint review",
		ResourceID:   "res-1",
		HostID:       "lead-1",
		OrganizerID:  "lead-1",
		IsInternal:   true,
		StartAt:      start,
		EndAt:        start.Add(time.Hour),
		Status:       models.BookingStatusConfirmed,
		Participants: []string{"res-1", "res-2"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListOccupyingExcludesReleasedStatuses(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, resource_id")).
		WithArgs("res-1", from, to, "CANCELLED", "NO_SHOW").
		WillReturnRows(bookingRows("bk-1", 1))

	bookings, err := repo.ListOccupying(context.Background(), "res-1", from, to)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryRescheduleGuardsVersion(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	start := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET start_at")).
		WithArgs("bk-1", 2, start, end, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Reschedule(context.Background(), "bk-1", start, end, 2, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	// A stale version touches no rows.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET start_at")).
		WithArgs("bk-1", 1, start, end, now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err = repo.Reschedule(context.Background(), "bk-1", start, end, 1, now)
	require.NoError(t, err)
	require.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCancelSetsStatusAndReason(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status")).
		WithArgs("bk-1", 4, "CANCELLED", "host unavailable", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Cancel(context.Background(), "bk-1", "host unavailable", 4, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("res-1", "CONFIRMED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, resource_id")).
		WithArgs("res-1", "CONFIRMED", 20, 0).
		WillReturnRows(bookingRows("bk-1", 1))

	bookings, total, err := repo.List(context.Background(), models.BookingFilter{
		ResourceID: "res-1",
		Status:     []models.BookingStatus{models.BookingStatusConfirmed},
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, bookings, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
