package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
)

const bookingColumns = `id, title, resource_id, host_id, organizer_id, team_id, is_internal, start_at, end_at, status, version, cancel_reason, created_at, updated_at`

// BookingRepository provides database access for bookings. Every
// mutation is guarded by the expected version so concurrent writers
// lose cleanly instead of overwriting each other.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new instance of BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking with its participant rows and returns
// it. The version starts at 1 so the first mutation already has
// something to guard on.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Version == 0 {
		booking.Version = 1
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create booking: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO bookings (id, title, resource_id, host_id, organizer_id, team_id, is_internal, start_at, end_at, status, version, created_at, updated_at)
		VALUES (:id, :title, :resource_id, :host_id, :organizer_id, :team_id, :is_internal, :start_at, :end_at, :status, :version, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	for _, resourceID := range booking.Participants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO booking_participants (booking_id, resource_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			booking.ID, resourceID,
		); err != nil {
			return nil, fmt.Errorf("create booking participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create booking: %w", err)
	}
	return booking, nil
}

// FindByID returns a booking by identifier, participants included.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 LIMIT 1`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find booking by id: %w", err)
	}
	if err := r.db.SelectContext(ctx, &booking.Participants,
		`SELECT resource_id FROM booking_participants WHERE booking_id = $1 ORDER BY resource_id`, id,
	); err != nil {
		return nil, fmt.Errorf("find booking participants: %w", err)
	}
	return &booking, nil
}

// ListOccupying returns bookings overlapping the given window that
// still occupy the resource's calendar time, whether the resource
// hosts the booking or participates in it. Cancelled and no-show
// bookings release their slot.
func (r *BookingRepository) ListOccupying(ctx context.Context, resourceID string, from, to time.Time) ([]models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings
		WHERE (resource_id = $1 OR EXISTS (
			SELECT 1 FROM booking_participants bp WHERE bp.booking_id = bookings.id AND bp.resource_id = $1
		))
		AND start_at < $3 AND end_at > $2 AND status NOT IN ($4, $5) ORDER BY start_at`, bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, resourceID, from, to, models.BookingStatusCancelled, models.BookingStatusNoShow); err != nil {
		return nil, fmt.Errorf("list occupying bookings: %w", err)
	}
	return bookings, nil
}

// List returns bookings based on filters with total count.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	baseQuery := `FROM bookings WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.ResourceID != "" {
		conditions = append(conditions, fmt.Sprintf("resource_id = $%d", len(args)+1))
		args = append(args, filter.ResourceID)
	}
	if filter.OrganizerID != "" {
		conditions = append(conditions, fmt.Sprintf("organizer_id = $%d", len(args)+1))
		args = append(args, filter.OrganizerID)
	}
	if filter.TeamID != "" {
		conditions = append(conditions, fmt.Sprintf("team_id = $%d", len(args)+1))
		args = append(args, filter.TeamID)
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, 0, len(filter.Status))
		for _, status := range filter.Status {
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("end_at > $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	listQuery := fmt.Sprintf(
		"SELECT %s %s ORDER BY start_at ASC LIMIT $%d OFFSET $%d",
		bookingColumns, baseQuery, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	return bookings, total, nil
}

// Reschedule moves a booking to a new window if the version matches.
// Returns the number of rows updated.
func (r *BookingRepository) Reschedule(ctx context.Context, id string, startAt, endAt time.Time, expectedVersion int, updatedAt time.Time) (int64, error) {
	const query = `UPDATE bookings SET start_at = $3, end_at = $4, version = version + 1, updated_at = $5 WHERE id = $1 AND version = $2`
	result, err := r.db.ExecContext(ctx, query, id, expectedVersion, startAt, endAt, updatedAt)
	if err != nil {
		return 0, fmt.Errorf("reschedule booking: %w", err)
	}
	return result.RowsAffected()
}

// Reassign moves a booking to another resource if the version matches.
func (r *BookingRepository) Reassign(ctx context.Context, id, resourceID string, expectedVersion int, updatedAt time.Time) (int64, error) {
	const query = `UPDATE bookings SET resource_id = $3, version = version + 1, updated_at = $4 WHERE id = $1 AND version = $2`
	result, err := r.db.ExecContext(ctx, query, id, expectedVersion, resourceID, updatedAt)
	if err != nil {
		return 0, fmt.Errorf("reassign booking: %w", err)
	}
	return result.RowsAffected()
}

// ReassignReschedule atomically changes resource and window if the
// version matches.
func (r *BookingRepository) ReassignReschedule(ctx context.Context, id, resourceID string, startAt, endAt time.Time, expectedVersion int, updatedAt time.Time) (int64, error) {
	const query = `UPDATE bookings SET resource_id = $3, start_at = $4, end_at = $5, version = version + 1, updated_at = $6 WHERE id = $1 AND version = $2`
	result, err := r.db.ExecContext(ctx, query, id, expectedVersion, resourceID, startAt, endAt, updatedAt)
	if err != nil {
		return 0, fmt.Errorf("reassign reschedule booking: %w", err)
	}
	return result.RowsAffected()
}

// Extend pushes the booking end later if the version matches.
func (r *BookingRepository) Extend(ctx context.Context, id string, endAt time.Time, expectedVersion int, updatedAt time.Time) (int64, error) {
	const query = `UPDATE bookings SET end_at = $3, version = version + 1, updated_at = $4 WHERE id = $1 AND version = $2`
	result, err := r.db.ExecContext(ctx, query, id, expectedVersion, endAt, updatedAt)
	if err != nil {
		return 0, fmt.Errorf("extend booking: %w", err)
	}
	return result.RowsAffected()
}

// Cancel marks a booking cancelled with a reason if the version
// matches.
func (r *BookingRepository) Cancel(ctx context.Context, id, reason string, expectedVersion int, updatedAt time.Time) (int64, error) {
	const query = `UPDATE bookings SET status = $3, cancel_reason = $4, version = version + 1, updated_at = $5 WHERE id = $1 AND version = $2`
	result, err := r.db.ExecContext(ctx, query, id, expectedVersion, models.BookingStatusCancelled, reason, updatedAt)
	if err != nil {
		return 0, fmt.Errorf("cancel booking: %w", err)
	}
	return result.RowsAffected()
}
