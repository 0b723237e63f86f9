package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
)

// BlockedIntervalRepository provides database access for blocked
// intervals.
type BlockedIntervalRepository struct {
	db *sqlx.DB
}

// NewBlockedIntervalRepository creates a new instance of BlockedIntervalRepository.
func NewBlockedIntervalRepository(db *sqlx.DB) *BlockedIntervalRepository {
	return &BlockedIntervalRepository{db: db}
}

// FindByID returns a blocked interval by identifier.
func (r *BlockedIntervalRepository) FindByID(ctx context.Context, id string) (*models.BlockedInterval, error) {
	const query = `SELECT id, resource_id, date, start_clock, end_clock, reason, created_by, created_at, updated_at FROM blocked_intervals WHERE id = $1 LIMIT 1`
	var block models.BlockedInterval
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find blocked interval by id: %w", err)
	}
	return &block, nil
}

// ListForDate returns every block of a resource on a date.
func (r *BlockedIntervalRepository) ListForDate(ctx context.Context, resourceID, date string) ([]models.BlockedInterval, error) {
	const query = `SELECT id, resource_id, date, start_clock, end_clock, reason, created_by, created_at, updated_at FROM blocked_intervals WHERE resource_id = $1 AND date = $2 ORDER BY start_clock`
	var blocks []models.BlockedInterval
	if err := r.db.SelectContext(ctx, &blocks, query, resourceID, date); err != nil {
		return nil, fmt.Errorf("list blocked intervals: %w", err)
	}
	return blocks, nil
}

// ListInRange returns blocks of a resource between two dates inclusive.
func (r *BlockedIntervalRepository) ListInRange(ctx context.Context, resourceID, dateFrom, dateTo string) ([]models.BlockedInterval, error) {
	const query = `SELECT id, resource_id, date, start_clock, end_clock, reason, created_by, created_at, updated_at FROM blocked_intervals WHERE resource_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date, start_clock`
	var blocks []models.BlockedInterval
	if err := r.db.SelectContext(ctx, &blocks, query, resourceID, dateFrom, dateTo); err != nil {
		return nil, fmt.Errorf("list blocked intervals in range: %w", err)
	}
	return blocks, nil
}

// CountOverlapping counts blocks of the same resource and date whose
// clock window overlaps [startClock, endClock), excluding one block id
// when updating in place.
func (r *BlockedIntervalRepository) CountOverlapping(ctx context.Context, resourceID, date, startClock, endClock, excludeID string) (int, error) {
	const query = `SELECT COUNT(*) FROM blocked_intervals WHERE resource_id = $1 AND date = $2 AND start_clock < $4 AND end_clock > $3 AND id <> $5`
	var count int
	if err := r.db.GetContext(ctx, &count, query, resourceID, date, startClock, endClock, excludeID); err != nil {
		return 0, fmt.Errorf("count overlapping blocks: %w", err)
	}
	return count, nil
}

// Create inserts a new blocked interval and returns it.
func (r *BlockedIntervalRepository) Create(ctx context.Context, block *models.BlockedInterval) (*models.BlockedInterval, error) {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	const query = `INSERT INTO blocked_intervals (id, resource_id, date, start_clock, end_clock, reason, created_by, created_at, updated_at)
		VALUES (:id, :resource_id, :date, :start_clock, :end_clock, :reason, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return nil, fmt.Errorf("create blocked interval: %w", err)
	}
	return block, nil
}

// Update rewrites a blocked interval in place.
func (r *BlockedIntervalRepository) Update(ctx context.Context, block *models.BlockedInterval) error {
	const query = `UPDATE blocked_intervals SET date = :date, start_clock = :start_clock, end_clock = :end_clock, reason = :reason, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, block)
	if err != nil {
		return fmt.Errorf("update blocked interval: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update blocked interval rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a blocked interval.
func (r *BlockedIntervalRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM blocked_intervals WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete blocked interval: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blocked interval rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
