package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
)

// ResourceRepository provides database access for resources, their
// working-hour rules and date overrides.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new instance of ResourceRepository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// FindByID returns a resource by identifier.
func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	const query = `SELECT id, name, type, user_id, team_id, timezone, active, created_at, updated_at FROM resources WHERE id = $1 LIMIT 1`
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find resource by id: %w", err)
	}
	return &resource, nil
}

// FindByUserID returns the host resource linked to a user account.
func (r *ResourceRepository) FindByUserID(ctx context.Context, userID string) (*models.Resource, error) {
	const query = `SELECT id, name, type, user_id, team_id, timezone, active, created_at, updated_at FROM resources WHERE user_id = $1 LIMIT 1`
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find resource by user id: %w", err)
	}
	return &resource, nil
}

// List returns resources based on filters with total count.
func (r *ResourceRepository) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error) {
	baseQuery := `FROM resources WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, *filter.Type)
	}
	if filter.TeamID != "" {
		conditions = append(conditions, fmt.Sprintf("team_id = $%d", len(args)+1))
		args = append(args, filter.TeamID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
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
		"SELECT id, name, type, user_id, team_id, timezone, active, created_at, updated_at %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		baseQuery, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}

	return resources, total, nil
}

// WorkingHours returns every weekday rule for a resource.
func (r *ResourceRepository) WorkingHours(ctx context.Context, resourceID string) ([]models.WorkingHoursRule, error) {
	const query = `SELECT id, resource_id, weekday, start_clock, end_clock, created_at FROM working_hours_rules WHERE resource_id = $1 ORDER BY weekday, start_clock`
	var rules []models.WorkingHoursRule
	if err := r.db.SelectContext(ctx, &rules, query, resourceID); err != nil {
		return nil, fmt.Errorf("list working hours: %w", err)
	}
	return rules, nil
}

// OverridesForDate returns every override row of a resource on a date.
func (r *ResourceRepository) OverridesForDate(ctx context.Context, resourceID, date string) ([]models.DateOverride, error) {
	const query = `SELECT id, resource_id, date, unavailable, start_clock, end_clock, note, created_at FROM date_overrides WHERE resource_id = $1 AND date = $2 ORDER BY start_clock NULLS FIRST`
	var overrides []models.DateOverride
	if err := r.db.SelectContext(ctx, &overrides, query, resourceID, date); err != nil {
		return nil, fmt.Errorf("list date overrides: %w", err)
	}
	return overrides, nil
}

// OverridesInRange returns override rows for a resource between two
// dates inclusive.
func (r *ResourceRepository) OverridesInRange(ctx context.Context, resourceID, dateFrom, dateTo string) ([]models.DateOverride, error) {
	const query = `SELECT id, resource_id, date, unavailable, start_clock, end_clock, note, created_at FROM date_overrides WHERE resource_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date, start_clock NULLS FIRST`
	var overrides []models.DateOverride
	if err := r.db.SelectContext(ctx, &overrides, query, resourceID, dateFrom, dateTo); err != nil {
		return nil, fmt.Errorf("list date overrides in range: %w", err)
	}
	return overrides, nil
}
