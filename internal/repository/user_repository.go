package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
)

// UserRepository provides database access for users and team
// memberships.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Memberships returns every team membership of a user.
func (r *UserRepository) Memberships(ctx context.Context, userID string) ([]models.TeamMembership, error) {
	const query = `SELECT id, team_id, user_id, is_lead, joined_at FROM team_memberships WHERE user_id = $1 ORDER BY joined_at`
	var memberships []models.TeamMembership
	if err := r.db.SelectContext(ctx, &memberships, query, userID); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return memberships, nil
}

// TeamMembers returns every member of a team.
func (r *UserRepository) TeamMembers(ctx context.Context, teamID string) ([]models.TeamMembership, error) {
	const query = `SELECT id, team_id, user_id, is_lead, joined_at FROM team_memberships WHERE team_id = $1 ORDER BY joined_at`
	var memberships []models.TeamMembership
	if err := r.db.SelectContext(ctx, &memberships, query, teamID); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	return memberships, nil
}
