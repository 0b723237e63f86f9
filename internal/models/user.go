package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleTeamLead UserRole = "TEAM_LEAD"
	RoleMember   UserRole = "MEMBER"
)

// Level orders roles by authority. Higher values may do everything the
// lower ones can.
func (r UserRole) Level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleTeamLead:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// TeamMembership links a user to a team, optionally as its lead.
type TeamMembership struct {
	ID       string    `db:"id" json:"id"`
	TeamID   string    `db:"team_id" json:"team_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	IsLead   bool      `db:"is_lead" json:"is_lead"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Active   *bool
	TeamID   string
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
