package models

import "time"

// ResourceType distinguishes what kind of thing a booking occupies.
type ResourceType string

const (
	ResourceTypeHost ResourceType = "HOST"
	ResourceTypeRoom ResourceType = "ROOM"
)

// Resource is a bookable entity. Hosts are linked to a user account,
// rooms are standalone.
type Resource struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Type      ResourceType `db:"type" json:"type"`
	UserID    *string      `db:"user_id" json:"user_id,omitempty"`
	TeamID    *string      `db:"team_id" json:"team_id,omitempty"`
	Timezone  string       `db:"timezone" json:"timezone"`
	Active    bool         `db:"active" json:"active"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// WorkingHoursRule opens a weekday window for a resource. A resource
// with no rules at all falls back to the default weekday window; a
// resource with rules is closed on every weekday its rules do not name.
type WorkingHoursRule struct {
	ID         string       `db:"id" json:"id"`
	ResourceID string       `db:"resource_id" json:"resource_id"`
	Weekday    time.Weekday `db:"weekday" json:"weekday"`
	StartClock string       `db:"start_clock" json:"start_clock"`
	EndClock   string       `db:"end_clock" json:"end_clock"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// DateOverride replaces the working-hours rules for one calendar date.
// An unavailable override blanks the whole date regardless of any
// window rows; otherwise the date's availability is the union of its
// override windows.
type DateOverride struct {
	ID          string    `db:"id" json:"id"`
	ResourceID  string    `db:"resource_id" json:"resource_id"`
	Date        string    `db:"date" json:"date"`
	Unavailable bool      `db:"unavailable" json:"unavailable"`
	StartClock  *string   `db:"start_clock" json:"start_clock,omitempty"`
	EndClock    *string   `db:"end_clock" json:"end_clock,omitempty"`
	Note        *string   `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ResourceFilter constrains resource listing queries.
type ResourceFilter struct {
	Type     *ResourceType
	TeamID   string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
