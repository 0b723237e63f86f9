package models

import "time"

// BookingStatus captures the booking lifecycle.
type BookingStatus string

const (
	BookingStatusNew       BookingStatus = "NEW"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusStarted   BookingStatus = "STARTED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusNoShow    BookingStatus = "NO_SHOW"
)

// Finalized reports whether the status is terminal. Finalized bookings
// reject every mutation.
func (s BookingStatus) Finalized() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow:
		return true
	default:
		return false
	}
}

// Booking is a scheduled meeting occupying a resource. Version backs
// optimistic concurrency: every successful mutation increments it, and
// mutation requests must carry the version they read.
type Booking struct {
	ID           string        `db:"id" json:"id"`
	Title        string        `db:"title" json:"title"`
	ResourceID   string        `db:"resource_id" json:"resource_id"`
	HostID       string        `db:"host_id" json:"host_id"`
	OrganizerID  string        `db:"organizer_id" json:"organizer_id"`
	TeamID       *string       `db:"team_id" json:"team_id,omitempty"`
	IsInternal   bool          `db:"is_internal" json:"is_internal"`
	StartAt      time.Time     `db:"start_at" json:"start_at"`
	EndAt        time.Time     `db:"end_at" json:"end_at"`
	Status       BookingStatus `db:"status" json:"status"`
	Version      int           `db:"version" json:"version"`
	CancelReason *string       `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`

	// Participants lists every resource whose calendar the booking
	// occupies beyond ResourceID. Internal team meetings hold the
	// window on all of them.
	Participants []string `db:"-" json:"participants,omitempty"`
}

// CreateBookingRequest books a picked slot on one resource.
type CreateBookingRequest struct {
	Title      string    `json:"title" validate:"required,min=3"`
	ResourceID string    `json:"resource_id" validate:"required"`
	StartAt    time.Time `json:"start_at" validate:"required"`
	EndAt      time.Time `json:"end_at" validate:"required"`
}

// CreateTeamMeetingRequest books an internal meeting hosted on one
// resource while holding the window on every listed resource.
type CreateTeamMeetingRequest struct {
	Title       string    `json:"title" validate:"required,min=3"`
	TeamID      string    `json:"team_id" validate:"required"`
	ResourceIDs []string  `json:"resource_ids" validate:"required,min=1,dive,required"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	EndAt       time.Time `json:"end_at" validate:"required"`
}

// RescheduleRequest moves a booking to a new time window.
type RescheduleRequest struct {
	StartAt         time.Time `json:"start_at" validate:"required"`
	EndAt           time.Time `json:"end_at" validate:"required"`
	ExpectedVersion int       `json:"expected_version" validate:"required,min=1"`
}

// ReassignRequest moves a booking to a different resource keeping its
// time window.
type ReassignRequest struct {
	ResourceID      string `json:"resource_id" validate:"required"`
	ExpectedVersion int    `json:"expected_version" validate:"required,min=1"`
}

// ReassignRescheduleRequest atomically changes both resource and time.
type ReassignRescheduleRequest struct {
	ResourceID      string    `json:"resource_id" validate:"required"`
	StartAt         time.Time `json:"start_at" validate:"required"`
	EndAt           time.Time `json:"end_at" validate:"required"`
	ExpectedVersion int       `json:"expected_version" validate:"required,min=1"`
}

// ExtendRequest pushes the booking end later keeping its start.
type ExtendRequest struct {
	EndAt           time.Time `json:"end_at" validate:"required"`
	ExpectedVersion int       `json:"expected_version" validate:"required,min=1"`
}

// CancelRequest cancels a booking with a mandatory reason.
type CancelRequest struct {
	Reason          string `json:"reason" validate:"required,min=3"`
	ExpectedVersion int    `json:"expected_version" validate:"required,min=1"`
}

// BookingFilter constrains booking listing queries.
type BookingFilter struct {
	ResourceID  string
	OrganizerID string
	TeamID      string
	Status      []BookingStatus
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}
