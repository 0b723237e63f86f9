package models

import "time"

// ChangeAction enumerates the booking mutations a descriptor reports.
type ChangeAction string

const (
	ChangeActionCreate             ChangeAction = "CREATE"
	ChangeActionReschedule         ChangeAction = "RESCHEDULE"
	ChangeActionReassign           ChangeAction = "REASSIGN"
	ChangeActionReassignReschedule ChangeAction = "REASSIGN_RESCHEDULE"
	ChangeActionExtend             ChangeAction = "EXTEND"
	ChangeActionCancel             ChangeAction = "CANCEL"
)

// Recipients flags which parties the notification dispatch should
// address for a change.
type Recipients struct {
	Host         bool `json:"host"`
	Participants bool `json:"participants"`
	Customer     bool `json:"customer"`
}

// RecipientsFor derives the notification audience of a booking change.
// The host always hears about changes to their calendar; internal
// meetings notify the participant resources, customer bookings notify
// the customer side.
func RecipientsFor(booking *Booking) Recipients {
	return Recipients{
		Host:         true,
		Participants: booking.IsInternal,
		Customer:     !booking.IsInternal,
	}
}

// ChangeDescriptor is the immutable record of one applied booking
// mutation, published to downstream consumers after commit.
type ChangeDescriptor struct {
	BookingID      string       `json:"booking_id"`
	Action         ChangeAction `json:"action"`
	ActorID        string       `json:"actor_id"`
	ActorRole      UserRole     `json:"actor_role"`
	FromResourceID string       `json:"from_resource_id,omitempty"`
	ToResourceID   string       `json:"to_resource_id,omitempty"`
	FromStartAt    *time.Time   `json:"from_start_at,omitempty"`
	FromEndAt      *time.Time   `json:"from_end_at,omitempty"`
	ToStartAt      *time.Time   `json:"to_start_at,omitempty"`
	ToEndAt        *time.Time   `json:"to_end_at,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	Recipients     Recipients   `json:"recipients"`
	Version        int          `json:"version"`
	OccurredAt     time.Time    `json:"occurred_at"`
}
