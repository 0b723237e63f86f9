package calendar

import (
	"time"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

// GestureKind identifies a calendar interaction.
type GestureKind string

// Supported gestures.
const (
	GestureMove   GestureKind = "move"
	GestureResize GestureKind = "resize"
	GestureCancel GestureKind = "cancel"
)

// Gesture is a raw widget interaction against one event: where the
// event was dropped, or where its edge was dragged to.
type Gesture struct {
	Kind       GestureKind `json:"kind"`
	BookingID  string      `json:"booking_id"`
	ResourceID string      `json:"resource_id"`
	StartAt    time.Time   `json:"start_at"`
	EndAt      time.Time   `json:"end_at"`
	Reason     string      `json:"reason,omitempty"`
	Version    int         `json:"version"`
}

// Mutation is the decoded booking mutation a gesture asks for.
type Mutation struct {
	BookingID string
	Action    models.ChangeAction
	Payload   any
}

// Translate decodes a gesture into the mutation it implies, using the
// event's current position to decide between reschedule, reassign and
// the combined transition.
func (a *Adapter) Translate(current EventRecord, gesture Gesture) (Mutation, error) {
	if gesture.BookingID == "" || gesture.BookingID != current.ID {
		return Mutation{}, appErrors.Clone(appErrors.ErrValidation, "gesture does not match the event")
	}

	switch gesture.Kind {
	case GestureMove:
		resourceChanged := gesture.ResourceID != "" && gesture.ResourceID != current.ResourceID
		timeChanged := !gesture.StartAt.Equal(current.Start) || !gesture.EndAt.Equal(current.End)
		switch {
		case resourceChanged && timeChanged:
			return Mutation{BookingID: gesture.BookingID, Action: models.ChangeActionReassignReschedule, Payload: models.ReassignRescheduleRequest{
				ResourceID:      gesture.ResourceID,
				StartAt:         gesture.StartAt,
				EndAt:           gesture.EndAt,
				ExpectedVersion: gesture.Version,
			}}, nil
		case resourceChanged:
			return Mutation{BookingID: gesture.BookingID, Action: models.ChangeActionReassign, Payload: models.ReassignRequest{
				ResourceID:      gesture.ResourceID,
				ExpectedVersion: gesture.Version,
			}}, nil
		case timeChanged:
			return Mutation{BookingID: gesture.BookingID, Action: models.ChangeActionReschedule, Payload: models.RescheduleRequest{
				StartAt:         gesture.StartAt,
				EndAt:           gesture.EndAt,
				ExpectedVersion: gesture.Version,
			}}, nil
		default:
			return Mutation{}, appErrors.Clone(appErrors.ErrValidation, "gesture changed nothing")
		}
	case GestureResize:
		if gesture.EndAt.Equal(current.End) {
			return Mutation{}, appErrors.Clone(appErrors.ErrValidation, "gesture changed nothing")
		}
		return Mutation{BookingID: gesture.BookingID, Action: models.ChangeActionExtend, Payload: models.ExtendRequest{
			EndAt:           gesture.EndAt,
			ExpectedVersion: gesture.Version,
		}}, nil
	case GestureCancel:
		return Mutation{BookingID: gesture.BookingID, Action: models.ChangeActionCancel, Payload: models.CancelRequest{
			Reason:          gesture.Reason,
			ExpectedVersion: gesture.Version,
		}}, nil
	default:
		return Mutation{}, appErrors.Clone(appErrors.ErrValidation, "unknown gesture kind")
	}
}
