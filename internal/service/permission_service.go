package service

import (
	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

// PermissionService decides whether an actor may apply a mutation to a
// booking. Decisions are pure functions of the actor context and the
// booking row, so the evaluator keeps no state beyond its logger.
//
// The rules, in evaluation order:
//   - finalized bookings reject every mutation
//   - internal team bookings are never reassignable, by anyone
//   - internal bookings are rescheduled or extended only by their host
//   - admins may do everything else
//   - organizers and hosts may mutate their own bookings
//   - team leads may mutate bookings belonging to a team they lead
type PermissionService struct {
	logger *zap.Logger
}

// NewPermissionService constructs a PermissionService instance.
func NewPermissionService(logger *zap.Logger) *PermissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{logger: logger}
}

// CanMutate returns nil when the actor may apply the action, or a
// typed error describing why not.
func (s *PermissionService) CanMutate(actor models.ActorContext, booking *models.Booking, action models.ChangeAction) error {
	if booking.Status.Finalized() {
		return appErrors.Clone(appErrors.ErrBookingFinalized, "booking is finalized and cannot be modified")
	}

	if booking.IsInternal {
		switch action {
		case models.ChangeActionReassign, models.ChangeActionReassignReschedule:
			return appErrors.Clone(appErrors.ErrPermissionDenied, "team bookings cannot be reassigned")
		case models.ChangeActionReschedule, models.ChangeActionExtend:
			if actor.UserID != booking.HostID {
				return appErrors.Clone(appErrors.ErrPermissionDenied, "only the host may reschedule a team booking")
			}
			return nil
		}
	}

	if actor.Role == models.RoleAdmin {
		return nil
	}

	if actor.UserID == booking.OrganizerID || actor.UserID == booking.HostID {
		return nil
	}

	if actor.Role == models.RoleTeamLead && booking.TeamID != nil && actor.Leads(*booking.TeamID) {
		return nil
	}

	s.logger.Debug("permission denied",
		zap.String("actor_id", actor.UserID),
		zap.String("actor_role", string(actor.Role)),
		zap.String("booking_id", booking.ID),
		zap.String("action", string(action)),
	)
	return appErrors.ErrPermissionDenied
}

// CanManageBlock reports whether the actor may create or modify a
// block on the given resource. Members manage blocks on their own
// resource, leads on resources of teams they lead, admins anywhere.
func (s *PermissionService) CanManageBlock(actor models.ActorContext, resource *models.Resource) error {
	if s.canActOn(actor, resource) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrPermissionDenied, "actor is not allowed to manage blocks for this resource")
}

// CanTargetResource reports whether the actor may direct a booking at
// the given resource. Reassignment needs this on the destination in
// addition to the booking-level check.
func (s *PermissionService) CanTargetResource(actor models.ActorContext, resource *models.Resource) error {
	if s.canActOn(actor, resource) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrPermissionDenied, "actor is not allowed to assign bookings to this resource")
}

func (s *PermissionService) canActOn(actor models.ActorContext, resource *models.Resource) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if resource.UserID != nil && *resource.UserID == actor.UserID {
		return true
	}
	return actor.Role == models.RoleTeamLead && resource.TeamID != nil && actor.Leads(*resource.TeamID)
}
