package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestPermissionMatrix(t *testing.T) {
	svc := NewPermissionService(nil)
	teamID := "team-1"

	admin := models.ActorContext{UserID: "admin-1", Role: models.RoleAdmin}
	lead := models.ActorContext{UserID: "lead-1", Role: models.RoleTeamLead, TeamIDs: []string{teamID}, LeadOfTeams: []string{teamID}}
	member := models.ActorContext{UserID: "member-1", Role: models.RoleMember, TeamIDs: []string{teamID}}
	outsider := models.ActorContext{UserID: "outsider-1", Role: models.RoleMember}

	teamBooking := &models.Booking{
		ID:          "bk-1",
		ResourceID:  "res-1",
		HostID:      "host-1",
		OrganizerID: "member-1",
		TeamID:      strPtr(teamID),
		Status:      models.BookingStatusConfirmed,
	}

	cases := []struct {
		name    string
		actor   models.ActorContext
		action  models.ChangeAction
		allowed bool
	}{
		{name: "admin reschedules", actor: admin, action: models.ChangeActionReschedule, allowed: true},
		{name: "admin cancels", actor: admin, action: models.ChangeActionCancel, allowed: true},
		{name: "organizer reschedules own", actor: member, action: models.ChangeActionReschedule, allowed: true},
		{name: "organizer cancels own", actor: member, action: models.ChangeActionCancel, allowed: true},
		{name: "lead reassigns team booking", actor: lead, action: models.ChangeActionReassign, allowed: true},
		{name: "lead extends team booking", actor: lead, action: models.ChangeActionExtend, allowed: true},
		{name: "outsider denied", actor: outsider, action: models.ChangeActionReschedule, allowed: false},
		{name: "outsider cancel denied", actor: outsider, action: models.ChangeActionCancel, allowed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.CanMutate(tc.actor, teamBooking, tc.action)
			if tc.allowed {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, appErrors.ErrPermissionDenied.Code, appErrors.FromError(err).Code)
			}
		})
	}
}

func TestPermissionFinalizedRejectsEveryone(t *testing.T) {
	svc := NewPermissionService(nil)
	admin := models.ActorContext{UserID: "admin-1", Role: models.RoleAdmin}

	for _, status := range []models.BookingStatus{models.BookingStatusCompleted, models.BookingStatusCancelled, models.BookingStatusNoShow} {
		booking := &models.Booking{ID: "bk-1", OrganizerID: "admin-1", Status: status}
		err := svc.CanMutate(admin, booking, models.ChangeActionReschedule)
		require.Error(t, err, status)
		assert.Equal(t, appErrors.ErrBookingFinalized.Code, appErrors.FromError(err).Code)
	}
}

func TestPermissionInternalBookingNeverReassigned(t *testing.T) {
	svc := NewPermissionService(nil)
	booking := &models.Booking{
		ID:          "bk-1",
		HostID:      "host-1",
		OrganizerID: "host-1",
		TeamID:      strPtr("team-1"),
		IsInternal:  true,
		Status:      models.BookingStatusConfirmed,
	}

	admin := models.ActorContext{UserID: "admin-1", Role: models.RoleAdmin}
	host := models.ActorContext{UserID: "host-1", Role: models.RoleMember, TeamIDs: []string{"team-1"}}

	// Not even an admin may move a team booking to another resource.
	require.Error(t, svc.CanMutate(admin, booking, models.ChangeActionReassign))
	require.Error(t, svc.CanMutate(admin, booking, models.ChangeActionReassignReschedule))
	require.Error(t, svc.CanMutate(host, booking, models.ChangeActionReassign))
}

func TestPermissionInternalRescheduleHostOnly(t *testing.T) {
	svc := NewPermissionService(nil)
	booking := &models.Booking{
		ID:          "bk-1",
		HostID:      "host-1",
		OrganizerID: "org-1",
		TeamID:      strPtr("team-1"),
		IsInternal:  true,
		Status:      models.BookingStatusConfirmed,
	}

	host := models.ActorContext{UserID: "host-1", Role: models.RoleMember}
	organizer := models.ActorContext{UserID: "org-1", Role: models.RoleMember}
	lead := models.ActorContext{UserID: "lead-1", Role: models.RoleTeamLead, LeadOfTeams: []string{"team-1"}}

	require.NoError(t, svc.CanMutate(host, booking, models.ChangeActionReschedule))
	require.NoError(t, svc.CanMutate(host, booking, models.ChangeActionExtend))
	require.Error(t, svc.CanMutate(organizer, booking, models.ChangeActionReschedule))
	require.Error(t, svc.CanMutate(lead, booking, models.ChangeActionReschedule))

	// Cancelling an internal booking follows the general rules.
	require.NoError(t, svc.CanMutate(organizer, booking, models.ChangeActionCancel))
	require.NoError(t, svc.CanMutate(lead, booking, models.ChangeActionCancel))
}

func TestPermissionCanManageBlock(t *testing.T) {
	svc := NewPermissionService(nil)
	resource := &models.Resource{ID: "res-1", UserID: strPtr("member-1"), TeamID: strPtr("team-1")}

	owner := models.ActorContext{UserID: "member-1", Role: models.RoleMember}
	lead := models.ActorContext{UserID: "lead-1", Role: models.RoleTeamLead, LeadOfTeams: []string{"team-1"}}
	admin := models.ActorContext{UserID: "admin-1", Role: models.RoleAdmin}
	other := models.ActorContext{UserID: "member-2", Role: models.RoleMember, TeamIDs: []string{"team-1"}}

	require.NoError(t, svc.CanManageBlock(owner, resource))
	require.NoError(t, svc.CanManageBlock(lead, resource))
	require.NoError(t, svc.CanManageBlock(admin, resource))
	require.Error(t, svc.CanManageBlock(other, resource))
}
