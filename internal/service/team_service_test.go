package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestsecurity/meeting-scheduler/internal/interval"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
)

type availabilityProviderStub struct {
	free map[string]map[string][]interval.Span
	err  error
}

func (s *availabilityProviderStub) ForDate(ctx context.Context, resourceID, date string) (*models.DayAvailability, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.DayAvailability{
		ResourceID: resourceID,
		Date:       date,
		Free:       s.free[resourceID][date],
	}, nil
}

func fullBusinessDay() []interval.Span {
	return []interval.Span{{Start: 9 * 60, End: 17 * 60}}
}

func TestTeamSlotsIntersectsParticipants(t *testing.T) {
	provider := &availabilityProviderStub{free: map[string]map[string][]interval.Span{
		"res-1": {testWeekday: {{Start: 9 * 60, End: 12 * 60}}},
		"res-2": {testWeekday: {{Start: 10 * 60, End: 14 * 60}}},
	}}
	svc := NewTeamService(provider, nil, DefaultTeamConfig())

	slots, err := svc.Slots(context.Background(), models.TeamSlotQuery{
		ResourceIDs: []string{"res-1", "res-2"},
		Date:        testWeekday,
		Duration:    time.Hour,
	})
	require.NoError(t, err)

	// Common window is 10:00-12:00, so one-hour slots start at
	// 10:00, 10:30 and 11:00.
	require.Len(t, slots, 3)
	assert.Equal(t, "10:00", slots[0].StartClock)
	assert.Equal(t, "11:00", slots[0].EndClock)
	assert.Equal(t, "11:00", slots[2].StartClock)
}

func TestTeamSlotsEmptyIntersectionIsNotAnError(t *testing.T) {
	provider := &availabilityProviderStub{free: map[string]map[string][]interval.Span{
		"res-1": {testWeekday: {{Start: 9 * 60, End: 10 * 60}}},
		"res-2": {testWeekday: {{Start: 14 * 60, End: 17 * 60}}},
	}}
	svc := NewTeamService(provider, nil, DefaultTeamConfig())

	slots, err := svc.Slots(context.Background(), models.TeamSlotQuery{
		ResourceIDs: []string{"res-1", "res-2"},
		Date:        testWeekday,
		Duration:    time.Hour,
	})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestTeamSlotsBufferTrimsToday(t *testing.T) {
	provider := &availabilityProviderStub{free: map[string]map[string][]interval.Span{
		"res-1": {testWeekday: fullBusinessDay()},
	}}
	svc := NewTeamService(provider, nil, DefaultTeamConfig())

	// 10:45 plus the 30 minute buffer pushes the first slot to 11:30.
	now := time.Date(2026, 9, 2, 10, 45, 0, 0, time.UTC)
	slots, err := svc.Slots(context.Background(), models.TeamSlotQuery{
		ResourceIDs: []string{"res-1"},
		Date:        testWeekday,
		Duration:    time.Hour,
		Now:         now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "11:30", slots[0].StartClock)
}

func TestTeamSlotsNoBufferOnFutureDates(t *testing.T) {
	provider := &availabilityProviderStub{free: map[string]map[string][]interval.Span{
		"res-1": {testWeekday: fullBusinessDay()},
	}}
	svc := NewTeamService(provider, nil, DefaultTeamConfig())

	now := time.Date(2026, 9, 1, 16, 45, 0, 0, time.UTC)
	slots, err := svc.Slots(context.Background(), models.TeamSlotQuery{
		ResourceIDs: []string{"res-1"},
		Date:        testWeekday,
		Duration:    time.Hour,
		Now:         now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "09:00", slots[0].StartClock)
}

func TestTeamSlotsRequiresResources(t *testing.T) {
	svc := NewTeamService(&availabilityProviderStub{}, nil, DefaultTeamConfig())

	_, err := svc.Slots(context.Background(), models.TeamSlotQuery{Date: testWeekday})
	require.Error(t, err)
}

func TestTeamAvailableDatesSkipsPast(t *testing.T) {
	free := map[string]map[string][]interval.Span{"res-1": {}}
	// Open up the whole of September.
	first := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for day := first; day.Month() == time.September; day = day.AddDate(0, 0, 1) {
		free["res-1"][day.Format("2006-01-02")] = fullBusinessDay()
	}
	svc := NewTeamService(&availabilityProviderStub{free: free}, nil, DefaultTeamConfig())

	now := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	dates, err := svc.AvailableDates(context.Background(), models.MonthQuery{
		ResourceIDs: []string{"res-1"},
		Year:        2026,
		Month:       time.September,
		Duration:    time.Hour,
		Now:         now,
	})
	require.NoError(t, err)

	// September has 30 days; the 1st through the 9th are skipped.
	require.Len(t, dates, 21)
	assert.Equal(t, "2026-09-10", dates[0].Date)
	for _, date := range dates {
		assert.Positive(t, date.SlotCount)
	}
}
