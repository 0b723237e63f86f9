package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestsecurity/meeting-scheduler/internal/interval"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

type blockRepoStub struct {
	blocks map[string]*models.BlockedInterval
	nextID int
}

func (s *blockRepoStub) FindByID(ctx context.Context, id string) (*models.BlockedInterval, error) {
	if block, ok := s.blocks[id]; ok {
		copied := *block
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *blockRepoStub) ListForDate(ctx context.Context, resourceID, date string) ([]models.BlockedInterval, error) {
	var matched []models.BlockedInterval
	for _, block := range s.blocks {
		if block.ResourceID == resourceID && block.Date == date {
			matched = append(matched, *block)
		}
	}
	return matched, nil
}

func (s *blockRepoStub) ListInRange(ctx context.Context, resourceID, dateFrom, dateTo string) ([]models.BlockedInterval, error) {
	var matched []models.BlockedInterval
	for _, block := range s.blocks {
		if block.ResourceID == resourceID && block.Date >= dateFrom && block.Date <= dateTo {
			matched = append(matched, *block)
		}
	}
	return matched, nil
}

func (s *blockRepoStub) CountOverlapping(ctx context.Context, resourceID, date, startClock, endClock, excludeID string) (int, error) {
	start, _ := interval.MinuteOfDay(startClock)
	end, _ := interval.MinuteOfDay(endClock)
	candidate := interval.Span{Start: start, End: end}

	count := 0
	for _, block := range s.blocks {
		if block.ID == excludeID || block.ResourceID != resourceID || block.Date != date {
			continue
		}
		bs, _ := interval.MinuteOfDay(block.StartClock)
		be, _ := interval.MinuteOfDay(block.EndClock)
		if candidate.Overlaps(interval.Span{Start: bs, End: be}) {
			count++
		}
	}
	return count, nil
}

func (s *blockRepoStub) Create(ctx context.Context, block *models.BlockedInterval) (*models.BlockedInterval, error) {
	if s.blocks == nil {
		s.blocks = map[string]*models.BlockedInterval{}
	}
	if block.ID == "" {
		s.nextID++
		block.ID = string(rune('a' + s.nextID))
	}
	s.blocks[block.ID] = block
	return block, nil
}

func (s *blockRepoStub) Update(ctx context.Context, block *models.BlockedInterval) error {
	if _, ok := s.blocks[block.ID]; !ok {
		return sql.ErrNoRows
	}
	s.blocks[block.ID] = block
	return nil
}

func (s *blockRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.blocks[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.blocks, id)
	return nil
}

func newBlockedFixture(blocks ...*models.BlockedInterval) (*BlockedIntervalService, *blockRepoStub, *invalidatorStub) {
	repo := &blockRepoStub{blocks: map[string]*models.BlockedInterval{}}
	for _, block := range blocks {
		repo.blocks[block.ID] = block
	}
	owned := newHostResource("res-1")
	owned.UserID = strPtr("member-1")
	owned.TeamID = strPtr("team-1")
	resources := &resourceFinderStub{resources: map[string]models.Resource{"res-1": owned}}
	cache := &invalidatorStub{}
	svc := NewBlockedIntervalService(repo, resources, NewPermissionService(nil), cache, validator.New(), nil,
		WithBlockClock(func() time.Time { return testClock }))
	return svc, repo, cache
}

func ownerActor() models.ActorContext {
	return models.ActorContext{UserID: "member-1", Role: models.RoleMember, TeamIDs: []string{"team-1"}}
}

func TestBlockedCreateHappyPath(t *testing.T) {
	svc, repo, cache := newBlockedFixture()

	block, err := svc.Create(context.Background(), ownerActor(), models.CreateBlockedIntervalRequest{
		ResourceID: "res-1",
		Date:       "2026-09-02",
		StartClock: "12:00",
		EndClock:   "13:00",
		Reason:     "lunch",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, block.ID)
	assert.Equal(t, "member-1", block.CreatedBy)
	assert.Len(t, repo.blocks, 1)
	assert.Equal(t, []string{"res-1"}, cache.invalidated)
}

func TestBlockedCreateRequiresReason(t *testing.T) {
	svc, _, _ := newBlockedFixture()

	_, err := svc.Create(context.Background(), ownerActor(), models.CreateBlockedIntervalRequest{
		ResourceID: "res-1",
		Date:       "2026-09-02",
		StartClock: "12:00",
		EndClock:   "13:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBlockedCreateRejectsInvertedWindow(t *testing.T) {
	svc, _, _ := newBlockedFixture()

	_, err := svc.Create(context.Background(), ownerActor(), models.CreateBlockedIntervalRequest{
		ResourceID: "res-1",
		Date:       "2026-09-02",
		StartClock: "13:00",
		EndClock:   "12:00",
		Reason:     "backwards",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTimeRange.Code, appErrors.FromError(err).Code)
}

func TestBlockedCreateRejectsPastStart(t *testing.T) {
	svc, repo, _ := newBlockedFixture()

	// testClock is 2026-09-01 12:00 UTC, so a block starting earlier
	// the same day already began.
	_, err := svc.Create(context.Background(), ownerActor(), models.CreateBlockedIntervalRequest{
		ResourceID: "res-1",
		Date:       "2026-09-01",
		StartClock: "09:00",
		EndClock:   "10:00",
		Reason:     "too late",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPastTime.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.blocks)

	_, err = svc.Create(context.Background(), ownerActor(), models.CreateBlockedIntervalRequest{
		ResourceID: "res-1",
		Date:       "2001-01-01",
		StartClock: "09:00",
		EndClock:   "10:00",
		Reason:     "long gone",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPastTime.Code, appErrors.FromError(err).Code)
}

func TestBlockedCreateRejectsOverlap(t *testing.T) {
	existing := &models.BlockedInterval{
		ID: "blk-1", ResourceID: "res-1", Date: "2026-09-02",
		StartClock: "12:00", EndClock: "13:00", Reason: "lunch", CreatedBy: "member-1",
	}
	svc, _, _ := newBlockedFixture(existing)

	_, err := svc.Create(context.Background(), ownerActor(), models.CreateBlockedIntervalRequest{
		ResourceID: "res-1",
		Date:       "2026-09-02",
		StartClock: "12:30",
		EndClock:   "14:00",
		Reason:     "errand",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBlockedOverlap.Code, appErrors.FromError(err).Code)
}

func TestBlockedCreateTouchingWindowsAllowed(t *testing.T) {
	existing := &models.BlockedInterval{
		ID: "blk-1", ResourceID: "res-1", Date: "2026-09-02",
		StartClock: "12:00", EndClock: "13:00", Reason: "lunch", CreatedBy: "member-1",
	}
	svc, _, _ := newBlockedFixture(existing)

	_, err := svc.Create(context.Background(), ownerActor(), models.CreateBlockedIntervalRequest{
		ResourceID: "res-1",
		Date:       "2026-09-02",
		StartClock: "13:00",
		EndClock:   "14:00",
		Reason:     "errand",
	})
	require.NoError(t, err)
}

func TestBlockedCreatePermissionDenied(t *testing.T) {
	svc, _, _ := newBlockedFixture()

	stranger := models.ActorContext{UserID: "member-2", Role: models.RoleMember}
	_, err := svc.Create(context.Background(), stranger, models.CreateBlockedIntervalRequest{
		ResourceID: "res-1",
		Date:       "2026-09-02",
		StartClock: "12:00",
		EndClock:   "13:00",
		Reason:     "nope",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPermissionDenied.Code, appErrors.FromError(err).Code)
}

func TestBlockedUpdateExcludesSelfFromOverlap(t *testing.T) {
	existing := &models.BlockedInterval{
		ID: "blk-1", ResourceID: "res-1", Date: "2026-09-02",
		StartClock: "12:00", EndClock: "13:00", Reason: "lunch", CreatedBy: "member-1",
	}
	svc, repo, _ := newBlockedFixture(existing)

	newEnd := "13:30"
	updated, err := svc.Update(context.Background(), ownerActor(), "blk-1", models.UpdateBlockedIntervalRequest{
		EndClock: &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, "13:30", updated.EndClock)
	assert.Equal(t, "13:30", repo.blocks["blk-1"].EndClock)
}

func TestBlockedDeleteByLead(t *testing.T) {
	existing := &models.BlockedInterval{
		ID: "blk-1", ResourceID: "res-1", Date: "2026-09-02",
		StartClock: "12:00", EndClock: "13:00", Reason: "lunch", CreatedBy: "member-1",
	}
	svc, repo, cache := newBlockedFixture(existing)

	lead := models.ActorContext{UserID: "lead-1", Role: models.RoleTeamLead, LeadOfTeams: []string{"team-1"}}
	require.NoError(t, svc.Delete(context.Background(), lead, "blk-1"))
	assert.Empty(t, repo.blocks)
	assert.Equal(t, []string{"res-1"}, cache.invalidated)
}
