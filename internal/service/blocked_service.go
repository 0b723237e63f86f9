package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

type blockStore interface {
	FindByID(ctx context.Context, id string) (*models.BlockedInterval, error)
	ListForDate(ctx context.Context, resourceID, date string) ([]models.BlockedInterval, error)
	ListInRange(ctx context.Context, resourceID, dateFrom, dateTo string) ([]models.BlockedInterval, error)
	CountOverlapping(ctx context.Context, resourceID, date, startClock, endClock, excludeID string) (int, error)
	Create(ctx context.Context, block *models.BlockedInterval) (*models.BlockedInterval, error)
	Update(ctx context.Context, block *models.BlockedInterval) error
	Delete(ctx context.Context, id string) error
}

type blockResourceStore interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
}

type blockPermissionEvaluator interface {
	CanManageBlock(actor models.ActorContext, resource *models.Resource) error
}

// BlockedIntervalService manages blocked intervals. A block always
// carries a reason, its window must be ordered, and it may not overlap
// another block of the same resource on the same date.
type BlockedIntervalService struct {
	repo      blockStore
	resources blockResourceStore
	perms     blockPermissionEvaluator
	cache     availabilityInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// BlockedIntervalOption customises service construction.
type BlockedIntervalOption func(*BlockedIntervalService)

// WithBlockClock overrides the time source used for past-time checks.
func WithBlockClock(now func() time.Time) BlockedIntervalOption {
	return func(s *BlockedIntervalService) { s.now = now }
}

// NewBlockedIntervalService constructs a BlockedIntervalService instance.
func NewBlockedIntervalService(
	repo blockStore,
	resources blockResourceStore,
	perms blockPermissionEvaluator,
	cache availabilityInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ...BlockedIntervalOption,
) *BlockedIntervalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	s := &BlockedIntervalService{
		repo:      repo,
		resources: resources,
		perms:     perms,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a new blocked interval.
func (s *BlockedIntervalService) Create(ctx context.Context, actor models.ActorContext, req models.CreateBlockedIntervalRequest) (*models.BlockedInterval, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}

	resource, err := s.loadResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanManageBlock(actor, resource); err != nil {
		return nil, err
	}
	span, err := clockSpan(req.StartClock, req.EndClock)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidTimeRange.Code, appErrors.ErrInvalidTimeRange.Status, "block window is invalid")
	}
	if err := s.checkFuture(resource, req.Date, span.Start); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, req.ResourceID, req.Date, req.StartClock, req.EndClock, ""); err != nil {
		return nil, err
	}

	now := s.now()
	block, err := s.repo.Create(ctx, &models.BlockedInterval{
		ResourceID: req.ResourceID,
		Date:       req.Date,
		StartClock: req.StartClock,
		EndClock:   req.EndClock,
		Reason:     req.Reason,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create block")
	}

	s.cache.Invalidate(ctx, req.ResourceID)
	return block, nil
}

// Update edits a blocked interval in place.
func (s *BlockedIntervalService) Update(ctx context.Context, actor models.ActorContext, id string, req models.UpdateBlockedIntervalRequest) (*models.BlockedInterval, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}

	block, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resource, err := s.loadResource(ctx, block.ResourceID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanManageBlock(actor, resource); err != nil {
		return nil, err
	}

	if req.Date != nil {
		block.Date = *req.Date
	}
	if req.StartClock != nil {
		block.StartClock = *req.StartClock
	}
	if req.EndClock != nil {
		block.EndClock = *req.EndClock
	}
	if req.Reason != nil {
		block.Reason = *req.Reason
	}
	if block.Reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}
	if _, err := clockSpan(block.StartClock, block.EndClock); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidTimeRange.Code, appErrors.ErrInvalidTimeRange.Status, "block window is invalid")
	}
	if err := s.checkOverlap(ctx, block.ResourceID, block.Date, block.StartClock, block.EndClock, block.ID); err != nil {
		return nil, err
	}

	block.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, block); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update block")
	}

	s.cache.Invalidate(ctx, block.ResourceID)
	return block, nil
}

// Delete removes a blocked interval.
func (s *BlockedIntervalService) Delete(ctx context.Context, actor models.ActorContext, id string) error {
	block, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	resource, err := s.loadResource(ctx, block.ResourceID)
	if err != nil {
		return err
	}
	if err := s.perms.CanManageBlock(actor, resource); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "block not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete block")
	}

	s.cache.Invalidate(ctx, block.ResourceID)
	return nil
}

// ListForResource returns the blocks of a resource between two dates.
func (s *BlockedIntervalService) ListForResource(ctx context.Context, resourceID, dateFrom, dateTo string) ([]models.BlockedInterval, error) {
	if _, err := time.Parse(dateLayout, dateFrom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid from date")
	}
	if _, err := time.Parse(dateLayout, dateTo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid to date")
	}

	blocks, err := s.repo.ListInRange(ctx, resourceID, dateFrom, dateTo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blocks")
	}
	return blocks, nil
}

func (s *BlockedIntervalService) load(ctx context.Context, id string) (*models.BlockedInterval, error) {
	block, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch block")
	}
	return block, nil
}

func (s *BlockedIntervalService) loadResource(ctx context.Context, id string) (*models.Resource, error) {
	resource, err := s.resources.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch resource")
	}
	return resource, nil
}

// checkFuture rejects a block whose start clock already passed in the
// resource's timezone.
func (s *BlockedIntervalService) checkFuture(resource *models.Resource, date string, startMinute int) error {
	loc := resourceLocation(resource)
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	if day.Add(time.Duration(startMinute) * time.Minute).Before(s.now()) {
		return appErrors.ErrPastTime
	}
	return nil
}

func (s *BlockedIntervalService) checkOverlap(ctx context.Context, resourceID, date, startClock, endClock, excludeID string) error {
	count, err := s.repo.CountOverlapping(ctx, resourceID, date, startClock, endClock, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check block overlap")
	}
	if count > 0 {
		return appErrors.ErrBlockedOverlap
	}
	return nil
}
