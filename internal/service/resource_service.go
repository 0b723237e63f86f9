package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

type resourceDirectoryStore interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	FindByUserID(ctx context.Context, userID string) (*models.Resource, error)
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error)
	WorkingHours(ctx context.Context, resourceID string) ([]models.WorkingHoursRule, error)
}

// ResourceService exposes the resource directory.
type ResourceService struct {
	repo   resourceDirectoryStore
	logger *zap.Logger
}

// NewResourceService constructs a ResourceService instance.
func NewResourceService(repo resourceDirectoryStore, logger *zap.Logger) *ResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{repo: repo, logger: logger}
}

// Get returns a resource by identifier.
func (s *ResourceService) Get(ctx context.Context, id string) (*models.Resource, error) {
	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch resource")
	}
	return resource, nil
}

// ForUser returns the host resource linked to a user, or nil when the
// user has none.
func (s *ResourceService) ForUser(ctx context.Context, userID string) (*models.Resource, error) {
	resource, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch resource")
	}
	return resource, nil
}

// List returns resources matching the filter with a total count.
func (s *ResourceService) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error) {
	resources, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	return resources, total, nil
}

// WorkingHours returns the weekday rules of a resource.
func (s *ResourceService) WorkingHours(ctx context.Context, resourceID string) ([]models.WorkingHoursRule, error) {
	if _, err := s.Get(ctx, resourceID); err != nil {
		return nil, err
	}
	rules, err := s.repo.WorkingHours(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch working hours")
	}
	return rules, nil
}
