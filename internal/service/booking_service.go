package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/interval"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

type bookingStore interface {
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	Reschedule(ctx context.Context, id string, startAt, endAt time.Time, expectedVersion int, updatedAt time.Time) (int64, error)
	Reassign(ctx context.Context, id, resourceID string, expectedVersion int, updatedAt time.Time) (int64, error)
	ReassignReschedule(ctx context.Context, id, resourceID string, startAt, endAt time.Time, expectedVersion int, updatedAt time.Time) (int64, error)
	Extend(ctx context.Context, id string, endAt time.Time, expectedVersion int, updatedAt time.Time) (int64, error)
	Cancel(ctx context.Context, id, reason string, expectedVersion int, updatedAt time.Time) (int64, error)
}

type bookingResourceStore interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
}

type permissionEvaluator interface {
	CanMutate(actor models.ActorContext, booking *models.Booking, action models.ChangeAction) error
	CanTargetResource(actor models.ActorContext, resource *models.Resource) error
}

type availabilityInvalidator interface {
	Invalidate(ctx context.Context, resourceID string)
}

type changePublisher interface {
	Publish(descriptor models.ChangeDescriptor)
}

type availabilityReader interface {
	ForDate(ctx context.Context, resourceID, date string) (*models.DayAvailability, error)
}

type mutationObserver interface {
	ObserveMutation(action string, outcome string)
}

// BookingService applies booking mutations. Every mutation follows the
// same sequence: validate the payload, check permissions, check the
// time window, then apply a version-guarded update. A guarded update
// that touches zero rows on a still-existing booking means another
// actor won the race.
type BookingService struct {
	repo         bookingStore
	resources    bookingResourceStore
	perms        permissionEvaluator
	cache        availabilityInvalidator
	availability availabilityReader
	publisher    changePublisher
	metrics      mutationObserver
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// BookingServiceOption configures the service.
type BookingServiceOption func(*BookingService)

// WithBookingClock overrides the clock, used by tests.
func WithBookingClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

// WithBookingAvailability attaches the calculator consulted when new
// bookings are created. Creation requires the picked window to be free;
// without a reader the coverage check is skipped.
func WithBookingAvailability(availability availabilityReader) BookingServiceOption {
	return func(s *BookingService) {
		s.availability = availability
	}
}

// WithBookingMetrics attaches a mutation observer.
func WithBookingMetrics(metrics mutationObserver) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = metrics
	}
}

// NewBookingService constructs a BookingService instance.
func NewBookingService(
	repo bookingStore,
	resources bookingResourceStore,
	perms permissionEvaluator,
	cache availabilityInvalidator,
	publisher changePublisher,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	s := &BookingService{
		repo:      repo,
		resources: resources,
		perms:     perms,
		cache:     cache,
		publisher: publisher,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a booking by identifier.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch booking")
	}
	return booking, nil
}

// List returns bookings matching the filter with a total count.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, total, nil
}

// Create books a picked slot. The window must be fully covered by the
// resource's free time at the moment of creation.
func (s *BookingService) Create(ctx context.Context, actor models.ActorContext, req models.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if err := s.checkWindow(req.StartAt, req.EndAt); err != nil {
		return nil, s.observe(models.ChangeActionCreate, err)
	}

	resource, err := s.fetchResource(ctx, req.ResourceID)
	if err != nil {
		return nil, s.observe(models.ChangeActionCreate, err)
	}
	if err := s.checkSlotFree(ctx, resource, req.StartAt, req.EndAt); err != nil {
		return nil, s.observe(models.ChangeActionCreate, err)
	}

	hostID := actor.UserID
	if resource.UserID != nil {
		hostID = *resource.UserID
	}
	now := s.now()
	created, err := s.repo.Create(ctx, &models.Booking{
		Title:       req.Title,
		ResourceID:  resource.ID,
		HostID:      hostID,
		OrganizerID: actor.UserID,
		IsInternal:  false,
		StartAt:     req.StartAt.UTC(),
		EndAt:       req.EndAt.UTC(),
		Status:      models.BookingStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, s.observe(models.ChangeActionCreate, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking"))
	}

	s.cache.Invalidate(ctx, resource.ID)
	s.publish(models.ChangeDescriptor{
		BookingID:    created.ID,
		Action:       models.ChangeActionCreate,
		ActorID:      actor.UserID,
		ActorRole:    actor.Role,
		ToResourceID: created.ResourceID,
		ToStartAt:    &created.StartAt,
		ToEndAt:      &created.EndAt,
		Recipients:   models.RecipientsFor(created),
		Version:      created.Version,
		OccurredAt:   s.now(),
	})
	s.observe(models.ChangeActionCreate, nil)
	return created, nil
}

// CreateTeamMeeting books an internal meeting. The window is checked
// against every listed resource; the row lives on the first one and
// participant rows keep it occupied on the rest. Only the team's lead
// or an admin may create one.
func (s *BookingService) CreateTeamMeeting(ctx context.Context, actor models.ActorContext, req models.CreateTeamMeetingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid team meeting payload")
	}
	if err := s.checkWindow(req.StartAt, req.EndAt); err != nil {
		return nil, s.observe(models.ChangeActionCreate, err)
	}
	if actor.Role != models.RoleAdmin && !actor.Leads(req.TeamID) {
		return nil, s.observe(models.ChangeActionCreate, appErrors.Clone(appErrors.ErrPermissionDenied, "only the team lead or an admin may book team meetings"))
	}

	for _, resourceID := range req.ResourceIDs {
		resource, err := s.fetchResource(ctx, resourceID)
		if err != nil {
			return nil, s.observe(models.ChangeActionCreate, err)
		}
		if err := s.checkSlotFree(ctx, resource, req.StartAt, req.EndAt); err != nil {
			return nil, s.observe(models.ChangeActionCreate, appErrors.Clone(appErrors.ErrSlotUnavailable, "resource "+resourceID+" is not free in the requested window"))
		}
	}

	now := s.now()
	teamID := req.TeamID
	created, err := s.repo.Create(ctx, &models.Booking{
		Title:        req.Title,
		ResourceID:   req.ResourceIDs[0],
		HostID:       actor.UserID,
		OrganizerID:  actor.UserID,
		TeamID:       &teamID,
		IsInternal:   true,
		StartAt:      req.StartAt.UTC(),
		EndAt:        req.EndAt.UTC(),
		Status:       models.BookingStatusConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
		Participants: req.ResourceIDs,
	})
	if err != nil {
		return nil, s.observe(models.ChangeActionCreate, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create team meeting"))
	}

	for _, resourceID := range req.ResourceIDs {
		s.cache.Invalidate(ctx, resourceID)
	}
	s.publish(models.ChangeDescriptor{
		BookingID:    created.ID,
		Action:       models.ChangeActionCreate,
		ActorID:      actor.UserID,
		ActorRole:    actor.Role,
		ToResourceID: created.ResourceID,
		ToStartAt:    &created.StartAt,
		ToEndAt:      &created.EndAt,
		Recipients:   models.RecipientsFor(created),
		Version:      created.Version,
		OccurredAt:   s.now(),
	})
	s.observe(models.ChangeActionCreate, nil)
	return created, nil
}

// Reschedule moves a booking to a new time window.
func (s *BookingService) Reschedule(ctx context.Context, actor models.ActorContext, id string, req models.RescheduleRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	booking, err := s.load(ctx, actor, id, models.ChangeActionReschedule)
	if err != nil {
		return nil, s.observe(models.ChangeActionReschedule, err)
	}
	if err := s.checkWindow(req.StartAt, req.EndAt); err != nil {
		return nil, s.observe(models.ChangeActionReschedule, err)
	}

	affected, err := s.repo.Reschedule(ctx, id, req.StartAt.UTC(), req.EndAt.UTC(), req.ExpectedVersion, s.now())
	if err != nil {
		return nil, s.observe(models.ChangeActionReschedule, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reschedule booking"))
	}
	updated, err := s.commit(ctx, id, affected)
	if err != nil {
		return nil, s.observe(models.ChangeActionReschedule, err)
	}

	s.cache.Invalidate(ctx, booking.ResourceID)
	s.publish(models.ChangeDescriptor{
		BookingID:      id,
		Action:         models.ChangeActionReschedule,
		ActorID:        actor.UserID,
		ActorRole:      actor.Role,
		FromResourceID: booking.ResourceID,
		ToResourceID:   booking.ResourceID,
		FromStartAt:    &booking.StartAt,
		FromEndAt:      &booking.EndAt,
		ToStartAt:      &updated.StartAt,
		ToEndAt:        &updated.EndAt,
		Recipients:     models.RecipientsFor(updated),
		Version:        updated.Version,
		OccurredAt:     s.now(),
	})
	s.observe(models.ChangeActionReschedule, nil)
	return updated, nil
}

// Reassign moves a booking to a different resource keeping its window.
func (s *BookingService) Reassign(ctx context.Context, actor models.ActorContext, id string, req models.ReassignRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassign payload")
	}

	booking, err := s.load(ctx, actor, id, models.ChangeActionReassign)
	if err != nil {
		return nil, s.observe(models.ChangeActionReassign, err)
	}
	if booking.StartAt.Before(s.now()) {
		return nil, s.observe(models.ChangeActionReassign, appErrors.Clone(appErrors.ErrPastTime, "booking has already started"))
	}
	if err := s.checkTarget(ctx, actor, booking, req.ResourceID); err != nil {
		return nil, s.observe(models.ChangeActionReassign, err)
	}

	affected, err := s.repo.Reassign(ctx, id, req.ResourceID, req.ExpectedVersion, s.now())
	if err != nil {
		return nil, s.observe(models.ChangeActionReassign, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign booking"))
	}
	updated, err := s.commit(ctx, id, affected)
	if err != nil {
		return nil, s.observe(models.ChangeActionReassign, err)
	}

	s.cache.Invalidate(ctx, booking.ResourceID)
	s.cache.Invalidate(ctx, req.ResourceID)
	s.publish(models.ChangeDescriptor{
		BookingID:      id,
		Action:         models.ChangeActionReassign,
		ActorID:        actor.UserID,
		ActorRole:      actor.Role,
		FromResourceID: booking.ResourceID,
		ToResourceID:   updated.ResourceID,
		Recipients:     models.RecipientsFor(updated),
		Version:        updated.Version,
		OccurredAt:     s.now(),
	})
	s.observe(models.ChangeActionReassign, nil)
	return updated, nil
}

// ReassignReschedule atomically changes resource and window.
func (s *BookingService) ReassignReschedule(ctx context.Context, actor models.ActorContext, id string, req models.ReassignRescheduleRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassign payload")
	}

	booking, err := s.load(ctx, actor, id, models.ChangeActionReassignReschedule)
	if err != nil {
		return nil, s.observe(models.ChangeActionReassignReschedule, err)
	}
	if err := s.checkWindow(req.StartAt, req.EndAt); err != nil {
		return nil, s.observe(models.ChangeActionReassignReschedule, err)
	}
	if err := s.checkTarget(ctx, actor, booking, req.ResourceID); err != nil {
		return nil, s.observe(models.ChangeActionReassignReschedule, err)
	}

	affected, err := s.repo.ReassignReschedule(ctx, id, req.ResourceID, req.StartAt.UTC(), req.EndAt.UTC(), req.ExpectedVersion, s.now())
	if err != nil {
		return nil, s.observe(models.ChangeActionReassignReschedule, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign booking"))
	}
	updated, err := s.commit(ctx, id, affected)
	if err != nil {
		return nil, s.observe(models.ChangeActionReassignReschedule, err)
	}

	s.cache.Invalidate(ctx, booking.ResourceID)
	s.cache.Invalidate(ctx, req.ResourceID)
	s.publish(models.ChangeDescriptor{
		BookingID:      id,
		Action:         models.ChangeActionReassignReschedule,
		ActorID:        actor.UserID,
		ActorRole:      actor.Role,
		FromResourceID: booking.ResourceID,
		ToResourceID:   updated.ResourceID,
		FromStartAt:    &booking.StartAt,
		FromEndAt:      &booking.EndAt,
		ToStartAt:      &updated.StartAt,
		ToEndAt:        &updated.EndAt,
		Recipients:     models.RecipientsFor(updated),
		Version:        updated.Version,
		OccurredAt:     s.now(),
	})
	s.observe(models.ChangeActionReassignReschedule, nil)
	return updated, nil
}

// Extend pushes the booking end later keeping its start.
func (s *BookingService) Extend(ctx context.Context, actor models.ActorContext, id string, req models.ExtendRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid extend payload")
	}

	booking, err := s.load(ctx, actor, id, models.ChangeActionExtend)
	if err != nil {
		return nil, s.observe(models.ChangeActionExtend, err)
	}
	if booking.StartAt.Before(s.now()) {
		return nil, s.observe(models.ChangeActionExtend, appErrors.Clone(appErrors.ErrPastTime, "booking has already started"))
	}
	if !req.EndAt.After(booking.EndAt) {
		return nil, s.observe(models.ChangeActionExtend, appErrors.Clone(appErrors.ErrInvalidTimeRange, "new end must be after the current end"))
	}
	if req.EndAt.Before(s.now()) {
		return nil, s.observe(models.ChangeActionExtend, appErrors.ErrPastTime)
	}

	affected, err := s.repo.Extend(ctx, id, req.EndAt.UTC(), req.ExpectedVersion, s.now())
	if err != nil {
		return nil, s.observe(models.ChangeActionExtend, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to extend booking"))
	}
	updated, err := s.commit(ctx, id, affected)
	if err != nil {
		return nil, s.observe(models.ChangeActionExtend, err)
	}

	s.cache.Invalidate(ctx, booking.ResourceID)
	s.publish(models.ChangeDescriptor{
		BookingID:      id,
		Action:         models.ChangeActionExtend,
		ActorID:        actor.UserID,
		ActorRole:      actor.Role,
		FromResourceID: booking.ResourceID,
		ToResourceID:   booking.ResourceID,
		FromEndAt:      &booking.EndAt,
		ToEndAt:        &updated.EndAt,
		Recipients:     models.RecipientsFor(updated),
		Version:        updated.Version,
		OccurredAt:     s.now(),
	})
	s.observe(models.ChangeActionExtend, nil)
	return updated, nil
}

// Cancel cancels a booking with a mandatory reason.
func (s *BookingService) Cancel(ctx context.Context, actor models.ActorContext, id string, req models.CancelRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancel payload")
	}

	booking, err := s.load(ctx, actor, id, models.ChangeActionCancel)
	if err != nil {
		return nil, s.observe(models.ChangeActionCancel, err)
	}

	affected, err := s.repo.Cancel(ctx, id, req.Reason, req.ExpectedVersion, s.now())
	if err != nil {
		return nil, s.observe(models.ChangeActionCancel, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking"))
	}
	updated, err := s.commit(ctx, id, affected)
	if err != nil {
		return nil, s.observe(models.ChangeActionCancel, err)
	}

	s.cache.Invalidate(ctx, booking.ResourceID)
	s.publish(models.ChangeDescriptor{
		BookingID:      id,
		Action:         models.ChangeActionCancel,
		ActorID:        actor.UserID,
		ActorRole:      actor.Role,
		FromResourceID: booking.ResourceID,
		Reason:         req.Reason,
		Recipients:     models.RecipientsFor(updated),
		Version:        updated.Version,
		OccurredAt:     s.now(),
	})
	s.observe(models.ChangeActionCancel, nil)
	return updated, nil
}

// load fetches the booking and runs the permission check for the
// intended action.
func (s *BookingService) load(ctx context.Context, actor models.ActorContext, id string, action models.ChangeAction) (*models.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanMutate(actor, booking, action); err != nil {
		return nil, err
	}
	return booking, nil
}

// checkWindow validates a full target window: ordered and not in the
// past.
func (s *BookingService) checkWindow(startAt, endAt time.Time) error {
	if !startAt.Before(endAt) {
		return appErrors.ErrInvalidTimeRange
	}
	if startAt.Before(s.now()) {
		return appErrors.ErrPastTime
	}
	return nil
}

// fetchResource loads an active resource or maps the failure to the
// typed error taxonomy.
func (s *BookingService) fetchResource(ctx context.Context, id string) (*models.Resource, error) {
	resource, err := s.resources.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch resource")
	}
	if !resource.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resource is inactive")
	}
	return resource, nil
}

// checkSlotFree verifies the window lies inside the resource's free
// time on its local calendar date. Windows crossing midnight in the
// resource timezone are rejected.
func (s *BookingService) checkSlotFree(ctx context.Context, resource *models.Resource, startAt, endAt time.Time) error {
	if s.availability == nil {
		return nil
	}

	loc := resourceLocation(resource)
	localStart := startAt.In(loc)
	date := localStart.Format(dateLayout)
	startMin := localStart.Hour()*60 + localStart.Minute()
	endMin := startMin + int(endAt.Sub(startAt).Minutes())
	if endMin > 24*60 {
		return appErrors.Clone(appErrors.ErrValidation, "booking must stay within one calendar day")
	}

	day, err := s.availability.ForDate(ctx, resource.ID, date)
	if err != nil {
		return err
	}
	if day.WholeDayBlocked || !interval.Covers(day.Free, interval.Span{Start: startMin, End: endMin}) {
		return appErrors.ErrSlotUnavailable
	}
	return nil
}

// checkTarget validates the reassignment destination. The permission
// evaluator must pass on the destination as well, not only on the
// booking being moved.
func (s *BookingService) checkTarget(ctx context.Context, actor models.ActorContext, booking *models.Booking, resourceID string) error {
	if resourceID == booking.ResourceID {
		return appErrors.Clone(appErrors.ErrValidation, "booking is already assigned to this resource")
	}
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "target resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch target resource")
	}
	if !resource.Active {
		return appErrors.Clone(appErrors.ErrValidation, "target resource is inactive")
	}
	return s.perms.CanTargetResource(actor, resource)
}

// commit interprets the guarded update result. Zero rows on an
// existing booking means the expected version was stale.
func (s *BookingService) commit(ctx context.Context, id string, affected int64) (*models.Booking, error) {
	if affected == 0 {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch booking")
		}
		return nil, appErrors.ErrConcurrentModification
	}
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch updated booking")
	}
	return updated, nil
}

func (s *BookingService) publish(descriptor models.ChangeDescriptor) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(descriptor)
}

// observe records the mutation outcome and passes the error through.
func (s *BookingService) observe(action models.ChangeAction, err error) error {
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = appErrors.FromError(err).Code
		}
		s.metrics.ObserveMutation(string(action), outcome)
	}
	return err
}
