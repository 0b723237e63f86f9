package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/interval"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
	"github.com/bestsecurity/meeting-scheduler/internal/repository"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

const dateLayout = "2006-01-02"

type availabilityResourceStore interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	WorkingHours(ctx context.Context, resourceID string) ([]models.WorkingHoursRule, error)
	OverridesForDate(ctx context.Context, resourceID, date string) ([]models.DateOverride, error)
}

type availabilityBlockStore interface {
	ListForDate(ctx context.Context, resourceID, date string) ([]models.BlockedInterval, error)
}

type availabilityBookingStore interface {
	ListOccupying(ctx context.Context, resourceID string, from, to time.Time) ([]models.Booking, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheObserver interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	ObserveCacheWrite(duration time.Duration)
}

// AvailabilityConfig tunes availability computation. Clock bounds are
// minutes from midnight.
type AvailabilityConfig struct {
	DayStart     int
	DayEnd       int
	DefaultStart int
	DefaultEnd   int
	MaxRangeDays int
	CacheTTL     time.Duration
}

// DefaultAvailabilityConfig mirrors the standard rendering window with
// a Mon-Fri 09:00-17:00 fallback for resources without explicit rules.
func DefaultAvailabilityConfig() AvailabilityConfig {
	return AvailabilityConfig{
		DayStart:     6 * 60,
		DayEnd:       22 * 60,
		DefaultStart: 9 * 60,
		DefaultEnd:   17 * 60,
		MaxRangeDays: 31,
		CacheTTL:     2 * time.Minute,
	}
}

// AvailabilityService computes the availability picture of a resource
// on a calendar date. Precedence is blocks first, then bookings, then
// the working window derived from overrides or weekday rules.
type AvailabilityService struct {
	resources availabilityResourceStore
	blocks    availabilityBlockStore
	bookings  availabilityBookingStore
	cache     availabilityCache
	metrics   cacheObserver
	logger    *zap.Logger
	config    AvailabilityConfig
}

// NewAvailabilityService constructs an AvailabilityService instance.
func NewAvailabilityService(
	resources availabilityResourceStore,
	blocks availabilityBlockStore,
	bookings availabilityBookingStore,
	cache availabilityCache,
	metrics cacheObserver,
	logger *zap.Logger,
	config AvailabilityConfig,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DayEnd <= config.DayStart {
		config = DefaultAvailabilityConfig()
	}
	return &AvailabilityService{
		resources: resources,
		blocks:    blocks,
		bookings:  bookings,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		config:    config,
	}
}

// ForDate returns the availability of one resource on one date. The
// result is independent of the querying clock so it is safe to cache
// per resource and date.
func (s *AvailabilityService) ForDate(ctx context.Context, resourceID, date string) (*models.DayAvailability, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	if s.cache != nil {
		start := time.Now()
		var cached models.DayAvailability
		err := s.cache.Get(ctx, repository.AvailabilityKey(resourceID, date), &cached)
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		}
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.Error(err))
		}
	}

	day, err := s.compute(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		start := time.Now()
		if err := s.cache.Set(ctx, repository.AvailabilityKey(resourceID, date), day, s.config.CacheTTL); err != nil {
			s.logger.Warn("availability cache write failed", zap.Error(err))
		} else if s.metrics != nil {
			s.metrics.ObserveCacheWrite(time.Since(start))
		}
	}

	return day, nil
}

// ForRange returns availability for every date from `from` to `to`
// inclusive, each day resolved through the per-date cache. The range
// is capped to keep one request from walking the whole calendar.
func (s *AvailabilityService) ForRange(ctx context.Context, resourceID, from, to string) ([]models.DayAvailability, error) {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid from date")
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid to date")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to date precedes from date")
	}

	maxDays := s.config.MaxRangeDays
	if maxDays <= 0 {
		maxDays = 31
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("range exceeds %d days", maxDays))
	}

	result := make([]models.DayAvailability, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day, err := s.ForDate(ctx, resourceID, d.Format(dateLayout))
		if err != nil {
			return nil, err
		}
		result = append(result, *day)
	}
	return result, nil
}

// Invalidate drops every cached date of a resource. Called after any
// mutation that changes what the resource's calendar looks like.
func (s *AvailabilityService) Invalidate(ctx context.Context, resourceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.AvailabilityPattern(resourceID)); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("resource_id", resourceID), zap.Error(err))
	}
}

func (s *AvailabilityService) compute(ctx context.Context, resourceID, date string) (*models.DayAvailability, error) {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch resource")
	}
	window := interval.Span{Start: s.config.DayStart, End: s.config.DayEnd}
	if !resource.Active {
		return &models.DayAvailability{
			ResourceID:      resourceID,
			Date:            date,
			WholeDayBlocked: true,
			Background:      []interval.Span{window},
		}, nil
	}

	working, wholeDayBlocked, err := s.workingSpans(ctx, resource, date)
	if err != nil {
		return nil, err
	}

	day := &models.DayAvailability{
		ResourceID:      resourceID,
		Date:            date,
		WholeDayBlocked: wholeDayBlocked,
		Working:         working,
	}
	if wholeDayBlocked || len(working) == 0 {
		// A closed date is one background block spanning the whole
		// rendering window.
		day.Background = []interval.Span{window}
		return day, nil
	}

	busy, err := s.busySpans(ctx, resource, date)
	if err != nil {
		return nil, err
	}

	day.Busy = interval.Merge(busy)
	day.Free = interval.Subtract(working, busy)
	day.Background = interval.Merge(append(interval.Complement(working, window.Start, window.End), day.Busy...))
	return day, nil
}

// workingSpans resolves the open windows of a date. Overrides replace
// weekday rules entirely; without any rules the default weekday window
// applies.
func (s *AvailabilityService) workingSpans(ctx context.Context, resource *models.Resource, date string) ([]interval.Span, bool, error) {
	overrides, err := s.resources.OverridesForDate(ctx, resource.ID, date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch date overrides")
	}

	if len(overrides) > 0 {
		for _, override := range overrides {
			if override.Unavailable {
				return nil, true, nil
			}
		}
		spans := make([]interval.Span, 0, len(overrides))
		for _, override := range overrides {
			if override.StartClock == nil || override.EndClock == nil {
				continue
			}
			span, err := clockSpan(*override.StartClock, *override.EndClock)
			if err != nil {
				s.logger.Warn("skipping malformed override window", zap.String("override_id", override.ID), zap.Error(err))
				continue
			}
			spans = append(spans, span)
		}
		return interval.Merge(spans), false, nil
	}

	rules, err := s.resources.WorkingHours(ctx, resource.ID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch working hours")
	}

	day, _ := time.Parse(dateLayout, date)
	weekday := day.Weekday()

	if len(rules) == 0 {
		if weekday == time.Saturday || weekday == time.Sunday {
			return nil, false, nil
		}
		return []interval.Span{{Start: s.config.DefaultStart, End: s.config.DefaultEnd}}, false, nil
	}

	var spans []interval.Span
	for _, rule := range rules {
		if rule.Weekday != weekday {
			continue
		}
		span, err := clockSpan(rule.StartClock, rule.EndClock)
		if err != nil {
			s.logger.Warn("skipping malformed working hours rule", zap.String("rule_id", rule.ID), zap.Error(err))
			continue
		}
		spans = append(spans, span)
	}
	return interval.Merge(spans), false, nil
}

func (s *AvailabilityService) busySpans(ctx context.Context, resource *models.Resource, date string) ([]interval.Span, error) {
	blocks, err := s.blocks.ListForDate(ctx, resource.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch blocked intervals")
	}

	var busy []interval.Span
	for _, block := range blocks {
		span, err := clockSpan(block.StartClock, block.EndClock)
		if err != nil {
			s.logger.Warn("skipping malformed blocked interval", zap.String("block_id", block.ID), zap.Error(err))
			continue
		}
		busy = append(busy, span)
	}

	loc := resourceLocation(resource)
	dayStart, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	bookings, err := s.bookings.ListOccupying(ctx, resource.ID, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch bookings")
	}

	for _, booking := range bookings {
		span, ok := clipToDay(booking.StartAt.In(loc), booking.EndAt.In(loc), dayStart)
		if ok {
			busy = append(busy, span)
		}
	}

	return busy, nil
}

func resourceLocation(resource *models.Resource) *time.Location {
	if resource.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(resource.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// clipToDay converts an absolute window to minutes of the given day,
// trimming the parts that spill into neighbouring dates.
func clipToDay(start, end, dayStart time.Time) (interval.Span, bool) {
	dayEnd := dayStart.Add(24 * time.Hour)
	if !start.Before(dayEnd) || !end.After(dayStart) {
		return interval.Span{}, false
	}
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	return interval.Span{
		Start: int(start.Sub(dayStart) / time.Minute),
		End:   int(end.Sub(dayStart) / time.Minute),
	}, true
}

func clockSpan(startClock, endClock string) (interval.Span, error) {
	start, err := interval.MinuteOfDay(startClock)
	if err != nil {
		return interval.Span{}, err
	}
	end, err := interval.MinuteOfDay(endClock)
	if err != nil {
		return interval.Span{}, err
	}
	if end <= start {
		return interval.Span{}, fmt.Errorf("window %s-%s is empty", startClock, endClock)
	}
	return interval.Span{Start: start, End: end}, nil
}
