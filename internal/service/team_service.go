package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/interval"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

type availabilityProvider interface {
	ForDate(ctx context.Context, resourceID, date string) (*models.DayAvailability, error)
}

// TeamConfig tunes multi-resource slot generation. Clock bounds are
// minutes from midnight.
type TeamConfig struct {
	SlotStart       int
	SlotEnd         int
	SlotStep        time.Duration
	Buffer          time.Duration
	DefaultDuration time.Duration
	MaxResources    int
}

// DefaultTeamConfig generates 09:00-17:00 slots at a 30 minute step
// with a 30 minute lead buffer on the current day.
func DefaultTeamConfig() TeamConfig {
	return TeamConfig{
		SlotStart:       9 * 60,
		SlotEnd:         17 * 60,
		SlotStep:        30 * time.Minute,
		Buffer:          30 * time.Minute,
		DefaultDuration: time.Hour,
		MaxResources:    20,
	}
}

// TeamService finds windows shared by several resources. A date where
// the participants have no common window is a normal empty result, not
// an error.
type TeamService struct {
	availability availabilityProvider
	logger       *zap.Logger
	config       TeamConfig
}

// NewTeamService constructs a TeamService instance.
func NewTeamService(availability availabilityProvider, logger *zap.Logger, config TeamConfig) *TeamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SlotStep <= 0 {
		config = DefaultTeamConfig()
	}
	return &TeamService{availability: availability, logger: logger, config: config}
}

// Slots returns every candidate window of the requested duration shared
// by all resources on the given date.
func (s *TeamService) Slots(ctx context.Context, query models.TeamSlotQuery) ([]models.TeamSlot, error) {
	if len(query.ResourceIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one resource is required")
	}
	if s.config.MaxResources > 0 && len(query.ResourceIDs) > s.config.MaxResources {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d resources per query", s.config.MaxResources))
	}
	if _, err := time.Parse(dateLayout, query.Date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	duration := query.Duration
	if duration <= 0 {
		duration = s.config.DefaultDuration
	}

	freeSets, err := s.collectFree(ctx, query.ResourceIDs, query.Date)
	if err != nil {
		return nil, err
	}
	common := interval.IntersectAll(freeSets...)

	// Candidates stay aligned to the slot grid regardless of where the
	// common free time happens to start.
	step := int(s.config.SlotStep / time.Minute)
	minutes := int(duration / time.Minute)
	cutoff := s.leadCutoff(query.Date, query.Now)

	slots := make([]models.TeamSlot, 0)
	for start := s.config.SlotStart; start+minutes <= s.config.SlotEnd; start += step {
		if start < cutoff {
			continue
		}
		candidate := interval.Span{Start: start, End: start + minutes}
		if !interval.Covers(common, candidate) {
			continue
		}
		slots = append(slots, models.TeamSlot{
			Date:       query.Date,
			Span:       candidate,
			StartClock: interval.FormatMinute(candidate.Start),
			EndClock:   interval.FormatMinute(candidate.End),
			Resources:  query.ResourceIDs,
		})
	}
	return slots, nil
}

// AvailableDates walks one month and reports each future date on which
// at least one shared slot exists. Dates already in the past are
// skipped entirely.
func (s *TeamService) AvailableDates(ctx context.Context, query models.MonthQuery) ([]models.AvailableDate, error) {
	if len(query.ResourceIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one resource is required")
	}
	if query.Month < time.January || query.Month > time.December {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid month")
	}

	now := query.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	first := time.Date(query.Year, query.Month, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]models.AvailableDate, 0, 31)
	for day := first; day.Month() == query.Month; day = day.AddDate(0, 0, 1) {
		if day.Before(today) {
			continue
		}
		slots, err := s.Slots(ctx, models.TeamSlotQuery{
			ResourceIDs: query.ResourceIDs,
			Date:        day.Format(dateLayout),
			Duration:    query.Duration,
			Now:         now,
		})
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			dates = append(dates, models.AvailableDate{
				Date:      day.Format(dateLayout),
				SlotCount: len(slots),
			})
		}
	}
	return dates, nil
}

// collectFree fans out one availability lookup per resource.
func (s *TeamService) collectFree(ctx context.Context, resourceIDs []string, date string) ([][]interval.Span, error) {
	type result struct {
		index int
		free  []interval.Span
		err   error
	}

	results := make([]result, len(resourceIDs))
	var wg sync.WaitGroup
	for i, id := range resourceIDs {
		wg.Add(1)
		go func(index int, resourceID string) {
			defer wg.Done()
			day, err := s.availability.ForDate(ctx, resourceID, date)
			if err != nil {
				results[index] = result{index: index, err: err}
				return
			}
			results[index] = result{index: index, free: day.Free}
		}(i, id)
	}
	wg.Wait()

	free := make([][]interval.Span, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		free = append(free, r.free)
	}
	return free, nil
}

// leadCutoff returns the earliest allowed slot start on the queried
// date. Only the current day carries a lead buffer.
func (s *TeamService) leadCutoff(date string, now time.Time) int {
	if now.IsZero() || now.Format(dateLayout) != date {
		return 0
	}
	cutoff := now.Hour()*60 + now.Minute() + int(s.config.Buffer/time.Minute)
	if cutoff > interval.MinutesPerDay {
		cutoff = interval.MinutesPerDay
	}
	return cutoff
}
