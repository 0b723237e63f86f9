// Package calendar translates the scheduling domain into renderable
// resource and event records and turns user gestures back into booking
// mutation payloads. It owns presentation concerns only; every gesture
// it produces is still validated server-side.
package calendar

import (
	"time"

	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/interval"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
)

// Palette maps booking statuses to display colors.
type Palette map[models.BookingStatus]string

// DefaultPalette returns the stock status colors.
func DefaultPalette() Palette {
	return Palette{
		models.BookingStatusNew:       "#f59e0b",
		models.BookingStatusConfirmed: "#2563eb",
		models.BookingStatusStarted:   "#16a34a",
		models.BookingStatusCompleted: "#6b7280",
		models.BookingStatusCancelled: "#dc2626",
		models.BookingStatusNoShow:    "#9333ea",
	}
}

const (
	backgroundColor = "#e2e8f0"
	fallbackColor   = "#94a3b8"
)

// ResourceRecord is one row/column of the rendered calendar.
type ResourceRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
}

// EventRecord is one rendered event. Background records paint busy
// time and accept no gestures.
type EventRecord struct {
	ID          string    `json:"id"`
	ResourceID  string    `json:"resource_id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Color       string    `json:"color"`
	Status      string    `json:"status,omitempty"`
	Version     int       `json:"version,omitempty"`
	Background  bool      `json:"background,omitempty"`
	CanResched  bool      `json:"can_reschedule"`
	CanReassign bool      `json:"can_reassign"`
}

type mutationEvaluator interface {
	CanMutate(actor models.ActorContext, booking *models.Booking, action models.ChangeAction) error
}

// Adapter builds render records and decodes gestures.
type Adapter struct {
	palette Palette
	perms   mutationEvaluator
	logger  *zap.Logger
}

// NewAdapter constructs an Adapter instance.
func NewAdapter(palette Palette, perms mutationEvaluator, logger *zap.Logger) *Adapter {
	if palette == nil {
		palette = DefaultPalette()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{palette: palette, perms: perms, logger: logger}
}

// Resources maps domain resources to render records.
func (a *Adapter) Resources(resources []models.Resource) []ResourceRecord {
	records := make([]ResourceRecord, 0, len(resources))
	for _, resource := range resources {
		record := ResourceRecord{
			ID:       resource.ID,
			Title:    resource.Name,
			Subtitle: string(resource.Type),
		}
		if resource.TeamID != nil {
			record.TeamID = *resource.TeamID
		}
		records = append(records, record)
	}
	return records
}

// Events maps bookings to render records with per-actor permission
// hints. The hints drive which gestures the widget enables; they are
// an optimization, not a security boundary.
func (a *Adapter) Events(actor models.ActorContext, bookings []models.Booking) []EventRecord {
	records := make([]EventRecord, 0, len(bookings))
	for i := range bookings {
		booking := &bookings[i]
		color, ok := a.palette[booking.Status]
		if !ok {
			color = fallbackColor
		}
		record := EventRecord{
			ID:         booking.ID,
			ResourceID: booking.ResourceID,
			Title:      booking.Title,
			Start:      booking.StartAt,
			End:        booking.EndAt,
			Color:      color,
			Status:     string(booking.Status),
			Version:    booking.Version,
		}
		if a.perms != nil {
			record.CanResched = a.perms.CanMutate(actor, booking, models.ChangeActionReschedule) == nil
			record.CanReassign = a.perms.CanMutate(actor, booking, models.ChangeActionReassign) == nil
		}
		records = append(records, record)
	}
	return records
}

// BackgroundBlocks paints a day's non-bookable spans, busy time plus
// the closed remainder of the day window, as non-interactive
// background events.
func (a *Adapter) BackgroundBlocks(availability *models.DayAvailability, loc *time.Location) []EventRecord {
	if availability == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation("2006-01-02", availability.Date, loc)
	if err != nil {
		a.logger.Warn("unparseable availability date", zap.String("date", availability.Date))
		return nil
	}
	records := make([]EventRecord, 0, len(availability.Background))
	for _, span := range availability.Background {
		records = append(records, EventRecord{
			ID:         availability.ResourceID + ":bg:" + interval.FormatMinute(span.Start),
			ResourceID: availability.ResourceID,
			Start:      day.Add(time.Duration(span.Start) * time.Minute),
			End:        day.Add(time.Duration(span.End) * time.Minute),
			Color:      backgroundColor,
			Background: true,
		})
	}
	return records
}
