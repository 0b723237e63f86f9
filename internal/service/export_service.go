package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
	"github.com/bestsecurity/meeting-scheduler/pkg/export"
)

var daySheetHeaders = []string{"Start", "End", "Kind", "Title", "Status", "Details"}

type exportResourceStore interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
}

type exportBookingStore interface {
	ListOccupying(ctx context.Context, resourceID string, from, to time.Time) ([]models.Booking, error)
}

type exportBlockStore interface {
	ListForDate(ctx context.Context, resourceID, date string) ([]models.BlockedInterval, error)
}

// ExportService renders a resource's day schedule as CSV or PDF.
type ExportService struct {
	resources exportResourceStore
	bookings  exportBookingStore
	blocks    exportBlockStore
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	enabled   bool
}

// NewExportService constructs an ExportService instance.
func NewExportService(
	resources exportResourceStore,
	bookings exportBookingStore,
	blocks exportBlockStore,
	logger *zap.Logger,
	enabled bool,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		resources: resources,
		bookings:  bookings,
		blocks:    blocks,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		enabled:   enabled,
	}
}

// DaySheet renders the schedule of one resource on one date. Format is
// "csv" or "pdf". It returns the payload, content type and a suggested
// file name.
func (s *ExportService) DaySheet(ctx context.Context, resourceID, date, format string) ([]byte, string, string, error) {
	if !s.enabled {
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "schedule exports are disabled")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", "", appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch resource")
	}

	sheet, err := s.buildSheet(ctx, resource, date)
	if err != nil {
		return nil, "", "", err
	}

	switch strings.ToLower(format) {
	case "csv", "":
		payload, err := s.csv.Render(*sheet)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", fmt.Sprintf("schedule-%s-%s.csv", resource.ID, date), nil
	case "pdf":
		payload, err := s.pdf.Render(*sheet)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", fmt.Sprintf("schedule-%s-%s.pdf", resource.ID, date), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *ExportService) buildSheet(ctx context.Context, resource *models.Resource, date string) (*export.Sheet, error) {
	loc := resourceLocation(resource)
	dayStart, _ := time.ParseInLocation(dateLayout, date, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	bookings, err := s.bookings.ListOccupying(ctx, resource.ID, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch bookings")
	}
	blocks, err := s.blocks.ListForDate(ctx, resource.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch blocks")
	}

	rows := make([]map[string]string, 0, len(bookings)+len(blocks))
	for _, block := range blocks {
		rows = append(rows, map[string]string{
			"Start":   block.StartClock,
			"End":     block.EndClock,
			"Kind":    "Block",
			"Title":   "",
			"Status":  "",
			"Details": block.Reason,
		})
	}
	for _, booking := range bookings {
		rows = append(rows, map[string]string{
			"Start":   booking.StartAt.In(loc).Format("15:04"),
			"End":     booking.EndAt.In(loc).Format("15:04"),
			"Kind":    "Booking",
			"Title":   booking.Title,
			"Status":  string(booking.Status),
			"Details": fmt.Sprintf("host %s", booking.HostID),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i]["Start"] < rows[j]["Start"] })

	return &export.Sheet{
		Title:    fmt.Sprintf("Schedule %s", resource.Name),
		Subtitle: date,
		Headers:  daySheetHeaders,
		Rows:     rows,
	}, nil
}
