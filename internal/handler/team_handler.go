package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
	"github.com/bestsecurity/meeting-scheduler/pkg/response"
)

type teamSlotService interface {
	Slots(ctx context.Context, query models.TeamSlotQuery) ([]models.TeamSlot, error)
	AvailableDates(ctx context.Context, query models.MonthQuery) ([]models.AvailableDate, error)
}

// TeamHandler serves shared-slot queries across multiple resources.
type TeamHandler struct {
	service teamSlotService
}

// NewTeamHandler constructs the handler.
func NewTeamHandler(service teamSlotService) *TeamHandler {
	return &TeamHandler{service: service}
}

// Slots godoc
// @Summary Shared bookable slots
// @Description Grid-aligned slots where every requested resource is free. Admin and team lead only.
// @Tags Team
// @Produce json
// @Param resources query string true "Comma separated resource IDs"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param duration query int false "Slot duration in minutes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /team/slots [get]
func (h *TeamHandler) Slots(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "team service not configured"))
		return
	}
	query := models.TeamSlotQuery{
		ResourceIDs: splitResourceIDs(c.Query("resources")),
		Date:        strings.TrimSpace(c.Query("date")),
		Duration:    durationParam(c, "duration"),
		Now:         time.Now(),
	}
	if query.Date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}

	slots, err := h.service.Slots(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, slots, nil)
}

// AvailableDates godoc
// @Summary Dates with at least one shared slot
// @Description Walk one month and report dates where a shared slot exists. Admin and team lead only.
// @Tags Team
// @Produce json
// @Param resources query string true "Comma separated resource IDs"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Param duration query int false "Slot duration in minutes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /team/available-dates [get]
func (h *TeamHandler) AvailableDates(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "team service not configured"))
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2200 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a valid number"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12"))
		return
	}

	query := models.MonthQuery{
		ResourceIDs: splitResourceIDs(c.Query("resources")),
		Year:        year,
		Month:       time.Month(month),
		Duration:    durationParam(c, "duration"),
		Now:         time.Now(),
	}

	dates, err := h.service.AvailableDates(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dates, nil)
}

func splitResourceIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ids = append(ids, part)
	}
	return ids
}

func durationParam(c *gin.Context, key string) time.Duration {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}
