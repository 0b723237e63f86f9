package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bestsecurity/meeting-scheduler/internal/calendar"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
	"github.com/bestsecurity/meeting-scheduler/pkg/response"
)

// CalendarHandler serves the render model consumed by the calendar
// widget and decodes its gestures into booking mutations.
type CalendarHandler struct {
	adapter      *calendar.Adapter
	resources    resourceService
	bookings     bookingService
	availability availabilityService
	actors       actorResolver
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(adapter *calendar.Adapter, resources resourceService, bookings bookingService, availability availabilityService, actors actorResolver) *CalendarHandler {
	return &CalendarHandler{
		adapter:      adapter,
		resources:    resources,
		bookings:     bookings,
		availability: availability,
		actors:       actors,
	}
}

// Resources godoc
// @Summary Calendar resource rows
// @Tags Calendar
// @Produce json
// @Param team_id query string false "Team ID"
// @Success 200 {object} response.Envelope
// @Router /calendar/resources [get]
func (h *CalendarHandler) Resources(c *gin.Context) {
	if h.adapter == nil || h.resources == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "calendar adapter not configured"))
		return
	}
	active := true
	filter := models.ResourceFilter{
		TeamID:   strings.TrimSpace(c.Query("team_id")),
		Active:   &active,
		Page:     1,
		PageSize: 200,
	}
	resources, _, err := h.resources.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.adapter.Resources(resources), nil)
}

// Events godoc
// @Summary Calendar events for one resource day
// @Description Bookings with permission hints plus busy time as background records
// @Tags Calendar
// @Produce json
// @Param resource_id query string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/events [get]
func (h *CalendarHandler) Events(c *gin.Context) {
	if h.adapter == nil || h.bookings == nil || h.availability == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "calendar adapter not configured"))
		return
	}
	resourceID := strings.TrimSpace(c.Query("resource_id"))
	rawDate := strings.TrimSpace(c.Query("date"))
	day, err := time.Parse("2006-01-02", rawDate)
	if err != nil || resourceID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resource_id and a valid date are required"))
		return
	}
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}

	from := day
	to := day.Add(24 * time.Hour)
	bookings, _, err := h.bookings.List(c.Request.Context(), models.BookingFilter{
		ResourceID: resourceID,
		From:       &from,
		To:         &to,
		Page:       1,
		PageSize:   500,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	availability, err := h.availability.ForDate(c.Request.Context(), resourceID, rawDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	events := h.adapter.Events(actor, bookings)
	events = append(events, h.adapter.BackgroundBlocks(availability, time.UTC)...)
	response.JSON(c, http.StatusOK, events, nil)
}

// Gesture godoc
// @Summary Apply a calendar gesture
// @Description Decode a drag, resize or cancel gesture and apply the booking mutation it implies
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body calendar.Gesture true "Gesture payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /calendar/gestures [post]
func (h *CalendarHandler) Gesture(c *gin.Context) {
	if h.adapter == nil || h.bookings == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "calendar adapter not configured"))
		return
	}
	var gesture calendar.Gesture
	if err := c.ShouldBindJSON(&gesture); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid gesture payload"))
		return
	}
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}

	booking, err := h.bookings.Get(c.Request.Context(), gesture.BookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	current := h.adapter.Events(actor, []models.Booking{*booking})[0]
	mutation, err := h.adapter.Translate(current, gesture)
	if err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.apply(c, actor, mutation)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, h.adapter.Events(actor, []models.Booking{*updated})[0], nil)
}

func (h *CalendarHandler) apply(c *gin.Context, actor models.ActorContext, mutation calendar.Mutation) (*models.Booking, error) {
	ctx := c.Request.Context()
	switch payload := mutation.Payload.(type) {
	case models.RescheduleRequest:
		return h.bookings.Reschedule(ctx, actor, mutation.BookingID, payload)
	case models.ReassignRequest:
		return h.bookings.Reassign(ctx, actor, mutation.BookingID, payload)
	case models.ReassignRescheduleRequest:
		return h.bookings.ReassignReschedule(ctx, actor, mutation.BookingID, payload)
	case models.ExtendRequest:
		return h.bookings.Extend(ctx, actor, mutation.BookingID, payload)
	case models.CancelRequest:
		return h.bookings.Cancel(ctx, actor, mutation.BookingID, payload)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported gesture")
	}
}
