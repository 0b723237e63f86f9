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

type bookingService interface {
	Get(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	Create(ctx context.Context, actor models.ActorContext, req models.CreateBookingRequest) (*models.Booking, error)
	CreateTeamMeeting(ctx context.Context, actor models.ActorContext, req models.CreateTeamMeetingRequest) (*models.Booking, error)
	Reschedule(ctx context.Context, actor models.ActorContext, id string, req models.RescheduleRequest) (*models.Booking, error)
	Reassign(ctx context.Context, actor models.ActorContext, id string, req models.ReassignRequest) (*models.Booking, error)
	ReassignReschedule(ctx context.Context, actor models.ActorContext, id string, req models.ReassignRescheduleRequest) (*models.Booking, error)
	Extend(ctx context.Context, actor models.ActorContext, id string, req models.ExtendRequest) (*models.Booking, error)
	Cancel(ctx context.Context, actor models.ActorContext, id string, req models.CancelRequest) (*models.Booking, error)
}

// BookingHandler exposes booking reads and the mutation state machine.
type BookingHandler struct {
	service bookingService
	actors  actorResolver
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(service bookingService, actors actorResolver) *BookingHandler {
	return &BookingHandler{service: service, actors: actors}
}

// Get godoc
// @Summary Get booking detail
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "booking service not configured"))
		return
	}
	booking, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param resource_id query string false "Resource ID"
// @Param organizer_id query string false "Organizer ID"
// @Param team_id query string false "Team ID"
// @Param status query string false "Comma separated statuses"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "booking service not configured"))
		return
	}
	filter := models.BookingFilter{
		ResourceID:  strings.TrimSpace(c.Query("resource_id")),
		OrganizerID: strings.TrimSpace(c.Query("organizer_id")),
		TeamID:      strings.TrimSpace(c.Query("team_id")),
		Page:        intParam(c, "page", 1),
		PageSize:    intParam(c, "page_size", 20),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		parts := strings.Split(rawStatus, ",")
		statuses := make([]models.BookingStatus, 0, len(parts))
		for _, part := range parts {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			statuses = append(statuses, models.BookingStatus(part))
		}
		filter.Status = statuses
	}
	if from, ok := timeParam(c, "from"); ok {
		filter.From = &from
	}
	if to, ok := timeParam(c, "to"); ok {
		filter.To = &to
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Create godoc
// @Summary Book a picked slot
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body models.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "booking service not configured"))
		return
	}
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	booking, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// CreateTeam godoc
// @Summary Book an internal team meeting
// @Description The window must be free on every listed resource
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body models.CreateTeamMeetingRequest true "Team meeting payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/team [post]
func (h *BookingHandler) CreateTeam(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "booking service not configured"))
		return
	}
	var req models.CreateTeamMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid team meeting payload"))
		return
	}
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	booking, err := h.service.CreateTeamMeeting(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Reschedule godoc
// @Summary Move a booking to a new time window
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body models.RescheduleRequest true "Reschedule payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/reschedule [patch]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	var req models.RescheduleRequest
	h.mutate(c, &req, func(ctx context.Context, actor models.ActorContext, id string) (*models.Booking, error) {
		return h.service.Reschedule(ctx, actor, id, req)
	})
}

// Reassign godoc
// @Summary Move a booking to another resource
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body models.ReassignRequest true "Reassign payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/reassign [patch]
func (h *BookingHandler) Reassign(c *gin.Context) {
	var req models.ReassignRequest
	h.mutate(c, &req, func(ctx context.Context, actor models.ActorContext, id string) (*models.Booking, error) {
		return h.service.Reassign(ctx, actor, id, req)
	})
}

// ReassignReschedule godoc
// @Summary Move a booking to another resource and time window
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body models.ReassignRescheduleRequest true "Reassign-reschedule payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/reassign-reschedule [patch]
func (h *BookingHandler) ReassignReschedule(c *gin.Context) {
	var req models.ReassignRescheduleRequest
	h.mutate(c, &req, func(ctx context.Context, actor models.ActorContext, id string) (*models.Booking, error) {
		return h.service.ReassignReschedule(ctx, actor, id, req)
	})
}

// Extend godoc
// @Summary Extend a booking's end time
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body models.ExtendRequest true "Extend payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/extend [patch]
func (h *BookingHandler) Extend(c *gin.Context) {
	var req models.ExtendRequest
	h.mutate(c, &req, func(ctx context.Context, actor models.ActorContext, id string) (*models.Booking, error) {
		return h.service.Extend(ctx, actor, id, req)
	})
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body models.CancelRequest true "Cancel payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req models.CancelRequest
	h.mutate(c, &req, func(ctx context.Context, actor models.ActorContext, id string) (*models.Booking, error) {
		return h.service.Cancel(ctx, actor, id, req)
	})
}

func (h *BookingHandler) mutate(c *gin.Context, payload any, call func(ctx context.Context, actor models.ActorContext, id string) (*models.Booking, error)) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "booking service not configured"))
		return
	}
	if err := c.ShouldBindJSON(payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}

	booking, err := call(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, booking, nil)
}

func intParam(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func timeParam(c *gin.Context, key string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, false
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return value, true
}
