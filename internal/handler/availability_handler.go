package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
	"github.com/bestsecurity/meeting-scheduler/pkg/response"
)

type availabilityService interface {
	ForDate(ctx context.Context, resourceID, date string) (*models.DayAvailability, error)
	ForRange(ctx context.Context, resourceID, from, to string) ([]models.DayAvailability, error)
}

// AvailabilityHandler serves per-resource day availability.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// ForDate godoc
// @Summary Availability for one resource
// @Description Working, busy and free spans for a single date, or for an inclusive date range when from/to are given
// @Tags Availability
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /availability/{resourceId} [get]
func (h *AvailabilityHandler) ForDate(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "availability service not configured"))
		return
	}
	resourceID := strings.TrimSpace(c.Param("resourceId"))
	if resourceID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resource id is required"))
		return
	}

	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from != "" || to != "" {
		days, err := h.service.ForRange(c.Request.Context(), resourceID, from, to)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, days, nil)
		return
	}

	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date or from/to is required"))
		return
	}
	availability, err := h.service.ForDate(c.Request.Context(), resourceID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}
