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

type resourceService interface {
	Get(ctx context.Context, id string) (*models.Resource, error)
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error)
	WorkingHours(ctx context.Context, resourceID string) ([]models.WorkingHoursRule, error)
}

// ResourceHandler serves bookable resources and their weekly rules.
type ResourceHandler struct {
	service resourceService
}

// NewResourceHandler constructs the handler.
func NewResourceHandler(service resourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// List godoc
// @Summary List bookable resources
// @Tags Resources
// @Produce json
// @Param type query string false "Resource type (HOST or ROOM)"
// @Param team_id query string false "Team ID"
// @Param active query bool false "Active flag"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "resource service not configured"))
		return
	}
	filter := models.ResourceFilter{
		TeamID:   strings.TrimSpace(c.Query("team_id")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     intParam(c, "page", 1),
		PageSize: intParam(c, "page_size", 20),
	}
	if rawType := strings.ToUpper(strings.TrimSpace(c.Query("type"))); rawType != "" {
		resourceType := models.ResourceType(rawType)
		filter.Type = &resourceType
	}
	if rawActive := strings.TrimSpace(c.Query("active")); rawActive != "" {
		active := rawActive == "true" || rawActive == "1"
		filter.Active = &active
	}

	resources, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, resources, pagination)
}

// Get godoc
// @Summary Get resource detail
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "resource service not configured"))
		return
	}
	resource, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// WorkingHours godoc
// @Summary Weekly working hours of a resource
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id}/working-hours [get]
func (h *ResourceHandler) WorkingHours(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "resource service not configured"))
		return
	}
	rules, err := h.service.WorkingHours(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}
