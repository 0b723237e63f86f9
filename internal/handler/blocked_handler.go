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

type blockedIntervalService interface {
	Create(ctx context.Context, actor models.ActorContext, req models.CreateBlockedIntervalRequest) (*models.BlockedInterval, error)
	Update(ctx context.Context, actor models.ActorContext, id string, req models.UpdateBlockedIntervalRequest) (*models.BlockedInterval, error)
	Delete(ctx context.Context, actor models.ActorContext, id string) error
	ListForResource(ctx context.Context, resourceID, dateFrom, dateTo string) ([]models.BlockedInterval, error)
}

// BlockedHandler manages manually blocked time on resources.
type BlockedHandler struct {
	service blockedIntervalService
	actors  actorResolver
}

// NewBlockedHandler constructs the handler.
func NewBlockedHandler(service blockedIntervalService, actors actorResolver) *BlockedHandler {
	return &BlockedHandler{service: service, actors: actors}
}

// Create godoc
// @Summary Block time on a resource
// @Tags BlockedIntervals
// @Accept json
// @Produce json
// @Param payload body models.CreateBlockedIntervalRequest true "Block payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /blocked-intervals [post]
func (h *BlockedHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "blocked interval service not configured"))
		return
	}
	var req models.CreateBlockedIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid block payload"))
		return
	}
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}

	block, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, block, nil)
}

// Update godoc
// @Summary Update a blocked interval
// @Tags BlockedIntervals
// @Accept json
// @Produce json
// @Param id path string true "Blocked interval ID"
// @Param payload body models.UpdateBlockedIntervalRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /blocked-intervals/{id} [patch]
func (h *BlockedHandler) Update(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "blocked interval service not configured"))
		return
	}
	var req models.UpdateBlockedIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid block payload"))
		return
	}
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}

	block, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, block, nil)
}

// Delete godoc
// @Summary Remove a blocked interval
// @Tags BlockedIntervals
// @Produce json
// @Param id path string true "Blocked interval ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /blocked-intervals/{id} [delete]
func (h *BlockedHandler) Delete(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "blocked interval service not configured"))
		return
	}
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// List godoc
// @Summary List blocked intervals for a resource
// @Tags BlockedIntervals
// @Produce json
// @Param resource_id query string true "Resource ID"
// @Param from query string false "Date from (YYYY-MM-DD)"
// @Param to query string false "Date to (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /blocked-intervals [get]
func (h *BlockedHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "blocked interval service not configured"))
		return
	}
	resourceID := strings.TrimSpace(c.Query("resource_id"))
	if resourceID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resource_id is required"))
		return
	}

	blocks, err := h.service.ListForResource(c.Request.Context(), resourceID, strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, blocks, nil)
}
