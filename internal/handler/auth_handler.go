package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
	"github.com/bestsecurity/meeting-scheduler/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	ActorContext(ctx context.Context, userID string) (models.ActorContext, error)
}

type actorResourceService interface {
	ForUser(ctx context.Context, userID string) (*models.Resource, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service   authService
	resources actorResourceService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(service authService, resources actorResourceService) *AuthHandler {
	return &AuthHandler{service: service, resources: resources}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "auth service not configured"))
		return
	}
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Resolve the acting user context
// @Description Return the actor context plus the hosting resource linked to the user, if any
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/context [get]
func (h *AuthHandler) Me(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "auth service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	actor, err := h.service.ActorContext(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"actor": actor}
	if h.resources != nil {
		resource, err := h.resources.ForUser(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if resource != nil {
			payload["resource"] = resource
		}
	}

	response.JSON(c, http.StatusOK, payload, nil)
}
