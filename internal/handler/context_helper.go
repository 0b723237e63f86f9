package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/bestsecurity/meeting-scheduler/internal/middleware"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

type actorResolver interface {
	ActorContext(ctx context.Context, userID string) (models.ActorContext, error)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// resolveActor turns the request claims into a full actor context with
// team memberships. Without a resolver the actor carries claims only,
// which is enough for role checks but not for team-lead rules.
func resolveActor(c *gin.Context, resolver actorResolver) (models.ActorContext, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.ActorContext{}, appErrors.ErrUnauthorized
	}
	if resolver == nil {
		return models.ActorContext{UserID: claims.UserID, Role: claims.Role}, nil
	}
	return resolver.ActorContext(c.Request.Context(), claims.UserID)
}
