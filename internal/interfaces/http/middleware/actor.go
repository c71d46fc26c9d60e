package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// Gin context keys set by ActorIdentity
const (
	ActorIDContextKey   = "actor_id"
	ActorTypeContextKey = "actor_type"
)

// ActorIdentity resolves the calling actor from the X-Actor-ID and
// X-Actor-Role headers placed by the authenticating gateway. Requests
// without a valid identity are rejected before reaching any handler.
func ActorIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader("X-Actor-ID")
		if idStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing X-Actor-ID header"))
			return
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Malformed X-Actor-ID header"))
			return
		}

		role := shared.ActorType(strings.ToUpper(c.GetHeader("X-Actor-Role")))
		if !role.IsValid() || role == shared.ActorTypeSystem {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing or unrecognized X-Actor-Role header"))
			return
		}

		c.Set(ActorIDContextKey, id)
		c.Set(ActorTypeContextKey, role)
		c.Next()
	}
}

// GetActor returns the actor resolved by ActorIdentity
func GetActor(c *gin.Context) (shared.Actor, bool) {
	idVal, ok := c.Get(ActorIDContextKey)
	if !ok {
		return shared.Actor{}, false
	}
	typeVal, ok := c.Get(ActorTypeContextKey)
	if !ok {
		return shared.Actor{}, false
	}

	id, ok := idVal.(uuid.UUID)
	if !ok {
		return shared.Actor{}, false
	}
	typ, ok := typeVal.(shared.ActorType)
	if !ok {
		return shared.Actor{}, false
	}

	return shared.Actor{ID: id, Type: typ}, true
}
