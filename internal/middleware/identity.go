package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/handler"
	"github.com/telecare/scheduler/internal/model"
)

const (
	HeaderXUserID   = "X-User-ID"
	HeaderXUserRole = "X-User-Role"

	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// Identity reads the caller's identity from trusted gateway headers.
// The API expects an upstream gateway to have authenticated the user
// and to forward their ID and role.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader(HeaderXUserID)
		if rawID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.NewErrorResponse("missing identity headers"))
			return
		}

		userID, err := uuid.Parse(rawID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.NewErrorResponse("invalid user ID"))
			return
		}

		role := model.ParticipantRole(c.GetHeader(HeaderXUserRole))
		if !role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.NewErrorResponse("invalid user role"))
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, role)
		c.Next()
	}
}

// UserID returns the authenticated user's ID from the request context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// UserRole returns the authenticated user's role from the request context.
func UserRole(c *gin.Context) (model.ParticipantRole, bool) {
	v, ok := c.Get(ContextUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(model.ParticipantRole)
	return role, ok
}
