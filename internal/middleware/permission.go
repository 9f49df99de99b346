package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/models"
	appErrors "github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

// Require enforces a capability from the permission catalog. Leader
// sessions pass every check; an empty permission only requires a session.
func Require(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextSessionKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		session := value.(*models.Session)

		if !session.Can(permission) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// LeaderOnly restricts a route to leader sessions.
func LeaderOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextSessionKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		session := value.(*models.Session)

		if !session.IsLeader {
			response.Error(c, appErrors.ErrLeaderOnly)
			c.Abort()
			return
		}
		c.Next()
	}
}
