package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
)

// Identity headers set by the platform gateway after authentication
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	actorContextKey = "actor"
)

// ActorMiddleware resolves the caller identity from gateway headers.
// Requests without a user id are rejected; an unknown or missing role
// degrades to the least-privileged sales role.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + HeaderUserID + " header",
			})
			c.Abort()
			return
		}

		role := domain.Role(c.GetHeader(HeaderUserRole))
		switch role {
		case domain.RoleAdmin, domain.RoleManager, domain.RoleSales:
		default:
			role = domain.RoleSales
		}

		c.Set(actorContextKey, domain.Actor{ID: userID, Role: role})
		c.Next()
	}
}

// ActorFrom returns the resolved actor for the request
func ActorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{Role: domain.RoleSales}
}
