package middleware

import (
	"github.com/gin-gonic/gin"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/response"
)

// Authorize admits only the listed roles. It must run after Authenticate.
func Authorize(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			response.Abort(c, apperr.Unauthorized("Authentication required"))
			return
		}

		if _, ok := roleSet[models.UserRole(id.Role)]; !ok {
			response.Abort(c, apperr.Forbidden("Insufficient permissions"))
			return
		}

		c.Next()
	}
}
