package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/skillshareplus/skillshare-api/internal/models"
	appErrors "github.com/skillshareplus/skillshare-api/pkg/errors"
	"github.com/skillshareplus/skillshare-api/pkg/response"
)

// RBAC enforces role-based access control for routes. Ownership-scoped
// checks (instructor must own the resource) live in the services; this
// gate only decides whether the role may attempt the action at all.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is an alias kept for readability at route registration.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return RBAC(roles...)
}
