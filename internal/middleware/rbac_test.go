package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/skillshareplus/skillshare-api/internal/models"
)

func rbacRouter(role models.UserRole, allowed ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/gated",
		func(c *gin.Context) {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
		},
		RequireRoles(allowed...),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		},
	)
	return r
}

func TestRBACAllowsListedRole(t *testing.T) {
	r := rbacRouter(models.RoleInstructor, models.RoleAdmin, models.RoleInstructor)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsUnlistedRole(t *testing.T) {
	r := rbacRouter(models.RoleLearner, models.RoleAdmin, models.RoleInstructor)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACRequiresAuthenticatedContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/gated", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
