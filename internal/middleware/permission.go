package middleware

import (
	"github.com/gin-gonic/gin" // Gin web framework

	"storefront/internal/domain"  // Permissions
	"storefront/internal/service" // Permission guard
)

// RequireSignIn rejects anonymous callers
func RequireSignIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == 0 {
			AbortWithError(c, domain.ErrNotSignedIn)
			return
		}
		c.Next()
	}
}

// RequirePermission checks the caller's permissions from the database on each request
func RequirePermission(guard *service.Guard, requiredAny ...domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := guard.Authorize(c.Request.Context(), UserID(c), requiredAny...); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
