package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"storefront/internal/domain"     // Permissions
	"storefront/internal/middleware" // Caller identity
	"storefront/internal/service"    // User queries
)

// PermissionsRequest replaces a user's permission set
type PermissionsRequest struct {
	Permissions domain.Permissions `json:"permissions" binding:"required"`
}

// MeHandler returns the caller, or null when anonymous
func MeHandler(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := users.Me(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": me})
	}
}

// ListUsersHandler lists every user
func ListUsersHandler(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := users.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": list})
	}
}

// UpdatePermissionsHandler replaces the permission set of the user in the path
func UpdatePermissionsHandler(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req PermissionsRequest
		if !bind(c, &req) {
			return
		}
		user, err := users.UpdatePermissions(c.Request.Context(), middleware.UserID(c), targetID, req.Permissions)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
