package api

import (
	"strconv" // Path parameter parsing

	"github.com/gin-gonic/gin" // Gin web framework

	"storefront/internal/domain"     // Domain errors
	"storefront/internal/middleware" // Error responses
)

// fail writes the error response for err
func fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// bind decodes the JSON body, rejecting malformed input as a validation error
func bind(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		fail(c, domain.Validation("Invalid request"))
		return false
	}
	return true
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, domain.Validation("Invalid "+name))
		return 0, false
	}
	return uint(id), true
}
