package middleware

import (
	"errors"   // Error unwrapping
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"storefront/internal/domain" // Error kinds
)

// StatusOf maps an error to its HTTP status
func StatusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotAuthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindPaymentDeclined:
		return http.StatusPaymentRequired
	case domain.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// AbortWithError writes {"error": msg} and stops the chain. Internal errors are logged and masked.
func AbortWithError(c *gin.Context, err error) {
	status := StatusOf(err)
	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Msg // Hide wrapped causes from the client
	}
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		msg = "Internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
