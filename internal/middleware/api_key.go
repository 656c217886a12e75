package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
)

var (
	errJobsNotConfigured = &apperrors.AppError{Code: "JOBS_NOT_CONFIGURED", Message: "Internal job endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
	errInvalidAPIKey     = &apperrors.AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// APIKeyMiddleware guards internal job endpoints with the X-API-Key header.
// An empty configured key disables the endpoints entirely.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, errJobsNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, errInvalidAPIKey)
			return
		}
		c.Next()
	}
}
