package middleware

import (
	"crypto/subtle"
	"net/http"

	"go-interview-backend/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

// StaffKeyMiddleware guards the staff-only invite and voice-clone routes.
// Staff identity lives in the surrounding recruitment platform; this service
// only checks the shared API key it was provisioned with.
func StaffKeyMiddleware(staffKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if staffKey == "" {
			response.Error(c, http.StatusServiceUnavailable, "Staff API is not configured", nil)
			c.Abort()
			return
		}

		provided := c.GetHeader("X-Staff-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(staffKey)) != 1 {
			response.Error(c, http.StatusUnauthorized, "Invalid staff API key", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
