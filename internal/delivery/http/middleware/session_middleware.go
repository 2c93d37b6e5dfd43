package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/token"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware validates the candidate session token and loads its
// claims into the request context. Every interview and synthesis route sits
// behind it; the interview ID always comes from here, never from a request
// body.
func SessionMiddleware(validator token.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || tokenString == authHeader {
			response.Error(c, http.StatusUnauthorized, "Authorization header with Bearer token required", nil)
			c.Abort()
			return
		}

		claims, err := validator.Validate(tokenString)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				// Distinct kind: the UI sends the candidate back to their
				// invite link instead of showing a generic auth failure.
				response.ErrorKind(c, http.StatusUnauthorized, "Your interview session has expired. Please reopen your interview link.", domain.KindSessionExpired, nil)
			} else {
				response.Error(c, http.StatusUnauthorized, "Invalid session token", nil)
			}
			c.Abort()
			return
		}

		c.Set(string(domain.KeyInterviewID), claims.InterviewID)
		c.Set(string(domain.KeyApplicantID), claims.ApplicantID)
		c.Set(string(domain.KeyAgentID), claims.AgentID)
		c.Set(string(domain.KeyJobID), claims.JobID)

		c.Next()
	}
}
