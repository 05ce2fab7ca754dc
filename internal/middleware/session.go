package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rareminds/testportal/internal/response"
	"github.com/rareminds/testportal/internal/service"
)

// CheckSingleDeviceSession admits only the token of the student's latest login.
// Logged out or superseded tokens get 401; a Redis outage gets 500 so clients
// do not discard a still valid login.
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		err := authService.ValidateStudentSession(c.Request.Context(), claims.Subject, claims.ID)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, service.ErrNoActiveLogin), errors.Is(err, service.ErrLoginSuperseded):
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
		default:
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
		}
	}
}
