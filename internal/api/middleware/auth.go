package middleware

import (
	"net/http"
	"strings"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/session"
	"fleet-dashboard/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

const LoginPath = "/login"

// SessionGate is the part of the session manager the gate consults.
type SessionGate interface {
	Ready() bool
	State() session.State
	CurrentUser() (models.User, bool)
}

// RequireSession admits a request only while a user is signed in and the
// bearer token belongs to that user. Until the stored session has been
// restored, and while a sign-in is in flight, it answers 503 with
// "loading" so clients show a spinner instead of redirecting.
func RequireSession(gate SessionGate, tokens *jwt.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gate.Ready() || gate.State() == session.StateAuthenticating {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "Session is loading",
				"loading": true,
			})
			return
		}

		user, ok := gate.CurrentUser()
		if !ok {
			unauthorized(c, "Authentication required")
			return
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			unauthorized(c, "Authorization token required")
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}
		if claims.UserID != user.ID {
			unauthorized(c, "Token does not belong to the signed-in user")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUsername, user.Username)
		c.Set(ContextRole, string(user.Role))
		c.Next()
	}
}

// bearerToken reads the Authorization header, with or without the Bearer
// prefix. Browsers cannot set headers on a websocket upgrade, so the token
// query parameter is accepted too.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":  false,
		"message":  message,
		"redirect": LoginPath,
	})
}
