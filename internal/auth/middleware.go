package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware rejects any request whose session has not completed both
// login steps.
func AuthMiddleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || !m.Authenticated(sessionID) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		c.Set("session_id", sessionID)
		c.Next()
	}
}
