package auth

import (
	"crypto/rand"
	"encoding/base64"

	"remindly/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName is the name of the cookie that stores the session ID
	SessionCookieName = "remindly_session"
	// SessionIDLength is the length of the random session ID
	SessionIDLength = 32
)

// GenerateRandomString creates a cryptographically secure random string
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// EnsureSession returns the session id from the request cookie, creating
// a fresh anonymous session (and setting the cookie) when there is none
// or the old one has expired.
func EnsureSession(c *gin.Context, m *Manager) (string, error) {
	if sessionID, err := c.Cookie(SessionCookieName); err == nil && m.HasSession(sessionID) {
		return sessionID, nil
	}

	sessionID, err := m.NewSession()
	if err != nil {
		return "", err
	}

	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(
		SessionCookieName,
		sessionID,
		int(models.SessionDuration.Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly
	)
	return sessionID, nil
}

// ClearSession drops the session server-side and expires the cookie.
func ClearSession(c *gin.Context, m *Manager) {
	if sessionID, err := c.Cookie(SessionCookieName); err == nil {
		m.Logout(sessionID)
	}
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}
