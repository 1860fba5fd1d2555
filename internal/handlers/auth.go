package handlers

import (
	"errors"
	"log"
	"net/http"

	"remindly/internal/auth"
	"remindly/internal/utils"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents the credential step of the login flow
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// VerifyOTPRequest represents the code step of the login flow
type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// Login checks the username/password and, on success, emails a one-time
// code to the admin address. The session cookie is issued here so the
// attempt counter sticks to the browser across submissions.
func (api *API) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	sessionID, err := auth.EnsureSession(c, api.Auth)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "failed to create session", err)
		return
	}

	remaining, err := api.Auth.Login(sessionID, req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrSessionLocked):
		log.Printf("Warning: locked-out login attempt from %s", utils.GetRealClientIP(c))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many failed attempts, please try again later"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Printf("Warning: failed login from %s", utils.GetRealClientIP(c))
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":              "invalid credentials",
			"attempts_remaining": remaining,
		})
	case err != nil:
		handleError(c, http.StatusInternalServerError, "failed to send verification email", err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "verification code sent to the registered email"})
	}
}

// VerifyOTP checks the emailed code and completes the login.
func (api *API) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a 6-digit code is required"})
		return
	}

	sessionID, err := c.Cookie(auth.SessionCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no login in progress"})
		return
	}

	remaining, err := api.Auth.VerifyOTP(sessionID, req.Code)
	switch {
	case errors.Is(err, auth.ErrInvalidOTP):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":              "invalid verification code",
			"attempts_remaining": remaining,
		})
	case errors.Is(err, auth.ErrTooManyOTPAttempts), errors.Is(err, auth.ErrOTPExpired):
		// The session was forced back to the start; the client must
		// submit credentials again.
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrNotVerified), errors.Is(err, auth.ErrUnknownSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no login in progress"})
	case err != nil:
		handleError(c, http.StatusInternalServerError, "verification failed", err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "login successful"})
	}
}

// ResendOTP re-issues the code for a session waiting on verification.
func (api *API) ResendOTP(c *gin.Context) {
	sessionID, err := c.Cookie(auth.SessionCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no login in progress"})
		return
	}

	switch err := api.Auth.ResendOTP(sessionID); {
	case errors.Is(err, auth.ErrNotVerified), errors.Is(err, auth.ErrUnknownSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no login in progress"})
	case err != nil:
		handleError(c, http.StatusInternalServerError, "failed to send verification email", err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "verification code sent to the registered email"})
	}
}

// Logout discards the session and its cookie.
func (api *API) Logout(c *gin.Context) {
	auth.ClearSession(c, api.Auth)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me reports the authenticated session. It sits behind the auth
// middleware, so reaching it at all means the login is complete.
func (api *API) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}
