package handlers

import (
	"log"
	"net/http"

	"remindly/internal/auth"
	"remindly/internal/services"
	"remindly/internal/store"

	"github.com/gin-gonic/gin"
)

// API bundles everything the handlers need. One instance is wired in
// main and shared across requests.
type API struct {
	Auth      *auth.Manager
	Reminders store.ReminderStore
	Companies store.CompanyStore
	Sweeper   *services.Sweeper
}

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("Error: %v", err)
	c.JSON(status, gin.H{"error": message})
}

// Home handles requests to the root path "/"
func (api *API) Home(c *gin.Context) {
	c.String(http.StatusOK, "Reminder System")
}

// Health is a simple health check endpoint
func (api *API) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
