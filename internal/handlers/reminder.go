package handlers

import (
	"errors"
	"net/http"
	"sort"

	"remindly/internal/models"
	"remindly/internal/services"
	"remindly/internal/timeutil"

	"github.com/gin-gonic/gin"
)

// CreateReminderRequest is the reminder entry form. Date and time arrive
// as separate fields, wall-clock IST, the same shape the form collects.
type CreateReminderRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
	Date    string `json:"date" binding:"required"` // 2006-01-02
	Time    string `json:"time"`                    // 15:04, midnight when empty
}

// ReminderView is one row of the dashboard table.
type ReminderView struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Subject      string `json:"subject"`
	ReminderTime string `json:"reminder_time"`
	TimeLeft     string `json:"time_left"`
	Status       string `json:"status"`
}

// CreateReminder persists a new Pending reminder.
func (api *API) CreateReminder(c *gin.Context) {
	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please fill in all fields: " + err.Error()})
		return
	}

	dueAt, err := timeutil.Combine(req.Date, req.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date or time"})
		return
	}

	reminder := models.NewReminder(req.Email, req.Subject, req.Message, dueAt)
	created, err := api.Reminders.Create(reminder)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "failed to save reminder", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      created.ID,
		"message": "reminder set for " + timeutil.FormatDisplay(created.DueAt),
		"due_at":  created.DueAt,
		"status":  created.Status,
	})
}

// ListReminders returns every reminder as dashboard rows, soonest due
// first. Rows with broken timestamps sort last and read "Invalid time"
// instead of crashing the page.
func (api *API) ListReminders(c *gin.Context) {
	reminders, err := api.Reminders.List()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "failed to load reminders", err)
		return
	}

	// The store may hand back its cached slice; sort a copy so concurrent
	// requests never reorder shared data under each other.
	reminders = append([]models.Reminder(nil), reminders...)

	// Soonest due first; broken timestamps sink to the bottom.
	sort.SliceStable(reminders, func(i, j int) bool {
		ri, rj := reminders[i], reminders[j]
		if ri.DueAt.IsZero() != rj.DueAt.IsZero() {
			return rj.DueAt.IsZero()
		}
		return ri.DueAt.Before(rj.DueAt)
	})

	now := timeutil.Now()
	views := make([]ReminderView, 0, len(reminders))
	for _, r := range reminders {
		view := ReminderView{
			ID:      r.ID,
			Email:   r.Email,
			Subject: r.Subject,
			Status:  string(r.Status),
		}
		if r.DueAt.IsZero() {
			view.ReminderTime = r.DueRaw
			view.TimeLeft = "Invalid time"
		} else {
			view.ReminderTime = timeutil.FormatDisplay(r.DueAt)
			view.TimeLeft = timeutil.TimeLeft(r.DueAt, now)
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"reminders": views, "count": len(views)})
}

// SweepNow is the manual "send due reminders" button.
func (api *API) SweepNow(c *gin.Context) {
	api.runSweep(c)
}

// CronTrigger lets an external scheduler invoke the sweep over plain
// HTTP: GET /cron?cron_trigger=true. The uptime service holds no
// session, so this endpoint is deliberately outside the auth gate; it
// exposes nothing but sweep counts.
func (api *API) CronTrigger(c *gin.Context) {
	if c.Query("cron_trigger") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing cron_trigger=true"})
		return
	}
	api.runSweep(c)
}

func (api *API) runSweep(c *gin.Context) {
	result, err := api.Sweeper.Sweep()
	switch {
	case errors.Is(err, services.ErrSweepInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "a sweep is already running"})
	case err != nil:
		handleError(c, http.StatusInternalServerError, "sweep failed", err)
	default:
		c.JSON(http.StatusOK, result)
	}
}

// Analytics serves the dashboard overview cards for both record kinds.
func (api *API) Analytics(c *gin.Context) {
	reminders, err := api.Reminders.List()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "failed to load reminders", err)
		return
	}
	companies, err := api.Companies.List()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "failed to load companies", err)
		return
	}

	now := timeutil.Now()
	c.JSON(http.StatusOK, gin.H{
		"reminders": services.ReminderAnalytics(reminders, now),
		"companies": services.AnalyzeCompanies(companies, now),
	})
}
