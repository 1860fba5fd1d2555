package services

import (
	"testing"
	"time"

	"remindly/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestReminderAnalyticsBuckets(t *testing.T) {
	loc := ist(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, loc)

	at := func(days int) time.Time { return now.AddDate(0, 0, days) }

	broken := reminderAt("broken", time.Time{}, models.StatusPending)
	broken.DueRaw = "not-a-date"

	buckets := ReminderAnalytics([]models.Reminder{
		reminderAt("a", at(-2), models.StatusSent), // overdue still counts as near-term
		reminderAt("b", at(3), models.StatusPending),
		reminderAt("c", at(20), models.StatusPending),
		reminderAt("d", at(60), models.StatusPending),
		reminderAt("e", at(150), models.StatusPending),
		reminderAt("f", at(400), models.StatusPending),
		broken,
	}, now)

	assert.Equal(t, 2, buckets.OneWeek)
	assert.Equal(t, 1, buckets.OneMonth)
	assert.Equal(t, 1, buckets.ThreeMonths)
	assert.Equal(t, 1, buckets.SixMonths)
	assert.Equal(t, 1, buckets.SixMonthsPlus)
	assert.Equal(t, 1, buckets.InvalidSkipped)
}

func TestReminderAnalyticsBoundaries(t *testing.T) {
	loc := ist(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, loc)

	buckets := ReminderAnalytics([]models.Reminder{
		reminderAt("week", now.AddDate(0, 0, 7), models.StatusPending),
		reminderAt("month", now.AddDate(0, 0, 30), models.StatusPending),
		reminderAt("quarter", now.AddDate(0, 0, 90), models.StatusPending),
		reminderAt("half", now.AddDate(0, 0, 180), models.StatusPending),
		reminderAt("beyond", now.AddDate(0, 0, 181), models.StatusPending),
	}, now)

	assert.Equal(t, 1, buckets.OneWeek)
	assert.Equal(t, 1, buckets.OneMonth)
	assert.Equal(t, 1, buckets.ThreeMonths)
	assert.Equal(t, 1, buckets.SixMonths)
	assert.Equal(t, 1, buckets.SixMonthsPlus)
}

func TestAnalyzeCompanies(t *testing.T) {
	loc := ist(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, loc)

	summary := AnalyzeCompanies([]models.Company{
		{
			ISIN:   "INE1",
			Amount: 1000,
			DueDates: []time.Time{
				now.AddDate(0, 0, -10), // past slot ignored
				now.AddDate(0, 0, 5),
				now.AddDate(0, 0, 45),
			},
		},
		{
			ISIN:     "INE2",
			Amount:   500,
			DueDates: []time.Time{now.AddDate(0, 0, 200)},
		},
		{ISIN: "INE3", Amount: 250}, // no slots at all
	}, now)

	assert.Equal(t, 3, summary.Companies)
	assert.Equal(t, 1750.0, summary.TotalAmount)
	assert.Equal(t, 1, summary.UpcomingDue.OneWeek)
	assert.Equal(t, 0, summary.UpcomingDue.OneMonth)
	assert.Equal(t, 1, summary.UpcomingDue.ThreeMonths)
	assert.Equal(t, 1, summary.UpcomingDue.SixMonthsPlus)
}
