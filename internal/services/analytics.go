package services

import (
	"time"

	"remindly/internal/models"
	"remindly/internal/timeutil"
)

// DueBuckets counts records by how far out their due instant is. The
// windows match the dashboard cards: within a week, within a month, and
// so on; anything already due lands in the one-week bucket.
type DueBuckets struct {
	OneWeek        int `json:"1_week"`
	OneMonth       int `json:"1_month"`
	ThreeMonths    int `json:"3_months"`
	SixMonths      int `json:"6_months"`
	SixMonthsPlus  int `json:"6_months_plus"`
	InvalidSkipped int `json:"invalid_skipped"`
}

func (b *DueBuckets) add(due, now time.Time) {
	days := int(due.Sub(now).Hours() / 24)
	switch {
	case days <= 7:
		b.OneWeek++
	case days <= 30:
		b.OneMonth++
	case days <= 90:
		b.ThreeMonths++
	case days <= 180:
		b.SixMonths++
	default:
		b.SixMonthsPlus++
	}
}

// ReminderAnalytics buckets every reminder by time until due. Records
// with unparsable timestamps are counted separately and otherwise
// ignored.
func ReminderAnalytics(reminders []models.Reminder, now time.Time) DueBuckets {
	now = timeutil.Normalize(now)
	var buckets DueBuckets
	for _, r := range reminders {
		if r.DueAt.IsZero() {
			buckets.InvalidSkipped++
			continue
		}
		buckets.add(r.DueAt, now)
	}
	return buckets
}

// CompanyAnalytics summarizes the company/bill table for the dashboard
// cards: row count, total amount, and every future due-date slot
// bucketed by distance.
type CompanyAnalytics struct {
	Companies   int        `json:"companies"`
	TotalAmount float64    `json:"total_amount"`
	UpcomingDue DueBuckets `json:"upcoming_due"`
}

// AnalyzeCompanies builds the company dashboard summary. Past due-date
// slots are left out; only upcoming bills are counted.
func AnalyzeCompanies(companies []models.Company, now time.Time) CompanyAnalytics {
	now = timeutil.Normalize(now)
	summary := CompanyAnalytics{Companies: len(companies)}
	for _, c := range companies {
		summary.TotalAmount += c.Amount
		for _, due := range c.DueDates {
			if due.Before(now) {
				continue
			}
			summary.UpcomingDue.add(due, now)
		}
	}
	return summary
}
