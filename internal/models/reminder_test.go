package models

import (
	"testing"
	"time"

	"remindly/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderFieldsRoundTrip(t *testing.T) {
	due := time.Date(2025, 1, 1, 9, 0, 0, 0, timeutil.Location())
	r := NewReminder("user@example.com", "Pay bill", "The electricity bill is due.", due)

	require.NotEmpty(t, r.ID)
	assert.Equal(t, StatusPending, r.Status)

	fields := r.Fields()
	assert.Equal(t, "user@example.com", fields[FieldEmail])
	assert.Equal(t, "Pending", fields[FieldStatus])
	assert.Equal(t, "2025-01-01T09:00:00+05:30", fields[FieldReminderTime])

	back, err := ReminderFromFields("rec123", fields)
	require.NoError(t, err)
	assert.Equal(t, "rec123", back.RecordID)
	assert.Equal(t, r.ID, back.ID)
	assert.True(t, back.DueAt.Equal(due))
}

func TestReminderFromFieldsBadTimestamp(t *testing.T) {
	r, err := ReminderFromFields("rec1", map[string]any{
		FieldEmail:        "user@example.com",
		FieldSubject:      "Hello",
		FieldReminderTime: "not-a-date",
		FieldStatus:       "Pending",
	})
	require.Error(t, err)
	// The rest of the row survives so the dashboard can flag it.
	assert.Equal(t, "user@example.com", r.Email)
	assert.Equal(t, "not-a-date", r.DueRaw)
	assert.True(t, r.DueAt.IsZero())
	assert.False(t, r.IsDue(time.Now()))
}

func TestReminderFromFieldsMissingFields(t *testing.T) {
	r, err := ReminderFromFields("rec2", map[string]any{})
	require.Error(t, err)
	assert.Empty(t, r.Email)
	assert.Empty(t, r.DueRaw)
}

func TestReminderIsDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 1, 0, timeutil.Location())
	r := NewReminder("a@b.c", "s", "m", time.Date(2025, 1, 1, 9, 0, 0, 0, timeutil.Location()))
	assert.True(t, r.IsDue(now))
	assert.True(t, r.IsDue(r.DueAt)) // due exactly at the boundary
	assert.False(t, r.IsDue(r.DueAt.Add(-time.Second)))
}

func TestCompanyFromFields(t *testing.T) {
	fields := map[string]any{
		FieldISIN:       "INE123A01016",
		FieldARN:        "ARN-4521",
		FieldIssuerName: "Acme Capital",
		FieldAmount:     float64(125000),
		DueSlotField(1): "2025-06-01T00:00:00+05:30",
		DueSlotField(5): "2025-03-01T00:00:00+05:30",
		DueSlotField(7): "garbage", // dropped, row still usable
	}
	c := CompanyFromFields("recC", fields)
	assert.Equal(t, "INE123A01016", c.ISIN)
	assert.Equal(t, 125000.0, c.Amount)
	require.Len(t, c.DueDates, 2)
	// Slots come back sorted regardless of column order.
	assert.True(t, c.DueDates[0].Before(c.DueDates[1]))

	now := time.Date(2025, 4, 1, 0, 0, 0, 0, timeutil.Location())
	next, ok := c.NextDue(now)
	require.True(t, ok)
	assert.Equal(t, time.June, next.Month())

	_, ok = c.NextDue(now.AddDate(1, 0, 0))
	assert.False(t, ok)
}

func TestCompanyAmountAsString(t *testing.T) {
	c := CompanyFromFields("recC", map[string]any{FieldAmount: " 99.50 "})
	assert.Equal(t, 99.5, c.Amount)
	c = CompanyFromFields("recC", map[string]any{FieldAmount: "not-a-number"})
	assert.Equal(t, 0.0, c.Amount)
}

func TestCompanyMatches(t *testing.T) {
	c := Company{ISIN: "INE123A01016", ARN: "ARN-4521", IssuerName: "Acme Capital"}
	assert.True(t, c.Matches("ine123"))
	assert.True(t, c.Matches("acme"))
	assert.True(t, c.Matches("4521"))
	assert.False(t, c.Matches("zenith"))
}

func TestSessionLifecycle(t *testing.T) {
	now := time.Now()
	s := NewSession("sess1", now)
	assert.Equal(t, StateAnonymous, s.State)
	assert.False(t, s.Locked())
	assert.True(t, s.OTPExpired(now)) // no code issued yet

	s.State = StateCredentialsVerified
	s.OTPCode = "123456"
	s.OTPExpiry = now.Add(OTPValidity)
	s.OTPAttempts = 2
	s.LoginAttempts = 3

	assert.False(t, s.OTPExpired(now.Add(4*time.Minute)))
	assert.True(t, s.OTPExpired(now.Add(6*time.Minute)))

	s.ResetAuth()
	assert.Equal(t, StateAnonymous, s.State)
	assert.Empty(t, s.OTPCode)
	assert.Zero(t, s.OTPAttempts)
	// Lockout counting survives an auth reset.
	assert.Equal(t, 3, s.LoginAttempts)
}
