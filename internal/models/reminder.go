package models

import (
	"fmt"
	"time"

	"remindly/internal/timeutil"

	"github.com/google/uuid"
)

// ReminderStatus is the lifecycle state of a reminder in the record store.
type ReminderStatus string

const (
	// StatusPending means the reminder has not been delivered yet.
	StatusPending ReminderStatus = "Pending"
	// StatusProcessing marks a reminder claimed by a running sweep. It is
	// written just before the send so an overlapping sweep cannot pick the
	// same record up again.
	StatusProcessing ReminderStatus = "Processing"
	// StatusSent and StatusError are terminal. The sweep never touches
	// records in either state.
	StatusSent  ReminderStatus = "Sent"
	StatusError ReminderStatus = "Error"
)

// Field names of the reminders table in the record store.
const (
	FieldReminderID   = "ReminderID"
	FieldEmail        = "Email"
	FieldSubject      = "Subject"
	FieldMessage      = "Message"
	FieldReminderTime = "ReminderTime"
	FieldStatus       = "Status"
)

// Reminder is the typed view of one row of the reminders table.
type Reminder struct {
	// RecordID is the store-assigned row id, needed for updates.
	RecordID string `json:"record_id"`
	// ID is our own opaque token, assigned at creation.
	ID      string `json:"id"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	// DueAt is zero when DueRaw could not be parsed.
	DueAt time.Time `json:"due_at"`
	// DueRaw is the timestamp string exactly as stored, kept so a row with
	// a broken timestamp can still be shown and flagged.
	DueRaw string         `json:"-"`
	Status ReminderStatus `json:"status"`
}

// NewReminder builds a Pending reminder with a fresh ID and the due
// instant normalized to the reference timezone.
func NewReminder(email, subject, message string, dueAt time.Time) Reminder {
	return Reminder{
		ID:      uuid.NewString(),
		Email:   email,
		Subject: subject,
		Message: message,
		DueAt:   timeutil.Normalize(dueAt),
		Status:  StatusPending,
	}
}

// Fields maps the reminder to the store's flat key-value shape.
func (r Reminder) Fields() map[string]any {
	return map[string]any{
		FieldReminderID:   r.ID,
		FieldEmail:        r.Email,
		FieldSubject:      r.Subject,
		FieldMessage:      r.Message,
		FieldReminderTime: timeutil.Normalize(r.DueAt).Format(time.RFC3339),
		FieldStatus:       string(r.Status),
	}
}

// ReminderFromFields converts one untyped record from the store into a
// Reminder. This is the single parsing boundary between the store's
// string fields and the typed model: every missing or malformed field
// comes back as an explicit error or empty value here, never as a silent
// default deeper in the code. A malformed due timestamp yields the
// otherwise-populated reminder plus a non-nil error so callers can choose
// to skip (sweep) or flag (dashboard) the record.
func ReminderFromFields(recordID string, fields map[string]any) (Reminder, error) {
	r := Reminder{
		RecordID: recordID,
		ID:       stringField(fields, FieldReminderID),
		Email:    stringField(fields, FieldEmail),
		Subject:  stringField(fields, FieldSubject),
		Message:  stringField(fields, FieldMessage),
		DueRaw:   stringField(fields, FieldReminderTime),
		Status:   ReminderStatus(stringField(fields, FieldStatus)),
	}

	due, err := timeutil.ParseStored(r.DueRaw)
	if err != nil {
		return r, fmt.Errorf("record %s: bad due timestamp: %w", recordID, err)
	}
	r.DueAt = due
	return r, nil
}

// IsDue reports whether the reminder's due instant has passed. A reminder
// with an unparsable timestamp is never due.
func (r Reminder) IsDue(now time.Time) bool {
	if r.DueAt.IsZero() {
		return false
	}
	return !timeutil.Normalize(now).Before(timeutil.Normalize(r.DueAt))
}

// stringField reads a string field from an untyped record, tolerating
// absence and non-string values.
func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return s
}
