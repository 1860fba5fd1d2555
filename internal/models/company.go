package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"remindly/internal/timeutil"
)

// MaxDueSlots is the number of optional bill due-date columns a company
// row carries in the record store ("Due Date 1" .. "Due Date 72").
const MaxDueSlots = 72

// Field names of the companies table.
const (
	FieldISIN         = "ISIN"
	FieldARN          = "ARN"
	FieldIssuerName   = "IssuerName"
	FieldContactName  = "ContactName"
	FieldContactEmail = "ContactEmail"
	FieldContactPhone = "ContactPhone"
	FieldAddress      = "Address"
	FieldAmount       = "Amount"
)

// DueSlotField returns the store column name for due-date slot n (1-based).
func DueSlotField(n int) string {
	return fmt.Sprintf("Due Date %d", n)
}

// Company is one company/bill row. Duplicate ISINs are permitted; the
// store enforces no uniqueness and neither do we.
type Company struct {
	RecordID     string      `json:"record_id"`
	ISIN         string      `json:"isin"`
	ARN          string      `json:"arn"`
	IssuerName   string      `json:"issuer_name"`
	ContactName  string      `json:"contact_name"`
	ContactEmail string      `json:"contact_email"`
	ContactPhone string      `json:"contact_phone"`
	Address      string      `json:"address"`
	Amount       float64     `json:"amount"`
	DueDates     []time.Time `json:"due_dates"`
}

// Fields maps the company to the store's flat key-value shape. Empty due
// slots are omitted rather than written as empty strings.
func (c Company) Fields() map[string]any {
	fields := map[string]any{
		FieldISIN:         c.ISIN,
		FieldARN:          c.ARN,
		FieldIssuerName:   c.IssuerName,
		FieldContactName:  c.ContactName,
		FieldContactEmail: c.ContactEmail,
		FieldContactPhone: c.ContactPhone,
		FieldAddress:      c.Address,
		FieldAmount:       c.Amount,
	}
	for i, due := range c.DueDates {
		if i >= MaxDueSlots {
			break
		}
		fields[DueSlotField(i+1)] = timeutil.Normalize(due).Format(time.RFC3339)
	}
	return fields
}

// CompanyFromFields converts one untyped record into a Company. Unlike
// reminders, a company row stays usable with broken due slots: malformed
// slot values are dropped and the rest of the row is kept.
func CompanyFromFields(recordID string, fields map[string]any) Company {
	c := Company{
		RecordID:     recordID,
		ISIN:         stringField(fields, FieldISIN),
		ARN:          stringField(fields, FieldARN),
		IssuerName:   stringField(fields, FieldIssuerName),
		ContactName:  stringField(fields, FieldContactName),
		ContactEmail: stringField(fields, FieldContactEmail),
		ContactPhone: stringField(fields, FieldContactPhone),
		Address:      stringField(fields, FieldAddress),
		Amount:       numberField(fields, FieldAmount),
	}
	for i := 1; i <= MaxDueSlots; i++ {
		raw := stringField(fields, DueSlotField(i))
		if raw == "" {
			continue
		}
		due, err := timeutil.ParseStored(raw)
		if err != nil {
			continue
		}
		c.DueDates = append(c.DueDates, due)
	}
	sort.Slice(c.DueDates, func(i, j int) bool { return c.DueDates[i].Before(c.DueDates[j]) })
	return c
}

// NextDue returns the earliest due date at or after now, if any.
func (c Company) NextDue(now time.Time) (time.Time, bool) {
	now = timeutil.Normalize(now)
	for _, due := range c.DueDates {
		if !due.Before(now) {
			return due, true
		}
	}
	return time.Time{}, false
}

// Matches reports whether the query matches the ISIN, ARN, or issuer
// name, case-insensitively. Used for client-side narrowing on top of the
// store's formula filter.
func (c Company) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.ISIN), q) ||
		strings.Contains(strings.ToLower(c.ARN), q) ||
		strings.Contains(strings.ToLower(c.IssuerName), q)
}

// numberField reads a numeric field, tolerating the store returning it as
// a string.
func numberField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
