package timeutil

import (
	"fmt"
	"time"

	// Embed the zone database so Asia/Kolkata loads even on images
	// without system tzdata.
	_ "time/tzdata"
)

// All stored timestamps and due comparisons use a single reference zone so
// a record written with one offset is never compared against a clock in
// another. The business runs on IST.
var ist *time.Location

func init() {
	var err error
	ist, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Cannot happen with the embedded zone database.
		panic(fmt.Sprintf("failed to load Asia/Kolkata: %v", err))
	}
}

// Location returns the reference timezone (IST).
func Location() *time.Location {
	return ist
}

// Now returns the current instant in the reference timezone.
func Now() time.Time {
	return time.Now().In(ist)
}

// Normalize converts any instant to the reference timezone. Applying it
// twice is the same as applying it once.
func Normalize(t time.Time) time.Time {
	return t.In(ist)
}

// storedLayouts are the shapes timestamps take in the record store. The
// first is what we write; the naive forms appear in rows entered by hand
// directly in the store UI and are treated as IST wall-clock times.
var storedLayouts = []struct {
	layout string
	naive  bool
}{
	{time.RFC3339, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02 15:04", true},
	{"2006-01-02", true},
}

// ParseStored parses a timestamp string read back from the record store
// and returns it in the reference timezone. Returns an error for anything
// unparsable; callers skip or flag the record rather than crash.
func ParseStored(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, l := range storedLayouts {
		var t time.Time
		var err error
		if l.naive {
			t, err = time.ParseInLocation(l.layout, value, ist)
		} else {
			t, err = time.Parse(l.layout, value)
		}
		if err == nil {
			return t.In(ist), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", value)
}

// Combine builds an IST instant from separate date and clock form fields
// ("2006-01-02" and "15:04"). Form input has no timezone, so the wall
// clock is taken to be IST.
func Combine(date, clock string) (time.Time, error) {
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, ist)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// TimeLeft renders the remaining time until due as a compact string for
// the dashboard table. Anything at or past due reads "Due/Overdue".
func TimeLeft(due, now time.Time) string {
	left := due.Sub(now)
	if left <= 0 {
		return "Due/Overdue"
	}
	days := int(left.Hours()) / 24
	hours := int(left.Hours()) % 24
	minutes := int(left.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatDisplay renders an instant the way the dashboard shows it,
// e.g. "02 January, 2025 at 09:30 AM IST".
func FormatDisplay(t time.Time) string {
	return t.In(ist).Format("02 January, 2006 at 03:04 PM") + " IST"
}
