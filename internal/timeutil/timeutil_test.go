package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []time.Time{
		time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)),
		time.Now(),
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.True(t, once.Equal(twice))
		assert.Equal(t, once.Location(), twice.Location())
		// Normalization never moves the instant, only the representation.
		assert.True(t, in.Equal(once))
	}
}

func TestParseStoredOffsets(t *testing.T) {
	got, err := ParseStored("2025-01-01T09:00:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", got.Location().String())
	assert.Equal(t, 9, got.Hour())

	// UTC value lands on the same instant, shifted to IST wall clock.
	got, err = ParseStored("2025-01-01T03:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 0, got.Minute())
}

func TestParseStoredNaiveIsIST(t *testing.T) {
	got, err := ParseStored("2025-01-01T09:00:00")
	require.NoError(t, err)
	_, offset := got.Zone()
	assert.Equal(t, 5*3600+30*60, offset)
	assert.Equal(t, 9, got.Hour())

	got, err = ParseStored("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Hour())
}

func TestParseStoredRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "not-a-date", "2025-13-45T99:00:00Z", "tomorrow"} {
		_, err := ParseStored(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestCombine(t *testing.T) {
	got, err := Combine("2025-01-01", "09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 30, got.Minute())
	_, offset := got.Zone()
	assert.Equal(t, 5*3600+30*60, offset)

	// Missing clock defaults to midnight.
	got, err = Combine("2025-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Hour())

	_, err = Combine("01/01/2025", "09:30")
	assert.Error(t, err)
}

func TestTimeLeft(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, Location())

	assert.Equal(t, "2d 3h 15m", TimeLeft(now.Add(51*time.Hour+15*time.Minute), now))
	assert.Equal(t, "3h 5m", TimeLeft(now.Add(3*time.Hour+5*time.Minute), now))
	assert.Equal(t, "45m", TimeLeft(now.Add(45*time.Minute), now))
	assert.Equal(t, "Due/Overdue", TimeLeft(now, now))
	assert.Equal(t, "Due/Overdue", TimeLeft(now.Add(-time.Minute), now))
}
