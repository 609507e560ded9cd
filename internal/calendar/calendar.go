// Package calendar buckets timestamps into civil days at a fixed UTC offset.
//
// Day keys are YYYY-MM-DD strings. They compare lexicographically in the same
// order as the days they name, so callers may sort or compare them directly.
// The host time zone is never consulted.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	KeyLayout = "2006-01-02"
	Day       = 24 * time.Hour

	DefaultOffsetHours = 3
)

// Zone returns the fixed location for offsetHours east of UTC.
func Zone(offsetHours int) *time.Location {
	if offsetHours == 0 {
		return time.UTC
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}

// DayKey returns the civil day containing t.
func DayKey(t time.Time, offsetHours int) string {
	return t.In(Zone(offsetHours)).Format(KeyLayout)
}

// ParseKey validates a user supplied key and returns it normalized.
func ParseKey(key string) (string, error) {
	t, err := time.Parse(KeyLayout, strings.TrimSpace(key))
	if err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", key)
	}
	return t.Format(KeyLayout), nil
}

// StartOfDay returns the instant the civil day begins.
func StartOfDay(key string, offsetHours int) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, Zone(offsetHours))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", key)
	}
	return t, nil
}

// NextBoundary returns the first civil-day boundary strictly after t.
func NextBoundary(t time.Time, offsetHours int) time.Time {
	local := t.In(Zone(offsetHours))
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, local.Location())
}

// AddDays shifts a valid key by n days. An invalid key is returned unchanged.
func AddDays(key string, n int) string {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(KeyLayout)
}

// DaysBetween returns to minus from in whole days.
func DaysBetween(from, to string) int {
	a, errA := time.Parse(KeyLayout, from)
	b, errB := time.Parse(KeyLayout, to)
	if errA != nil || errB != nil {
		return 0
	}
	return int(b.Sub(a) / Day)
}

// KeysEnding returns n consecutive keys, oldest first, ending at key.
func KeysEnding(key string, n int) []string {
	if n <= 0 {
		return nil
	}
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = AddDays(key, i-(n-1))
	}
	return keys
}
