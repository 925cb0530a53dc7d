package util

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultTimezone is the municipality's business timezone.
const DefaultTimezone = "Asia/Manila"

// ISOLayout renders instants the way stored ticket windows are written: UTC with milliseconds.
const ISOLayout = "2006-01-02T15:04:05.000Z"

var (
	bizMu       sync.RWMutex
	bizLocation *time.Location
)

// naiveLayouts are wall-clock forms submitted by datetime-local inputs; they are
// interpreted in the business timezone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// SetBusinessTimezone configures the location used for wall-clock input and year boundaries.
func SetBusinessTimezone(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load business timezone %q: %w", tz, err)
	}
	bizMu.Lock()
	bizLocation = loc
	bizMu.Unlock()
	return nil
}

// BusinessLocation returns the configured business timezone, defaulting to Asia/Manila.
func BusinessLocation() *time.Location {
	bizMu.RLock()
	loc := bizLocation
	bizMu.RUnlock()
	if loc != nil {
		return loc
	}
	if err := SetBusinessTimezone(""); err != nil {
		return time.UTC
	}
	return BusinessLocation()
}

// ParseDateTime parses a stored or submitted timestamp. The boolean is false when the
// value is empty or in no recognised form.
func ParseDateTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, BusinessLocation()); err == nil {
			return t, true
		}
	}
	// date-only strings are UTC midnight
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatISO renders t as an ISO-8601 UTC string with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// AddMonth adds one calendar month, normalising overflow the same way time.AddDate does.
func AddMonth(t time.Time) time.Time {
	return t.AddDate(0, 1, 0)
}

// EndOfYear returns Dec 31 23:59:59 of t's year in the business timezone.
func EndOfYear(t time.Time) time.Time {
	loc := BusinessLocation()
	local := t.In(loc)
	return time.Date(local.Year(), time.December, 31, 23, 59, 59, 0, loc)
}

// BusinessYear returns the calendar year of t in the business timezone.
func BusinessYear(t time.Time) int {
	return t.In(BusinessLocation()).Year()
}
