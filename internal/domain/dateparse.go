package domain

import (
	"strings"
	"time"
)

// monthAbbrevs is the fixed 3-letter English month table used by the
// DD-MMM-YY export format. Lookups are case-insensitive.
var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParsePickupDate turns a carrier date string into a UTC-midnight timestamp.
// Formats are tried in priority order: ISO date, day-month-year with a time
// portion (time discarded), day-MMM-2-digit-year, then generic ISO. It never
// fails: empty or unrecognized input yields the current clock time and
// ok=false so callers can count fallbacks.
func ParsePickupDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return clock.Now().UTC(), false
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}

	if t, err := time.Parse("02-01-2006 15:04", s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}

	if t, ok := parseDayMonYear(s); ok {
		return t, true
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}

	return clock.Now().UTC(), false
}

// parseDayMonYear handles the legacy "07-Jul-25" export form. Two-digit
// years are expanded by prefixing "20"; four-digit years pass through.
func parseDayMonYear(s string) (time.Time, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := parseIntStrict(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	month, found := monthAbbrevs[strings.ToLower(parts[1])]
	if !found {
		return time.Time{}, false
	}

	yearStr := parts[2]
	if len(yearStr) == 2 {
		yearStr = "20" + yearStr
	}
	year, err := parseIntStrict(yearStr)
	if err != nil || year < 2000 || year > 2999 {
		return time.Time{}, false
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}
