package contact

import (
	"strings"
	"time"
)

// ISODate is the storage layout for calendar dates.
const ISODate = "2006-01-02"

const displayDate = "January 2, 2006"

// FormatDisplayDate renders "2025-01-05" as "January 5, 2025". The date
// is parsed without any timezone shift. Empty or malformed input yields "".
func FormatDisplayDate(isoDate string) string {
	t, ok := ParseDate(isoDate)
	if !ok {
		return ""
	}
	return t.Format(displayDate)
}

// ParseDate parses a calendar date, accepting a full RFC 3339 timestamp
// by keeping only its date part.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if len(raw) > len(ISODate) && raw[len(ISODate)] == 'T' {
		raw = raw[:len(ISODate)]
	}
	t, err := time.Parse(ISODate, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate returns the ISO form of a date, or "" when unparsable.
func NormalizeDate(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return t.Format(ISODate)
}

// AddDays offsets an ISO date by n calendar days.
func AddDays(isoDate string, n int) string {
	t, ok := ParseDate(isoDate)
	if !ok {
		return ""
	}
	return t.AddDate(0, 0, n).Format(ISODate)
}
