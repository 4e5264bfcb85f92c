package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format the backend accepts.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"02/01/2006",
}

// ParseDate parses the date formats emitted by the backend. Values without
// an explicit zone are read in loc. The boolean is false for empty or
// malformed input.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDatePtr is ParseDate for optional fields.
func ParseDatePtr(raw *string, loc *time.Location) (time.Time, bool) {
	if raw == nil {
		return time.Time{}, false
	}
	return ParseDate(*raw, loc)
}

// FormatDisplayDate renders a backend date as "02 Jan 2006", falling back
// to the raw value when it cannot be parsed.
func FormatDisplayDate(raw string, loc *time.Location) string {
	t, ok := ParseDate(raw, loc)
	if !ok {
		return strings.TrimSpace(raw)
	}
	return t.Format("02 Jan 2006")
}
