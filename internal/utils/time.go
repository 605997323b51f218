package utils

import (
	"fmt"
	"strings"
	"time"
)

const layoutDate = "2006-01-02"

// ParseDate parses YYYY-MM-DD (an RFC3339 timestamp is accepted too) and
// returns local midnight of that calendar day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "undefined" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.ParseInLocation(layoutDate, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return StartOfDay(t, loc), nil
}

// StartOfDay normalises t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatDate renders the calendar day of t as YYYY-MM-DD, ignoring zone.
func FormatDate(t time.Time) string {
	return t.Format(layoutDate)
}
