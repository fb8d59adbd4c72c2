// Package deadline derives PERM case deadlines from stage dates and ranks them
// by urgency. Every function is pure: the reference date is always passed in.
package deadline

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used for every stage date.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// ParseDate parses an ISO yyyy-MM-dd date as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t, nil
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts an ISO date by n calendar days.
func AddDays(raw string, n int) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the signed number of calendar days from `from` to `to`.
// The result is negative when `to` precedes `from`.
func DaysBetween(from, to string) (int, error) {
	start, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return daysBetween(start, end), nil
}

// Both values are UTC midnights, so the difference is an exact multiple of a day.
func daysBetween(start, end time.Time) int {
	return int(end.Sub(start) / day)
}

// Today returns the calendar date of now in loc, the way callers should
// derive the reference date passed into Resolve.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// latest returns the latest of the parseable dates, ignoring nil and malformed values.
func latest(values ...*string) (time.Time, bool) {
	var (
		result time.Time
		found  bool
	)
	for _, v := range values {
		t, ok := parseOptional(v)
		if !ok {
			continue
		}
		if !found || t.After(result) {
			result = t
			found = true
		}
	}
	return result, found
}

// earliest returns the earliest of the parseable dates, ignoring nil and malformed values.
func earliest(values ...*string) (time.Time, bool) {
	var (
		result time.Time
		found  bool
	)
	for _, v := range values {
		t, ok := parseOptional(v)
		if !ok {
			continue
		}
		if !found || t.Before(result) {
			result = t
			found = true
		}
	}
	return result, found
}

func parseOptional(v *string) (time.Time, bool) {
	if v == nil || *v == "" {
		return time.Time{}, false
	}
	t, err := ParseDate(*v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func isSet(v *string) bool {
	return v != nil && *v != ""
}
