package util

import (
	"time"
)

// DateLayout is the canonical calendar day format used in partition keys
// and query parameters.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar day in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatDate renders a calendar day using DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayEnd returns the last second of the day containing t.
func DayEnd(t time.Time) time.Time {
	return DayStart(t).Add(24*time.Hour - time.Second)
}

// DaysBetween counts calendar days from 'from' to 'to' inclusive.
// Returns 0 when 'to' precedes 'from'.
func DaysBetween(from, to time.Time) int {
	f, t := DayStart(from), DayStart(to)
	if t.Before(f) {
		return 0
	}
	return int(t.Sub(f).Hours()/24) + 1
}

// DaysInRange lists each calendar day from 'from' to 'to' inclusive.
func DaysInRange(from, to time.Time) []time.Time {
	f, t := DayStart(from), DayStart(to)
	if t.Before(f) {
		return nil
	}
	days := make([]time.Time, 0, DaysBetween(f, t))
	for d := f; !d.After(t); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
