package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC calendar day.
func ParseDate(value string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s", value, DateLayout)
	}
	return day, nil
}

// TruncateDay drops the time of day, keeping the calendar date as seen in t's location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NightsBetween counts calendar days in [start, end). Negative when end precedes start.
func NightsBetween(start, end time.Time) int {
	s := TruncateDay(start)
	e := TruncateDay(end)
	return int(e.Sub(s).Hours() / 24)
}

// EnumerateDays lists every calendar day in [start, end).
func EnumerateDays(start, end time.Time) []time.Time {
	s := TruncateDay(start)
	e := TruncateDay(end)
	if !s.Before(e) {
		return nil
	}

	days := make([]time.Time, 0, NightsBetween(s, e))
	for d := s; d.Before(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
