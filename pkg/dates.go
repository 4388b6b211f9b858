package pkg

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf returns the calendar day of t as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// WeekStart returns the Sunday starting the week of day.
func WeekStart(day time.Time) time.Time {
	day = DateOf(day)
	return day.AddDate(0, 0, -int(day.Weekday()))
}
