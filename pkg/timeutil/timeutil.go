// Package timeutil provides calendar-day arithmetic for Pomodoro Focus Hub.
// All streak and chart logic uses a single authoritative notion of "day":
// a calendar date in UTC. Client clocks and local timezones are never
// consulted, so two requests from different timezones always agree on
// which day a completion belongs to.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// Clock supplies the current time. Production code uses SystemClock;
// tests inject a fixed clock so streak logic is reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant. Intended for tests.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.At.UTC()
}

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// DateOf truncates a time to its calendar date (00:00:00 UTC).
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Date creates a UTC date with zero time-of-day.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two times fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// DaysBetween returns the number of whole calendar days from a to b.
// Positive when b is after a. Time-of-day components are ignored.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// StartOfDay returns 00:00:00 UTC of the given day.
func StartOfDay(t time.Time) time.Time {
	return DateOf(t)
}

// EndOfDay returns 23:59:59.999999999 UTC of the given day.
func EndOfDay(t time.Time) time.Time {
	return DateOf(t).Add(24*time.Hour - time.Nanosecond)
}

// StartOfMonth returns the first day of the month at 00:00:00 UTC.
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// IsToday reports whether t falls on the current UTC date.
func IsToday(t time.Time) bool {
	return SameDay(t, Now())
}

// IsYesterday reports whether t falls on the previous UTC date.
func IsYesterday(t time.Time) bool {
	return SameDay(t, Now().AddDate(0, 0, -1))
}

// FormatDate renders a date as "2006-01-02". This is the canonical
// serialized form of the last session date in the progress store.
func FormatDate(t time.Time) string {
	return DateOf(t).Format("2006-01-02")
}

// ParseDate parses a "2006-01-02" date into a UTC time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid date %q: %w", s, err)
	}
	return t, nil
}

// WeekdayLabel returns the short weekday token used by the weekly chart
// (e.g. "Mon", "Tue").
func WeekdayLabel(t time.Time) string {
	return t.UTC().Format("Mon")
}

// MonthLabel returns the short month token used by the monthly chart
// (e.g. "Jan 2026").
func MonthLabel(t time.Time) string {
	return t.UTC().Format("Jan 2006")
}

// MonthKey returns the "2006-01" bucket key for monthly aggregation.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// FormatDuration renders a focus duration in a human-friendly form
// ("2h 30m", "45m") for dashboard summaries.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute

	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}
