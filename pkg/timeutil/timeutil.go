// Package timeutil provides time helpers for the Africa/Casablanca timezone,
// the "HH:mm" clock format used by timetables and the ISO date strings used
// by attendance sheets and calendar events.
// No external dependencies - uses only standard library.
package timeutil

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

// CasablancaTZ is the institution timezone. Falls back to a fixed UTC+1 zone
// when the tzdata database is not available on the host.
var CasablancaTZ = loadCasablanca()

func loadCasablanca() *time.Location {
	loc, err := time.LoadLocation("Africa/Casablanca")
	if err != nil {
		return time.FixedZone("Africa/Casablanca", 60*60)
	}
	return loc
}

// Now returns the current time in Casablanca timezone.
func Now() time.Time {
	return time.Now().In(CasablancaTZ)
}

// ToCasablanca converts a time to Casablanca timezone.
func ToCasablanca(t time.Time) time.Time {
	return t.In(CasablancaTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Casablanca timezone.
func StartOfDay(t time.Time) time.Time {
	c := ToCasablanca(t)
	return time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, CasablancaTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Casablanca timezone.
func EndOfDay(t time.Time) time.Time {
	c := ToCasablanca(t)
	return time.Date(c.Year(), c.Month(), c.Day(), 23, 59, 59, 999999999, CasablancaTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in Casablanca timezone.
func StartOfWeek(t time.Time) time.Time {
	c := ToCasablanca(t)
	weekday := int(c.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(c.AddDate(0, 0, -(weekday - 1)))
}

// ══════════════════════════════════════════════════════════════════════════════
// CLOCK ("HH:mm")
// ══════════════════════════════════════════════════════════════════════════════

// School day bounds, minutes since midnight.
const (
	SchoolDayStart = 8 * 60
	SchoolDayEnd   = 23 * 60
)

// ErrInvalidClock is returned when a string is not a valid "HH:mm" time.
var ErrInvalidClock = errors.New("timeutil: clock must be HH:mm")

// ParseClock parses "HH:mm" into minutes since midnight. Exactly two digits
// are required on each side so that stored values sort as strings.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClock
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidClock
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:mm".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// WithinSchoolDay reports whether the clock value lies in [08:00, 23:00].
func WithinSchoolDay(minutes int) bool {
	return minutes >= SchoolDayStart && minutes <= SchoolDayEnd
}

// ══════════════════════════════════════════════════════════════════════════════
// DATES
// ══════════════════════════════════════════════════════════════════════════════

// ISODateLayout is the layout of attendance and exam dates.
const ISODateLayout = "2006-01-02"

// dateTimeLayouts are tried in order by ParseDateTime. The form without
// seconds is what browser datetime-local inputs produce.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	ISODateLayout,
}

// ParseISODate parses a "YYYY-MM-DD" date in Casablanca timezone.
func ParseISODate(value string) (time.Time, error) {
	return time.ParseInLocation(ISODateLayout, value, CasablancaTZ)
}

// ISODate formats a time as "YYYY-MM-DD" in Casablanca timezone.
func ISODate(t time.Time) string {
	return ToCasablanca(t).Format(ISODateLayout)
}

// ParseDateTime parses an ISO-8601 datetime in any of the accepted layouts.
// Values without an offset are interpreted in Casablanca timezone.
func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, CasablancaTZ); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timeutil: unrecognized datetime %q", value)
}

// FromUnixMilli converts a Unix millisecond timestamp to Casablanca time.
func FromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).In(CasablancaTZ)
}

// FormatDate renders a date for display in the given UI language.
func FormatDate(t time.Time, language string) string {
	c := ToCasablanca(t)
	if language == "en" {
		return c.Format("01/02/2006")
	}
	return c.Format("02/01/2006")
}

// FormatDateTime renders a date and time for display in the given UI language.
func FormatDateTime(t time.Time, language string) string {
	c := ToCasablanca(t)
	if language == "en" {
		return c.Format("01/02/2006 3:04 PM")
	}
	return c.Format("02/01/2006 15:04")
}

// WeekdayNameFr returns the French weekday name for a 0-6 index (0 = Sunday).
func WeekdayNameFr(day int) string {
	names := [...]string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}
	if day < 0 || day > 6 {
		return ""
	}
	return names[day]
}
