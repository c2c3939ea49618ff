// Package dateutil holds the date formats shared by the calendar, the codec
// and the HTTP facade. Calendar dates (YYYY-MM-DD) always use the local fold
// of the underlying instant, so an appointment lands on the same day the
// device calendar would show it on.
package dateutil

import (
	"math"
	"strconv"
	"time"
)

const (
	displayLayout   = "02.01.2006"
	isoDateLayout   = "2006-01-02"
	yearMonthLayout = "2006-01"
	clockLayout     = "15:04"
)

// FormatDate returns the DD.MM.YYYY representation, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayLayout)
}

// FormatISODate returns the YYYY-MM-DD representation, or "" for the zero time.
func FormatISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(isoDateLayout)
}

// FormatYearMonth returns the YYYY-MM representation, or "" for the zero time.
func FormatYearMonth(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(yearMonthLayout)
}

// FormatClock returns the HH:mm representation, or "" for the zero time.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(clockLayout)
}

// FormatInstant returns the FHIR instant representation, or "" for the zero time.
func FormatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// MinutesBetween returns the difference between two instants rounded to whole
// minutes, as the string the appointment wire format carries. Either input
// being the zero time yields "".
func MinutesBetween(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return ""
	}
	return strconv.Itoa(int(math.Round(end.Sub(start).Minutes())))
}

// ParseISODate parses a YYYY-MM-DD calendar date in the local time zone.
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(isoDateLayout, s, time.Local)
}

// ParseYearMonth parses a YYYY-MM month in the local time zone.
func ParseYearMonth(s string) (time.Time, error) {
	return time.ParseInLocation(yearMonthLayout, s, time.Local)
}

// SameMonth reports whether two instants fall in the same local calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Local().Year() == b.Local().Year() && a.Local().Month() == b.Local().Month()
}
