// Package calendar turns a month's worth of fetched appointments into the
// state the calendar UI renders: per-day markers and the list for the
// selected day. Every pass is a full recompute so a marker map never carries
// entries from a previous month.
package calendar

import (
	"time"

	"github.com/Kiandes/P27-firecard/internal/dateutil"
	"github.com/Kiandes/P27-firecard/internal/model"
)

// DayMarker is the per-date UI hint for the calendar grid.
type DayMarker struct {
	HasAppointment bool `json:"hasAppointment"`
	Selected       bool `json:"selected"`
}

// DayMarkers maps YYYY-MM-DD calendar dates to their marker state.
type DayMarkers map[string]DayMarker

// Reconcile computes the marker map and the selected day's appointment list
// from the month's appointments. Appointments keep their input order, which
// the server already sorted by start date. The selected date always gets an
// entry, marked selected, whether or not anything is booked on it.
func Reconcile(monthly []model.Appointment, selectedDate string) (DayMarkers, []model.Appointment) {
	markers := make(DayMarkers, len(monthly)+1)
	daily := make([]model.Appointment, 0)

	for _, appointment := range monthly {
		if appointment.Start == nil {
			continue
		}
		date := dateutil.FormatISODate(*appointment.Start)
		if date == selectedDate {
			daily = append(daily, appointment)
		}
		marker := markers[date]
		marker.HasAppointment = true
		markers[date] = marker
	}

	selected := markers[selectedDate]
	selected.Selected = true
	markers[selectedDate] = selected

	return markers, daily
}

// AnchorDate resolves the date a month navigation lands on: moving to the
// month that is currently running anchors on today, any other month anchors
// on its first day.
func AnchorDate(target, now time.Time) time.Time {
	if dateutil.SameMonth(target, now) {
		return now
	}
	local := target.Local()
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.Local)
}
