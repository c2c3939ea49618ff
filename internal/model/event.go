package model

import "time"

type EventAvailability string

type EventStatus string

const (
	EventAvailabilityBusy EventAvailability = "busy"

	EventStatusConfirmed EventStatus = "confirmed"
)

// Alarm is a reminder attached to an exported calendar event.
type Alarm struct {
	RelativeOffsetMinutes int `json:"relativeOffsetMinutes"`
}

// CalendarEvent is the device-calendar equivalent of an appointment. It is
// deliberately stripped of everything but the time slot: no description,
// comment, location or participants leave the record system. The ID is a
// one-way hash of the appointment id and the subject id, so re-exporting the
// same appointment is idempotent and ids never collide across subjects.
type CalendarEvent struct {
	ID           string            `json:"id" db:"id"`
	CalendarID   string            `json:"calendarId" db:"calendar_id"`
	Title        string            `json:"title" db:"title"`
	StartDate    time.Time         `json:"startDate" db:"start_date"`
	EndDate      time.Time         `json:"endDate" db:"end_date"`
	AllDay       bool              `json:"allDay" db:"all_day"`
	Availability EventAvailability `json:"availability" db:"availability"`
	Status       EventStatus       `json:"status" db:"status"`
	Alarms       []Alarm           `json:"alarms,omitempty" db:"-"`
}

// Preferences is the persisted UI preference state: which device calendar
// receives exports and whether the background sync is enabled.
type Preferences struct {
	CalendarID          string `json:"calendarId" db:"calendar_id"`
	CalendarSyncEnabled bool   `json:"calendarSyncEnabled" db:"calendar_sync_enabled"`
}
