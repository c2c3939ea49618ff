package calendar

import (
	"time"

	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/util"
)

// Exported events carry a fixed title so nothing medical leaves the record
// system.
const exportedEventTitle = "Booked Slot"

// ExportableEvent maps an appointment to its device-calendar equivalent,
// keeping only the time slot. The event id is the hash of the appointment id
// salted with the subject id: exporting the same appointment twice yields the
// same id, two subjects exporting the same appointment do not collide, and
// neither the FHIR id nor any email can be recovered from it.
func ExportableEvent(appointment model.Appointment, alarms []model.Alarm, calendarID, subjectID string) model.CalendarEvent {
	var start, end time.Time
	if appointment.Start != nil {
		start = *appointment.Start
	}
	if appointment.End != nil {
		end = *appointment.End
	}

	return model.CalendarEvent{
		ID:           util.HashID(appointment.ID + subjectID),
		CalendarID:   calendarID,
		Title:        exportedEventTitle,
		StartDate:    start,
		EndDate:      end,
		AllDay:       false,
		Availability: model.EventAvailabilityBusy,
		Status:       model.EventStatusConfirmed,
		Alarms:       alarms,
	}
}
