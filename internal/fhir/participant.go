package fhir

import "github.com/Kiandes/P27-firecard/internal/model"

// Respond sets the response status of the participant whose actor is
// Patient/<subjectID>. When no participant matches, the appointment is
// returned unchanged: the caller simply is not a recognized participant,
// which is a no-op rather than a failure. The input is never mutated.
func Respond(appointment model.Appointment, subjectID string, status model.ParticipationStatus) model.Appointment {
	ref := "Patient/" + subjectID
	for i, participant := range appointment.Participant {
		if participant.Actor == nil || participant.Actor.Reference != ref {
			continue
		}
		participants := make([]model.Participant, len(appointment.Participant))
		copy(participants, appointment.Participant)
		participants[i].Status = status
		appointment.Participant = participants
		break
	}
	return appointment
}

// Cancel marks the appointment itself as cancelled. This is a different state
// dimension than a participant declining: participant statuses are left
// untouched.
func Cancel(appointment model.Appointment) model.Appointment {
	appointment.Status = model.AppointmentStatusCancelled
	return appointment
}

// RespondedParticipants returns the human participants that have responded,
// in appointment order. Pending invitees and the Location entry are omitted;
// this feeds the participant list the UI shows on an appointment.
func RespondedParticipants(appointment model.Appointment) []model.Participant {
	var responded []model.Participant
	for _, participant := range appointment.Participant {
		if participant.Actor == nil || participant.Status == model.ParticipationStatusNeedsAction {
			continue
		}
		if participant.Actor.Type == resourceTypeLocation {
			continue
		}
		responded = append(responded, participant)
	}
	return responded
}
