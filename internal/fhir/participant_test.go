package fhir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiandes/P27-firecard/internal/model"
)

func invitedAppointment() model.Appointment {
	return model.Appointment{
		ResourceType: "Appointment",
		Status:       model.AppointmentStatusProposed,
		Participant: []model.Participant{
			{
				Status: model.ParticipationStatusAccepted,
				Actor:  &model.Reference{Reference: "Patient/owner-1"},
			},
			{
				Status: model.ParticipationStatusNeedsAction,
				Actor:  &model.Reference{Reference: "Patient/guest-2"},
			},
			{
				Status: model.ParticipationStatusAccepted,
				Actor:  &model.Reference{Reference: "#loc-1", Type: "Location"},
			},
		},
	}
}

func TestRespond(t *testing.T) {
	t.Run("sets the matching participant's status", func(t *testing.T) {
		updated := Respond(invitedAppointment(), "guest-2", model.ParticipationStatusTentative)

		assert.Equal(t, model.ParticipationStatusTentative, updated.Participant[1].Status)
		assert.Equal(t, model.ParticipationStatusAccepted, updated.Participant[0].Status)
	})

	t.Run("unknown subject leaves the appointment unchanged", func(t *testing.T) {
		original := invitedAppointment()
		updated := Respond(original, "stranger-9", model.ParticipationStatusAccepted)
		assert.Equal(t, original, updated)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		original := invitedAppointment()
		Respond(original, "guest-2", model.ParticipationStatusDeclined)
		assert.Equal(t, model.ParticipationStatusNeedsAction, original.Participant[1].Status)
	})
}

func TestCancel(t *testing.T) {
	t.Run("cancels the appointment, not the participants", func(t *testing.T) {
		updated := Cancel(invitedAppointment())

		assert.Equal(t, model.AppointmentStatusCancelled, updated.Status)
		require.Len(t, updated.Participant, 3)
		assert.Equal(t, model.ParticipationStatusAccepted, updated.Participant[0].Status)
		assert.Equal(t, model.ParticipationStatusNeedsAction, updated.Participant[1].Status)
	})
}

func TestRespondedParticipants(t *testing.T) {
	t.Run("omits pending invitees and the location entry", func(t *testing.T) {
		responded := RespondedParticipants(invitedAppointment())
		require.Len(t, responded, 1)
		assert.Equal(t, "Patient/owner-1", responded[0].Actor.Reference)
	})

	t.Run("includes declined and tentative responses", func(t *testing.T) {
		appointment := invitedAppointment()
		appointment.Participant[1].Status = model.ParticipationStatusDeclined
		responded := RespondedParticipants(appointment)
		require.Len(t, responded, 2)
	})
}
