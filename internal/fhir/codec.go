// Package fhir builds and parses the FHIR R4 resources the scheduling client
// exchanges with the record system. Parsing is the trust boundary: anything
// that does not decode into the expected resource kind is dropped here, so
// callers never see partially decoded resources.
package fhir

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Kiandes/P27-firecard/internal/dateutil"
	"github.com/Kiandes/P27-firecard/internal/model"
)

const (
	// MIDATA resolves these identifiers to existing patients, or sends an
	// invitation when the address is unknown.
	IdentifierSystemInvitation = "http://midata.coop/identifier/patient-login-or-invitation"

	resourceTypeAppointment = "Appointment"
	resourceTypeLocation    = "Location"
)

// AppointmentInput is the user-supplied form content for a new appointment.
// ParticipantEmails is a single ";"-delimited string, matching the form field.
type AppointmentInput struct {
	Title             string
	ParticipantEmails string
	Start             time.Time
	End               time.Time
	Description       string
	AddressLine       string
	PostalCode        string
	City              string
	OwnerEmail        string
}

// BuildAppointment assembles a proposed appointment from form input. The
// owner is always the first participant and starts accepted; invited
// participants start at needs-action. An empty address yields no embedded
// Location and no Location participant. The minutes duration is derived once
// here and carried on the wire so receivers see a value consistent with the
// start and end instants.
func BuildAppointment(in AppointmentInput) model.Appointment {
	var location *model.Location
	if in.AddressLine != "" {
		location = &model.Location{
			ResourceType: resourceTypeLocation,
			ID:           uuid.NewString(),
			Address: &model.Address{
				Line:       []string{in.AddressLine},
				PostalCode: in.PostalCode,
				City:       in.City,
			},
		}
	}

	var emails []string
	if in.ParticipantEmails != "" {
		for _, email := range strings.Split(in.ParticipantEmails, ";") {
			email = strings.TrimSpace(email)
			if email != "" {
				emails = append(emails, email)
			}
		}
	}

	start := in.Start
	end := in.End
	appointment := model.Appointment{
		ResourceType:    resourceTypeAppointment,
		Status:          model.AppointmentStatusProposed,
		Description:     in.Title,
		Comment:         in.Description,
		Start:           &start,
		End:             &end,
		MinutesDuration: dateutil.MinutesBetween(in.Start, in.End),
		Participant:     buildParticipants(in.OwnerEmail, emails, location),
	}

	if location != nil {
		raw, err := json.Marshal(location)
		if err == nil {
			appointment.Contained = []json.RawMessage{raw}
		}
	}

	return appointment
}

func buildParticipants(owner string, emails []string, location *model.Location) []model.Participant {
	participants := []model.Participant{{
		Status: model.ParticipationStatusAccepted,
		Actor: &model.Reference{
			Identifier: &model.Identifier{
				System: IdentifierSystemInvitation,
				Value:  owner,
			},
		},
	}}

	for _, email := range emails {
		participants = append(participants, model.Participant{
			Status: model.ParticipationStatusNeedsAction,
			Actor: &model.Reference{
				Identifier: &model.Identifier{
					System: IdentifierSystemInvitation,
					Value:  email,
				},
			},
		})
	}

	// Locations do not respond, so the entry is accepted from the start.
	if location != nil {
		participants = append(participants, model.Participant{
			Status: model.ParticipationStatusAccepted,
			Actor: &model.Reference{
				Reference: "#" + location.ID,
				Type:      resourceTypeLocation,
			},
		})
	}

	return participants
}

// ParseBundle extracts the appointments from a search-set bundle, preserving
// server order. Entries of other resource kinds and entries that fail to
// decode are skipped; a partial result beats a total failure here.
func ParseBundle(bundle *model.Bundle) []model.Appointment {
	if bundle == nil {
		return nil
	}

	appointments := make([]model.Appointment, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		if len(entry.Resource) == 0 {
			continue
		}

		var probe struct {
			ResourceType string `json:"resourceType"`
		}
		if err := json.Unmarshal(entry.Resource, &probe); err != nil || probe.ResourceType != resourceTypeAppointment {
			continue
		}

		var appointment model.Appointment
		if err := json.Unmarshal(entry.Resource, &appointment); err != nil {
			log.Warn().Err(err).Str("fullUrl", entry.FullURL).Msg("skipping malformed appointment entry")
			continue
		}
		appointments = append(appointments, appointment)
	}

	return appointments
}
