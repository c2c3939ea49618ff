package model

import (
	"encoding/json"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusProposed  AppointmentStatus = "proposed"
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusArrived   AppointmentStatus = "arrived"
	AppointmentStatusFulfilled AppointmentStatus = "fulfilled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoshow    AppointmentStatus = "noshow"
	AppointmentStatusCheckedIn AppointmentStatus = "checked-in"
	AppointmentStatusWaitlist  AppointmentStatus = "waitlist"
)

type ParticipationStatus string

const (
	ParticipationStatusAccepted    ParticipationStatus = "accepted"
	ParticipationStatusDeclined    ParticipationStatus = "declined"
	ParticipationStatusTentative   ParticipationStatus = "tentative"
	ParticipationStatusNeedsAction ParticipationStatus = "needs-action"
)

// Identifier is a FHIR business identifier scoped by a system URI.
type Identifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Reference points at another resource, either by relative URL
// (e.g. "Patient/123") or by local reference into contained resources
// (e.g. "#loc-id").
type Reference struct {
	Reference  string      `json:"reference,omitempty"`
	Type       string      `json:"type,omitempty"`
	Display    string      `json:"display,omitempty"`
	Identifier *Identifier `json:"identifier,omitempty"`
}

// Extension carries provider-specific metadata. Nested extensions are used by
// MIDATA to record the resource creator.
type Extension struct {
	URL            string      `json:"url"`
	Extension      []Extension `json:"extension,omitempty"`
	ValueReference *Reference  `json:"valueReference,omitempty"`
	ValueString    string      `json:"valueString,omitempty"`
}

type Meta struct {
	VersionID   string      `json:"versionId,omitempty"`
	LastUpdated *time.Time  `json:"lastUpdated,omitempty"`
	Extension   []Extension `json:"extension,omitempty"`
}

type Address struct {
	Line       []string `json:"line,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	City       string   `json:"city,omitempty"`
}

// Location is only ever embedded in the appointment that owns it; it is not
// independently addressable on the server.
type Location struct {
	ResourceType string   `json:"resourceType"`
	ID           string   `json:"id"`
	Address      *Address `json:"address,omitempty"`
}

// Participant is an invitee, the owner or the location of an appointment,
// with an independent response status.
type Participant struct {
	Status ParticipationStatus `json:"status"`
	Actor  *Reference          `json:"actor,omitempty"`
}

// Appointment is the FHIR R4 wire shape, restricted to the fields this client
// reads or writes. Contained resources are kept raw and decoded by resource
// kind at the parse boundary.
type Appointment struct {
	ResourceType       string            `json:"resourceType"`
	ID                 string            `json:"id,omitempty"`
	Meta               *Meta             `json:"meta,omitempty"`
	Status             AppointmentStatus `json:"status"`
	Description        string            `json:"description,omitempty"`
	Comment            string            `json:"comment,omitempty"`
	PatientInstruction string            `json:"patientInstruction,omitempty"`
	Start              *time.Time        `json:"start,omitempty"`
	End                *time.Time        `json:"end,omitempty"`
	MinutesDuration    string            `json:"minutesDuration,omitempty"`
	Participant        []Participant     `json:"participant,omitempty"`
	Contained          []json.RawMessage `json:"contained,omitempty"`
}

// ContainedLocation returns the embedded Location, or nil when the
// appointment was created without an address.
func (a *Appointment) ContainedLocation() *Location {
	for _, raw := range a.Contained {
		var probe struct {
			ResourceType string `json:"resourceType"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil || probe.ResourceType != "Location" {
			continue
		}
		var loc Location
		if err := json.Unmarshal(raw, &loc); err != nil {
			continue
		}
		return &loc
	}
	return nil
}

// Bundle is a wire-format container of resources returned by a search query.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type,omitempty"`
	Total        int           `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}
