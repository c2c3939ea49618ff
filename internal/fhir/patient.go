package fhir

import (
	"strings"
	"time"

	"github.com/Kiandes/P27-firecard/internal/model"
)

const (
	IdentifierSystemLogin    = "http://midata.coop/identifier/patient-login"
	IdentifierSystemMidataID = "http://midata.coop/identifier/midata-id"

	metadataExtensionURL = "http://midata.coop/extensions/metadata"
	creatorExtensionURL  = "creator"
)

// PatientEmail returns the login email address from the patient's identifiers.
func PatientEmail(patient *model.Patient) string {
	return identifierValue(patient, IdentifierSystemLogin)
}

// PatientMidataID returns the provider-assigned MIDATA id, if present.
func PatientMidataID(patient *model.Patient) string {
	return identifierValue(patient, IdentifierSystemMidataID)
}

func identifierValue(patient *model.Patient, system string) string {
	if patient == nil {
		return ""
	}
	for _, id := range patient.Identifier {
		if id.System == system {
			return id.Value
		}
	}
	return ""
}

// PatientDisplayName joins the given names and family name of the first name
// entry. MIDATA does not set HumanName.use, so the first entry is taken as
// the official name.
func PatientDisplayName(patient *model.Patient) string {
	if patient == nil || len(patient.Name) == 0 {
		return ""
	}
	name := patient.Name[0]
	parts := append([]string{}, name.Given...)
	if name.Family != "" {
		parts = append(parts, name.Family)
	}
	return strings.Join(parts, " ")
}

// PatientBirthDate parses the patient's birth date, returning the zero time
// when absent or malformed.
func PatientBirthDate(patient *model.Patient) time.Time {
	if patient == nil {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", patient.BirthDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsOwner reports whether the subject created the appointment, based on the
// creator reference inside the provider's metadata extension. The provider is
// known to misreport the creator on some responses, so this is a display hint
// only and must never gate anything security relevant.
func IsOwner(appointment *model.Appointment, subjectID string) bool {
	if appointment == nil || appointment.Meta == nil || subjectID == "" {
		return false
	}
	for _, ext := range appointment.Meta.Extension {
		if ext.URL != metadataExtensionURL {
			continue
		}
		for _, nested := range ext.Extension {
			if nested.URL != creatorExtensionURL || nested.ValueReference == nil {
				continue
			}
			return nested.ValueReference.Reference == "Patient/"+subjectID
		}
	}
	return false
}
