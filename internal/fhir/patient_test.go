package fhir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kiandes/P27-firecard/internal/model"
)

func testPatient() *model.Patient {
	return &model.Patient{
		ResourceType: "Patient",
		ID:           "patient-1",
		Identifier: []model.Identifier{
			{System: IdentifierSystemMidataID, Value: "midata-42"},
			{System: IdentifierSystemLogin, Value: "o@x.com"},
		},
		Name: []model.HumanName{
			{Given: []string{"Anna", "Maria"}, Family: "Muster"},
		},
		BirthDate: "1980-05-17",
	}
}

func TestPatientHelpers(t *testing.T) {
	t.Run("extracts login email", func(t *testing.T) {
		assert.Equal(t, "o@x.com", PatientEmail(testPatient()))
	})

	t.Run("extracts MIDATA id", func(t *testing.T) {
		assert.Equal(t, "midata-42", PatientMidataID(testPatient()))
	})

	t.Run("joins given and family names", func(t *testing.T) {
		assert.Equal(t, "Anna Maria Muster", PatientDisplayName(testPatient()))
	})

	t.Run("parses birth date", func(t *testing.T) {
		assert.Equal(t, time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC), PatientBirthDate(testPatient()))
	})

	t.Run("missing data degrades to zero values", func(t *testing.T) {
		empty := &model.Patient{ResourceType: "Patient"}
		assert.Empty(t, PatientEmail(empty))
		assert.Empty(t, PatientMidataID(empty))
		assert.Empty(t, PatientDisplayName(empty))
		assert.True(t, PatientBirthDate(empty).IsZero())

		assert.Empty(t, PatientEmail(nil))
		assert.Empty(t, PatientDisplayName(nil))
	})
}

func TestIsOwner(t *testing.T) {
	withCreator := func(ref string) *model.Appointment {
		return &model.Appointment{
			ResourceType: "Appointment",
			Meta: &model.Meta{
				Extension: []model.Extension{{
					URL: metadataExtensionURL,
					Extension: []model.Extension{{
						URL:            creatorExtensionURL,
						ValueReference: &model.Reference{Reference: ref},
					}},
				}},
			},
		}
	}

	t.Run("matches the creator reference", func(t *testing.T) {
		assert.True(t, IsOwner(withCreator("Patient/patient-1"), "patient-1"))
	})

	t.Run("different creator is not the owner", func(t *testing.T) {
		assert.False(t, IsOwner(withCreator("Patient/patient-2"), "patient-1"))
	})

	t.Run("missing metadata is not the owner", func(t *testing.T) {
		assert.False(t, IsOwner(&model.Appointment{ResourceType: "Appointment"}, "patient-1"))
		assert.False(t, IsOwner(nil, "patient-1"))
		assert.False(t, IsOwner(withCreator("Patient/"), ""))
	})
}
