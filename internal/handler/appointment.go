package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kiandes/P27-firecard/internal/audit"
	"github.com/Kiandes/P27-firecard/internal/dateutil"
	apperrors "github.com/Kiandes/P27-firecard/internal/errors"
	"github.com/Kiandes/P27-firecard/internal/fhir"
	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/service"
)

type AppointmentHandler struct {
	appointments *service.AppointmentService
}

func NewAppointmentHandler(appointments *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

func (h *AppointmentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{appointmentID}/respond", h.Respond)
	r.Put("/{appointmentID}/cancel", h.Cancel)
	r.Post("/{appointmentID}/export", h.Export)

	return r
}

// GET /api/appointments?from=YYYY-MM-DD
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	from := time.Now()
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := dateutil.ParseISODate(raw)
		if err != nil {
			writeError(w, apperrors.InvalidInput("from", "must be a YYYY-MM-DD date"))
			return
		}
		from = parsed
	}

	appointments, err := h.appointments.FutureAppointments(r.Context(), from)
	if err != nil {
		writeError(w, err)
		return
	}

	views, err := h.appointments.Views(r.Context(), appointments)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointments": views})
}

// GET /api/calendar?month=YYYY-MM&selected=YYYY-MM-DD
func (h *AppointmentHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	month := time.Now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := dateutil.ParseYearMonth(raw)
		if err != nil {
			writeError(w, apperrors.InvalidInput("month", "must be a YYYY-MM month"))
			return
		}
		month = parsed
	}

	selected := r.URL.Query().Get("selected")
	if selected != "" {
		if _, err := dateutil.ParseISODate(selected); err != nil {
			writeError(w, apperrors.InvalidInput("selected", "must be a YYYY-MM-DD date"))
			return
		}
	}

	view, err := h.appointments.MonthView(r.Context(), month, selected)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// GET /api/patient
func (h *AppointmentHandler) Patient(w http.ResponseWriter, r *http.Request) {
	patient, err := h.appointments.Patient(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":        patient.ID,
		"name":      fhir.PatientDisplayName(patient),
		"email":     fhir.PatientEmail(patient),
		"midataId":  fhir.PatientMidataID(patient),
		"birthDate": dateutil.FormatDate(fhir.PatientBirthDate(patient)),
	})
}

type createAppointmentRequest struct {
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ParticipantEmails string    `json:"participantEmails"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	AddressLine       string    `json:"addressLine"`
	PostalCode        string    `json:"postalCode"`
	City              string    `json:"city"`
}

// POST /api/appointments
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Title == "" {
		writeError(w, apperrors.MissingRequired("title"))
		return
	}

	created, err := h.appointments.Create(r.Context(), fhir.AppointmentInput{
		Title:             req.Title,
		Description:       req.Description,
		ParticipantEmails: req.ParticipantEmails,
		Start:             req.Start,
		End:               req.End,
		AddressLine:       req.AddressLine,
		PostalCode:        req.PostalCode,
		City:              req.City,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventAppointmentCreate,
		Details: map[string]interface{}{"appointment_id": created.ID},
	})

	writeJSON(w, http.StatusCreated, created)
}

type respondRequest struct {
	Status      model.ParticipationStatus `json:"status"`
	Appointment model.Appointment         `json:"appointment"`
}

// PUT /api/appointments/{appointmentID}/respond
//
// The UI already holds the full appointment from the calendar fetch and sends
// it along, so no extra read round-trip is needed before the update.
func (h *AppointmentHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Appointment.ID != chi.URLParam(r, "appointmentID") {
		writeError(w, apperrors.InvalidInput("appointment", "id does not match the URL"))
		return
	}

	updated, err := h.appointments.Respond(r.Context(), req.Appointment, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type: audit.EventAppointmentRespond,
		Details: map[string]interface{}{
			"appointment_id": updated.ID,
			"status":         string(req.Status),
		},
	})

	writeJSON(w, http.StatusOK, updated)
}

type cancelRequest struct {
	Appointment model.Appointment `json:"appointment"`
}

// PUT /api/appointments/{appointmentID}/cancel
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Appointment.ID != chi.URLParam(r, "appointmentID") {
		writeError(w, apperrors.InvalidInput("appointment", "id does not match the URL"))
		return
	}

	updated, err := h.appointments.Cancel(r.Context(), req.Appointment)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventAppointmentCancel,
		Details: map[string]interface{}{"appointment_id": updated.ID},
	})

	writeJSON(w, http.StatusOK, updated)
}

type exportRequest struct {
	Appointment model.Appointment `json:"appointment"`
	Alarms      []model.Alarm     `json:"alarms"`
}

// POST /api/appointments/{appointmentID}/export
func (h *AppointmentHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Appointment.ID != chi.URLParam(r, "appointmentID") {
		writeError(w, apperrors.InvalidInput("appointment", "id does not match the URL"))
		return
	}

	event, err := h.appointments.Export(r.Context(), req.Appointment, req.Alarms)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventCalendarExport,
		Details: map[string]interface{}{"event_id": event.ID},
	})

	writeJSON(w, http.StatusCreated, event)
}
