package service

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Kiandes/P27-firecard/internal/calendar"
	"github.com/Kiandes/P27-firecard/internal/dateutil"
	apperrors "github.com/Kiandes/P27-firecard/internal/errors"
	"github.com/Kiandes/P27-firecard/internal/fhir"
	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/repository"
)

// activeStatuses filters searches down to appointments that still matter to
// the calendar. Fulfilled, cancelled and no-show appointments are excluded on
// the server side.
const activeStatuses = "proposed,pending,booked,arrived,checked-in,waitlist"

// MonthView is the calendar state for one displayed month: the per-day
// markers, the selected day's appointments and the date the view anchors on.
type MonthView struct {
	AnchorDate   string              `json:"anchorDate"`
	Markers      calendar.DayMarkers `json:"markers"`
	Appointments []model.Appointment `json:"appointments"`
}

// AppointmentService implements the scheduling operations on top of the
// gateway: searches, creation, participant responses, cancellation and the
// device-calendar export.
type AppointmentService struct {
	gateway    *Gateway
	store      repository.SessionStore
	exportRepo repository.ExportedEventRepository
	prefsRepo  repository.PreferencesRepository
	clock      Clock
}

func NewAppointmentService(
	gateway *Gateway,
	store repository.SessionStore,
	exportRepo repository.ExportedEventRepository,
	prefsRepo repository.PreferencesRepository,
	clock Clock,
) *AppointmentService {
	return &AppointmentService{
		gateway:    gateway,
		store:      store,
		exportRepo: exportRepo,
		prefsRepo:  prefsRepo,
		clock:      clock,
	}
}

// Patient fetches the authenticated subject's own Patient resource.
func (s *AppointmentService) Patient(ctx context.Context) (*model.Patient, error) {
	subjectID, err := s.subjectID(ctx)
	if err != nil {
		return nil, err
	}

	var patient model.Patient
	if err := s.gateway.Call(ctx, http.MethodGet, "/Patient/"+subjectID, nil, nil, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// MonthlyAppointments searches the active appointments of one calendar month,
// sorted by start date.
func (s *AppointmentService) MonthlyAppointments(ctx context.Context, month time.Time) ([]model.Appointment, error) {
	return s.search(ctx, url.Values{
		"date":   {"eq" + dateutil.FormatYearMonth(month)},
		"_sort":  {"date"},
		"status": {activeStatuses},
	})
}

// FutureAppointments searches the active appointments from the given date
// onward, sorted by start date.
func (s *AppointmentService) FutureAppointments(ctx context.Context, from time.Time) ([]model.Appointment, error) {
	return s.search(ctx, url.Values{
		"date":   {"ge" + dateutil.FormatISODate(from)},
		"_sort":  {"date"},
		"status": {activeStatuses},
	})
}

func (s *AppointmentService) search(ctx context.Context, query url.Values) ([]model.Appointment, error) {
	var bundle model.Bundle
	if err := s.gateway.Call(ctx, http.MethodGet, "/Appointment", query, nil, &bundle); err != nil {
		return nil, err
	}
	return fhir.ParseBundle(&bundle), nil
}

// MonthView assembles the calendar state for the month containing the
// selected date.
func (s *AppointmentService) MonthView(ctx context.Context, month time.Time, selectedDate string) (*MonthView, error) {
	anchor := calendar.AnchorDate(month, s.clock.Now())
	if selectedDate == "" {
		selectedDate = dateutil.FormatISODate(anchor)
	}

	monthly, err := s.MonthlyAppointments(ctx, month)
	if err != nil {
		return nil, err
	}

	markers, daily := calendar.Reconcile(monthly, selectedDate)
	return &MonthView{
		AnchorDate:   selectedDate,
		Markers:      markers,
		Appointments: daily,
	}, nil
}

// AppointmentView is the per-appointment detail shape the UI renders: display
// dates, the responded participants, the embedded location and the best-effort
// owner hint.
type AppointmentView struct {
	Appointment model.Appointment   `json:"appointment"`
	Date        string              `json:"date"`
	StartTime   string              `json:"startTime"`
	EndTime     string              `json:"endTime"`
	IsOwner     bool                `json:"isOwner"`
	Responded   []model.Participant `json:"responded,omitempty"`
	Location    *model.Location     `json:"location,omitempty"`
}

// Views maps appointments to their UI detail shape. The owner flag comes from
// the provider's creator metadata and is a display hint only.
func (s *AppointmentService) Views(ctx context.Context, appointments []model.Appointment) ([]AppointmentView, error) {
	subjectID, err := s.subjectID(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]AppointmentView, 0, len(appointments))
	for _, appointment := range appointments {
		view := AppointmentView{
			Appointment: appointment,
			IsOwner:     fhir.IsOwner(&appointment, subjectID),
			Responded:   fhir.RespondedParticipants(appointment),
			Location:    appointment.ContainedLocation(),
		}
		if appointment.Start != nil {
			view.Date = dateutil.FormatDate(*appointment.Start)
			view.StartTime = dateutil.FormatClock(*appointment.Start)
		}
		if appointment.End != nil {
			view.EndTime = dateutil.FormatClock(*appointment.End)
		}
		views = append(views, view)
	}
	return views, nil
}

// Create proposes a new appointment. When the input leaves the owner email
// empty it is resolved from the subject's Patient resource, so the owner
// participant always carries the login identifier the provider resolves.
func (s *AppointmentService) Create(ctx context.Context, input fhir.AppointmentInput) (*model.Appointment, error) {
	if input.Start.IsZero() || input.End.IsZero() {
		return nil, apperrors.MissingRequired("start and end")
	}
	if !input.End.After(input.Start) {
		return nil, apperrors.InvalidInput("end", "must be after start")
	}

	if input.OwnerEmail == "" {
		patient, err := s.Patient(ctx)
		if err != nil {
			return nil, err
		}
		input.OwnerEmail = fhir.PatientEmail(patient)
	}
	if input.OwnerEmail == "" {
		return nil, apperrors.MissingRequired("owner email")
	}

	appointment := fhir.BuildAppointment(input)

	var created model.Appointment
	if err := s.gateway.Call(ctx, http.MethodPost, "/Appointment", nil, appointment, &created); err != nil {
		return nil, err
	}

	log.Info().
		Str("appointmentId", created.ID).
		Time("start", input.Start).
		Msg("appointment created")

	return &created, nil
}

// Update replaces the appointment on the server.
func (s *AppointmentService) Update(ctx context.Context, appointment model.Appointment) (*model.Appointment, error) {
	if appointment.ID == "" {
		return nil, apperrors.MissingRequired("appointment id")
	}

	var updated model.Appointment
	if err := s.gateway.Call(ctx, http.MethodPut, "/Appointment/"+appointment.ID, nil, appointment, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Respond records the subject's participation response on the appointment and
// pushes the update to the server.
func (s *AppointmentService) Respond(ctx context.Context, appointment model.Appointment, status model.ParticipationStatus) (*model.Appointment, error) {
	switch status {
	case model.ParticipationStatusAccepted, model.ParticipationStatusDeclined, model.ParticipationStatusTentative:
	default:
		return nil, apperrors.InvalidInput("status", "must be accepted, declined or tentative")
	}

	subjectID, err := s.subjectID(ctx)
	if err != nil {
		return nil, err
	}

	responded := fhir.Respond(appointment, subjectID, status)
	return s.Update(ctx, responded)
}

// Cancel marks the appointment cancelled and pushes the update to the server.
func (s *AppointmentService) Cancel(ctx context.Context, appointment model.Appointment) (*model.Appointment, error) {
	updated, err := s.Update(ctx, fhir.Cancel(appointment))
	if err != nil {
		return nil, err
	}

	log.Info().Str("appointmentId", appointment.ID).Msg("appointment cancelled")
	return updated, nil
}

// Export writes the appointment's sanitized event into the configured device
// calendar. Exporting the same appointment twice updates the existing event.
func (s *AppointmentService) Export(ctx context.Context, appointment model.Appointment, alarms []model.Alarm) (*model.CalendarEvent, error) {
	if appointment.ID == "" {
		return nil, apperrors.MissingRequired("appointment id")
	}

	prefs, err := s.prefsRepo.Get(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if prefs.CalendarID == "" {
		return nil, apperrors.ValidationError("no export calendar configured")
	}

	subjectID, err := s.subjectID(ctx)
	if err != nil {
		return nil, err
	}

	event := calendar.ExportableEvent(appointment, alarms, prefs.CalendarID, subjectID)
	created, err := s.exportRepo.Create(ctx, event)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("eventId", created.ID).
		Str("calendarId", created.CalendarID).
		Msg("appointment exported to calendar")

	return created, nil
}

func (s *AppointmentService) subjectID(ctx context.Context) (string, error) {
	session, err := s.store.Get(ctx)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if session == nil {
		return "", apperrors.Unauthenticated("no active session")
	}
	return session.SubjectID, nil
}
