package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiandes/P27-firecard/internal/fhir"
	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/repository"
	"github.com/Kiandes/P27-firecard/internal/service"
)

type stubPrefsRepo struct {
	prefs model.Preferences
}

func (r *stubPrefsRepo) Get(ctx context.Context) (*model.Preferences, error) {
	prefs := r.prefs
	return &prefs, nil
}

func (r *stubPrefsRepo) Put(ctx context.Context, prefs model.Preferences) error {
	r.prefs = prefs
	return nil
}

type stubExportRepo struct {
	created []model.CalendarEvent
}

func (r *stubExportRepo) Create(ctx context.Context, event model.CalendarEvent) (*model.CalendarEvent, error) {
	r.created = append(r.created, event)
	return &event, nil
}

func (r *stubExportRepo) FindByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	return nil, nil
}

func (r *stubExportRepo) FindByCalendarID(ctx context.Context, calendarID string) ([]model.CalendarEvent, error) {
	return nil, nil
}

// newFHIRServer answers Patient reads, appointment searches and writes with
// canned resources.
func newFHIRServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/fhir/Patient/patient-1":
			json.NewEncoder(w).Encode(model.Patient{
				ResourceType: "Patient",
				ID:           "patient-1",
				Identifier: []model.Identifier{{
					System: fhir.IdentifierSystemLogin,
					Value:  "owner@example.com",
				}},
				Name: []model.HumanName{{Given: []string{"Ada"}, Family: "Lovelace"}},
			})
		case r.URL.Path == "/fhir/Appointment" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(model.Bundle{ResourceType: "Bundle", Type: "searchset"})
		case r.URL.Path == "/fhir/Appointment" && r.Method == http.MethodPost:
			var appointment model.Appointment
			require.NoError(t, json.NewDecoder(r.Body).Decode(&appointment))
			appointment.ID = "appt-created"
			json.NewEncoder(w).Encode(appointment)
		case r.Method == http.MethodPut:
			var appointment model.Appointment
			require.NoError(t, json.NewDecoder(r.Body).Decode(&appointment))
			json.NewEncoder(w).Encode(appointment)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newAppointmentRouter(t *testing.T, prefs *stubPrefsRepo, exports *stubExportRepo) (chi.Router, repository.SessionStore) {
	t.Helper()
	fhirServer := newFHIRServer(t)
	cfg := testConfig(fhirServer.URL)
	store := repository.NewMemorySessionStore()
	sessions := service.NewSessionManager(cfg, repository.NewMemoryAuthStateStore(), store, service.SystemClock())
	gateway := service.NewGateway(store, sessions, cfg.Issuer())
	appointments := service.NewAppointmentService(gateway, store, exports, prefs, service.SystemClock())

	h := NewAppointmentHandler(appointments)
	r := chi.NewRouter()
	r.Mount("/api/appointments", h.Routes())
	r.Get("/api/calendar", h.Calendar)
	r.Get("/api/patient", h.Patient)
	return r, store
}

func login(t *testing.T, store repository.SessionStore) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), &model.Session{
		AccessToken:               "access-1",
		AccessTokenExpirationDate: time.Now().Add(time.Hour),
		SubjectID:                 "patient-1",
	}))
}

func postJSON(t *testing.T, router chi.Router, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, bytes.NewReader(payload)))
	return rec
}

func TestAppointmentHandler(t *testing.T) {
	t.Run("list rejects a malformed from date", func(t *testing.T) {
		router, store := newAppointmentRouter(t, &stubPrefsRepo{}, &stubExportRepo{})
		login(t, store)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appointments?from=03.05.2024", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list without a session is unauthorized", func(t *testing.T) {
		router, _ := newAppointmentRouter(t, &stubPrefsRepo{}, &stubExportRepo{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appointments", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create proposes the appointment", func(t *testing.T) {
		router, store := newAppointmentRouter(t, &stubPrefsRepo{}, &stubExportRepo{})
		login(t, store)

		rec := postJSON(t, router, http.MethodPost, "/api/appointments", map[string]any{
			"title":             "Checkup",
			"participantEmails": "a@example.com",
			"start":             time.Now().Add(24 * time.Hour).Format(time.RFC3339),
			"end":               time.Now().Add(25 * time.Hour).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var created model.Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "appt-created", created.ID)
		assert.Equal(t, model.AppointmentStatusProposed, created.Status)
	})

	t.Run("create without a title is rejected", func(t *testing.T) {
		router, store := newAppointmentRouter(t, &stubPrefsRepo{}, &stubExportRepo{})
		login(t, store)

		rec := postJSON(t, router, http.MethodPost, "/api/appointments", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("respond rejects a mismatched id", func(t *testing.T) {
		router, store := newAppointmentRouter(t, &stubPrefsRepo{}, &stubExportRepo{})
		login(t, store)

		rec := postJSON(t, router, http.MethodPut, "/api/appointments/appt-1/respond", map[string]any{
			"status":      "accepted",
			"appointment": model.Appointment{ResourceType: "Appointment", ID: "appt-2"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("export records the sanitized event", func(t *testing.T) {
		exports := &stubExportRepo{}
		router, store := newAppointmentRouter(t, &stubPrefsRepo{prefs: model.Preferences{CalendarID: "cal-1"}}, exports)
		login(t, store)

		start := time.Now().Add(24 * time.Hour)
		end := start.Add(time.Hour)
		rec := postJSON(t, router, http.MethodPost, "/api/appointments/appt-1/export", map[string]any{
			"appointment": model.Appointment{ResourceType: "Appointment", ID: "appt-1", Start: &start, End: &end},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		require.Len(t, exports.created, 1)
		assert.Equal(t, "Booked Slot", exports.created[0].Title)
		assert.Equal(t, "cal-1", exports.created[0].CalendarID)
	})

	t.Run("patient view uses the login identifier", func(t *testing.T) {
		router, store := newAppointmentRouter(t, &stubPrefsRepo{}, &stubExportRepo{})
		login(t, store)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patient", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "owner@example.com", body["email"])
		assert.Equal(t, "Ada Lovelace", body["name"])
	})
}

func TestPreferencesHandler(t *testing.T) {
	newRouter := func(prefs *stubPrefsRepo) chi.Router {
		r := chi.NewRouter()
		r.Mount("/api/preferences", NewPreferencesHandler(prefs).Routes())
		return r
	}

	t.Run("round-trips preferences", func(t *testing.T) {
		prefs := &stubPrefsRepo{}
		router := newRouter(prefs)

		rec := postJSON(t, router, http.MethodPut, "/api/preferences", model.Preferences{
			CalendarID:          "cal-1",
			CalendarSyncEnabled: true,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/preferences", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got model.Preferences
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "cal-1", got.CalendarID)
		assert.True(t, got.CalendarSyncEnabled)
	})

	t.Run("sync without a calendar is rejected", func(t *testing.T) {
		router := newRouter(&stubPrefsRepo{})

		rec := postJSON(t, router, http.MethodPut, "/api/preferences", model.Preferences{
			CalendarSyncEnabled: true,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
