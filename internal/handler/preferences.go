package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/Kiandes/P27-firecard/internal/errors"
	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/repository"
)

type PreferencesHandler struct {
	prefsRepo repository.PreferencesRepository
}

func NewPreferencesHandler(prefsRepo repository.PreferencesRepository) *PreferencesHandler {
	return &PreferencesHandler{prefsRepo: prefsRepo}
}

func (h *PreferencesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.Put("/", h.Put)

	return r
}

// GET /api/preferences
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.prefsRepo.Get(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load preferences")
		writeError(w, apperrors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// PUT /api/preferences
func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	var prefs model.Preferences
	if err := decodeJSON(r, &prefs); err != nil {
		writeError(w, err)
		return
	}
	if prefs.CalendarSyncEnabled && prefs.CalendarID == "" {
		writeError(w, apperrors.ValidationError("calendar sync requires a calendar"))
		return
	}

	if err := h.prefsRepo.Put(r.Context(), prefs); err != nil {
		log.Error().Err(err).Msg("failed to store preferences")
		writeError(w, apperrors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
