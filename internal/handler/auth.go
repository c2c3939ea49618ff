package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Kiandes/P27-firecard/internal/audit"
	apperrors "github.com/Kiandes/P27-firecard/internal/errors"
	"github.com/Kiandes/P27-firecard/internal/repository"
	"github.com/Kiandes/P27-firecard/internal/service"
)

type AuthHandler struct {
	sessions *service.SessionManager
	store    repository.SessionStore
}

func NewAuthHandler(sessions *service.SessionManager, store repository.SessionStore) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		store:    store,
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)
	r.Get("/callback", h.Callback)
	r.Post("/logout", h.Logout)
	r.Get("/session", h.Session)

	return r
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.sessions.BeginAuthorization(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to begin authorization")
		writeError(w, apperrors.Internal("Could not start login"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"authorizationUrl": authURL})
}

// GET /api/auth/callback?code=...&state=...
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, apperrors.MissingRequired("code and state"))
		return
	}

	ctx := r.Context()
	session, err := h.sessions.Authorize(ctx, code, state)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure})
		writeError(w, err)
		return
	}

	if err := h.store.Put(ctx, session); err != nil {
		log.Error().Err(err).Msg("failed to persist session")
		writeError(w, apperrors.Database(err))
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventLoginSuccess,
		SubjectID: session.SubjectID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":     true,
		"subjectId": session.SubjectID,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		log.Error().Err(err).Msg("failed to clear session")
		writeError(w, apperrors.Database(err))
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	status, err := h.sessions.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
