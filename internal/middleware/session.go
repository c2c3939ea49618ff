package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/Kiandes/P27-firecard/internal/errors"
	"github.com/Kiandes/P27-firecard/internal/httputil"
	"github.com/Kiandes/P27-firecard/internal/repository"
)

// SessionMiddleware guards routes that need a connected record system. It
// only checks presence; expiry is handled transparently by the gateway when
// the request dispatches.
type SessionMiddleware struct {
	store repository.SessionStore
}

func NewSessionMiddleware(store repository.SessionStore) *SessionMiddleware {
	return &SessionMiddleware{store: store}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("session middleware: store error")
			httputil.WriteError(w, apperrors.Database(err))
			return
		}
		if session == nil {
			httputil.WriteError(w, apperrors.Unauthenticated("no active session"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
