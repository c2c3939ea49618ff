package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Kiandes/P27-firecard/internal/config"
	apperrors "github.com/Kiandes/P27-firecard/internal/errors"
	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/repository"
)

const fhirContentType = "application/fhir+json; fhirVersion=4.0"

// Gateway is the single choke point for calls against the FHIR endpoint. It
// loads the session, refreshes it before dispatch when the access token has
// expired, attaches the bearer token and maps transport outcomes onto the
// error taxonomy. Callers never see raw HTTP errors.
type Gateway struct {
	store    repository.SessionStore
	sessions *SessionManager
	client   *http.Client
	issuer   string

	// refreshMu serializes refresh attempts so concurrent expired calls
	// produce a single token exchange.
	refreshMu sync.Mutex
}

func NewGateway(store repository.SessionStore, sessions *SessionManager, issuer string) *Gateway {
	return &Gateway{
		store:    store,
		sessions: sessions,
		client:   &http.Client{Timeout: config.RemoteCallTimeout},
		issuer:   strings.TrimSuffix(issuer, "/"),
	}
}

// Call executes an authenticated FHIR request. body, when non-nil, is
// marshalled as the request payload; out, when non-nil, receives the decoded
// response. The session is validated and refreshed before the request goes
// out, so a well-behaved provider never answers 401 here.
func (g *Gateway) Call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	session, err := g.store.Get(ctx)
	if err != nil {
		return apperrors.Database(err)
	}
	if session == nil {
		return apperrors.Unauthenticated("no active session")
	}

	if g.sessions.IsExpired(session) {
		session, err = g.refreshSession(ctx, session)
		if err != nil {
			return err
		}
	}

	req, err := g.buildRequest(ctx, method, path, query, body)
	if err != nil {
		return apperrors.Internal("could not build FHIR request").WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return apperrors.NetworkFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The provider no longer honors the token despite a fresh expiry.
		// Treat the session as dead rather than looping on retries.
		if clearErr := g.store.Clear(ctx); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to clear rejected session")
		}
		return apperrors.Unauthenticated("session rejected by FHIR endpoint")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		log.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("FHIR endpoint rejected request")
		return apperrors.RemoteRejected(resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.MalformedResource("response").WithCause(err)
		}
	}
	return nil
}

// refreshSession performs the single-flight refresh. Under the lock the store
// is read again: another caller may have already swapped in a fresh session
// while this one waited.
func (g *Gateway) refreshSession(ctx context.Context, stale *model.Session) (*model.Session, error) {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	current, err := g.store.Get(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if current == nil {
		return nil, apperrors.Unauthenticated("no active session")
	}
	if !g.sessions.IsExpired(current) {
		return current, nil
	}

	fresh, err := g.sessions.Refresh(ctx, current)
	if err != nil {
		// An unusable refresh token means the whole session is gone. Clear
		// it so the UI lands on the login screen instead of retrying.
		if clearErr := g.store.Clear(ctx); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to clear session after refresh failure")
		}
		return nil, apperrors.Unauthenticated("session expired and refresh failed").WithCause(err)
	}

	if err := g.store.Put(ctx, fresh); err != nil {
		return nil, apperrors.Database(err)
	}
	return fresh, nil
}

func (g *Gateway) buildRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	endpoint := g.issuer + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", fhirContentType)
	}
	return req, nil
}
