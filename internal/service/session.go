package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/Kiandes/P27-firecard/internal/config"
	apperrors "github.com/Kiandes/P27-firecard/internal/errors"
	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/repository"
	"github.com/Kiandes/P27-firecard/internal/util"
)

// SessionManager owns the OAuth2 protocol against the record system's
// authorization server: the authorization-code flow with PKCE, the refresh
// grant and expiry detection. It never writes the session store itself; the
// gateway and the auth handler persist (or clear) what it returns.
type SessionManager struct {
	cfg        *config.Config
	stateStore repository.AuthStateStore
	store      repository.SessionStore
	client     *http.Client
	clock      Clock
}

func NewSessionManager(
	cfg *config.Config,
	stateStore repository.AuthStateStore,
	store repository.SessionStore,
	clock Clock,
) *SessionManager {
	return &SessionManager{
		cfg:        cfg,
		stateStore: stateStore,
		store:      store,
		client:     &http.Client{Timeout: config.RemoteCallTimeout},
		clock:      clock,
	}
}

// tokenResponse is the provider's token endpoint payload. MIDATA follows
// SMART on FHIR and carries the patient id alongside the token set.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Patient      string `json:"patient"`
}

// BeginAuthorization prepares an authorization-code flow and returns the
// provider URL the UI must open. The state and PKCE verifier are kept
// server-side until the callback consumes them.
func (m *SessionManager) BeginAuthorization(ctx context.Context) (string, error) {
	state, err := util.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	verifier, err := util.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}

	err = m.stateStore.Create(ctx, model.AuthState{
		State:        state,
		CodeVerifier: verifier,
		ExpiresAt:    m.clock.Now().Add(config.AuthStateTTL),
	})
	if err != nil {
		return "", fmt.Errorf("store auth state: %w", err)
	}

	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {m.cfg.ClientID},
		"redirect_uri":          {m.cfg.RedirectURL},
		"scope":                 {m.cfg.Scopes},
		"state":                 {state},
		"code_challenge":        {util.CodeChallenge(verifier)},
		"code_challenge_method": {"S256"},
	}

	return m.cfg.AuthorizationURL() + "?" + params.Encode(), nil
}

// Authorize exchanges the callback code for a new session. Any failure leaves
// the caller unauthenticated; no previous session is retained.
func (m *SessionManager) Authorize(ctx context.Context, code, state string) (*model.Session, error) {
	pending, err := m.stateStore.Consume(ctx, state)
	if err != nil {
		return nil, apperrors.AuthFailed("could not verify authorization state").WithCause(err)
	}
	if pending == nil {
		return nil, apperrors.AuthFailed("unknown or expired authorization state")
	}

	token, err := m.exchange(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {m.cfg.ClientID},
		"redirect_uri":  {m.cfg.RedirectURL},
		"code_verifier": {pending.CodeVerifier},
	})
	if err != nil {
		log.Warn().Err(err).Msg("authorization code exchange failed")
		return nil, apperrors.AuthFailed("authorization rejected by provider").WithCause(err)
	}

	session := m.sessionFromToken(token, token.Patient)

	log.Info().
		Str("subjectId", session.SubjectID).
		Time("expiresAt", session.AccessTokenExpirationDate).
		Msg("authorization successful")

	return session, nil
}

// Refresh exchanges the refresh token for a new token set. The refresh
// response does not carry the patient id, so the subject is taken over from
// the expiring session. There is no retry here: on failure the caller must
// clear the session entirely.
func (m *SessionManager) Refresh(ctx context.Context, session *model.Session) (*model.Session, error) {
	if !session.CanRefresh() {
		return nil, apperrors.RefreshFailed("session has no refresh token")
	}

	token, err := m.exchange(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {*session.RefreshToken},
		"client_id":     {m.cfg.ClientID},
	})
	if err != nil {
		log.Warn().Err(err).Msg("token refresh failed")
		return nil, apperrors.RefreshFailed("refresh rejected by provider").WithCause(err)
	}

	fresh := m.sessionFromToken(token, session.SubjectID)

	log.Info().
		Str("subjectId", fresh.SubjectID).
		Time("expiresAt", fresh.AccessTokenExpirationDate).
		Msg("session refreshed")

	return fresh, nil
}

// IsExpired reports whether the session's access token expiry lies strictly
// before now. Pure; no I/O.
func (m *SessionManager) IsExpired(session *model.Session) bool {
	if session == nil {
		return false
	}
	return session.AccessTokenExpirationDate.Before(m.clock.Now())
}

// IsValid reports whether a session exists at all. Validity at this layer
// means presence, not usability; expiry is checked separately.
func (m *SessionManager) IsValid(session *model.Session) bool {
	return session != nil
}

// Logout clears the stored session.
func (m *SessionManager) Logout(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// Status is the session view exposed to UI collaborators.
func (m *SessionManager) Status(ctx context.Context) (*model.SessionStatus, error) {
	session, err := m.store.Get(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	status := &model.SessionStatus{
		Valid:   m.IsValid(session),
		Expired: m.IsExpired(session),
	}
	if session != nil {
		status.SubjectID = session.SubjectID
	}
	return status, nil
}

func (m *SessionManager) exchange(ctx context.Context, data url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL(), strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response carries no access token")
	}

	return &token, nil
}

func (m *SessionManager) sessionFromToken(token *tokenResponse, subjectID string) *model.Session {
	session := &model.Session{
		AccessToken:               token.AccessToken,
		AccessTokenExpirationDate: m.expirationDate(token),
		TokenType:                 token.TokenType,
		SubjectID:                 subjectID,
	}
	if token.RefreshToken != "" {
		refresh := token.RefreshToken
		session.RefreshToken = &refresh
	}
	return session
}

// expirationDate prefers the explicit expires_in lifetime; when the provider
// omits it, the exp claim of the (unverified) JWT access token is the next
// best source. Without either, the token is treated as already expired so the
// next call forces a refresh instead of dispatching blind.
func (m *SessionManager) expirationDate(token *tokenResponse) time.Time {
	if token.ExpiresIn > 0 {
		return m.clock.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}

	return m.clock.Now()
}
