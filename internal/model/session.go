package model

import "time"

// Session is the client-side OAuth2 credential set for the connected patient.
// It is created on a successful authorization, replaced wholesale on a
// successful refresh and removed on logout or refresh failure. There is never
// more than one live session per service instance.
type Session struct {
	AccessToken               string    `json:"accessToken"`
	AccessTokenExpirationDate time.Time `json:"accessTokenExpirationDate"`
	RefreshToken              *string   `json:"refreshToken,omitempty"`
	TokenType                 string    `json:"tokenType"`
	SubjectID                 string    `json:"subjectId,omitempty"`
}

// CanRefresh reports whether the session carries a refresh token. A session
// without one can only be replaced by a full re-authorization.
func (s *Session) CanRefresh() bool {
	return s != nil && s.RefreshToken != nil && *s.RefreshToken != ""
}

// SessionStatus is the session view exposed to UI collaborators.
type SessionStatus struct {
	Valid     bool   `json:"valid"`
	Expired   bool   `json:"expired"`
	SubjectID string `json:"subjectId,omitempty"`
}

// AuthState is the pending state of an authorization-code flow, keyed by the
// opaque state parameter sent to the provider.
type AuthState struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"codeVerifier"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
