package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("returns 64 hex characters", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
		assert.Regexp(t, "^[0-9a-f]+$", token)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		a, err := GenerateToken()
		require.NoError(t, err)
		b, err := GenerateToken()
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestHashID(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, HashID("appt-1patient-1"), HashID("appt-1patient-1"))
	})

	t.Run("differs per input", func(t *testing.T) {
		assert.NotEqual(t, HashID("appt-1patient-1"), HashID("appt-1patient-2"))
	})

	t.Run("matches known SHA-256 vector", func(t *testing.T) {
		assert.Equal(t,
			"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
			HashID("test"))
	})
}

func TestCodeChallenge(t *testing.T) {
	// RFC 7636 appendix B vector
	challenge := CodeChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", challenge)
}
