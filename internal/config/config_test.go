package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("Issuer appends fhir path", func(t *testing.T) {
		cfg := &Config{Host: "https://test.midata.coop"}
		assert.Equal(t, "https://test.midata.coop/fhir", cfg.Issuer())
	})

	t.Run("Issuer strips trailing slash", func(t *testing.T) {
		cfg := &Config{Host: "https://test.midata.coop/"}
		assert.Equal(t, "https://test.midata.coop/fhir", cfg.Issuer())
	})

	t.Run("endpoint URLs hang off the host", func(t *testing.T) {
		cfg := &Config{
			Host:          "https://test.midata.coop",
			AuthEndpoint:  "/authservice",
			TokenEndpoint: "/v1/token",
		}
		assert.Equal(t, "https://test.midata.coop/authservice", cfg.AuthorizationURL())
		assert.Equal(t, "https://test.midata.coop/v1/token", cfg.TokenURL())
	})

	t.Run("SyncInterval converts seconds to duration", func(t *testing.T) {
		cfg := &Config{SyncIntervalSeconds: 900}
		assert.Equal(t, 900*time.Second, cfg.SyncInterval())
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults", func(t *testing.T) {
		t.Setenv("FHIR_HOST", "https://test.midata.coop")
		t.Setenv("OAUTH_CLIENT_ID", "firecard")
		t.Setenv("OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/callback")
		t.Setenv("DATABASE_URL", "postgres://localhost/firecard")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "user/*.*", cfg.Scopes)
		assert.Equal(t, "/authservice", cfg.AuthEndpoint)
		assert.Equal(t, "/v1/token", cfg.TokenEndpoint)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 900, cfg.SyncIntervalSeconds)
	})

	t.Run("fails when required values are missing", func(t *testing.T) {
		t.Setenv("FHIR_HOST", "")
		t.Setenv("OAUTH_CLIENT_ID", "")
		t.Setenv("OAUTH_REDIRECT_URL", "")
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := Config{
		Host:          "https://test.midata.coop",
		AuthEndpoint:  "/authservice",
		TokenEndpoint: "/v1/token",
	}

	t.Run("accepts a well-formed config", func(t *testing.T) {
		cfg := valid
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects a relative host", func(t *testing.T) {
		cfg := valid
		cfg.Host = "test.midata.coop"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects endpoints that are not paths", func(t *testing.T) {
		cfg := valid
		cfg.TokenEndpoint = "v1/token"
		assert.Error(t, cfg.Validate())
	})
}
