package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port                int    `env:"PORT" envDefault:"8080"`
	Host                string `env:"FHIR_HOST,required"`
	ClientID            string `env:"OAUTH_CLIENT_ID,required"`
	RedirectURL         string `env:"OAUTH_REDIRECT_URL,required"`
	AuthEndpoint        string `env:"OAUTH_AUTH_ENDPOINT" envDefault:"/authservice"`
	TokenEndpoint       string `env:"OAUTH_TOKEN_ENDPOINT" envDefault:"/v1/token"`
	Scopes              string `env:"OAUTH_SCOPES" envDefault:"user/*.*"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	RedisURL            string `env:"REDIS_URL"`
	LogLevel            string `env:"LOG_LEVEL" envDefault:"info"`
	SyncIntervalSeconds int    `env:"SYNC_INTERVAL_SECONDS" envDefault:"900"`
}

// Issuer is the FHIR base URL; all resource paths and the OAuth endpoints
// hang off the same host.
func (c *Config) Issuer() string {
	return strings.TrimSuffix(c.Host, "/") + "/fhir"
}

func (c *Config) AuthorizationURL() string {
	return strings.TrimSuffix(c.Host, "/") + c.AuthEndpoint
}

func (c *Config) TokenURL() string {
	return strings.TrimSuffix(c.Host, "/") + c.TokenEndpoint
}

func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Host, "http://") && !strings.HasPrefix(c.Host, "https://") {
		return fmt.Errorf("FHIR_HOST must be an absolute URL, got %q", c.Host)
	}
	if !strings.HasPrefix(c.AuthEndpoint, "/") {
		return fmt.Errorf("OAUTH_AUTH_ENDPOINT must be a path relative to FHIR_HOST")
	}
	if !strings.HasPrefix(c.TokenEndpoint, "/") {
		return fmt.Errorf("OAUTH_TOKEN_ENDPOINT must be a path relative to FHIR_HOST")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
