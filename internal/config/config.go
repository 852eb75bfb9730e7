package config

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the full service configuration, loaded from environment
// variables.
type Config struct {
	Host        string `env:"HOST" envDefault:"0.0.0.0"`
	Port        int    `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Version     string `env:"VERSION" envDefault:"dev"`

	// SigningSecret signs both session and attempt tokens. Injected into
	// the codecs once at startup; nothing else reads it.
	SigningSecret string `env:"SIGNING_SECRET,required"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	// RedisURL enables the Redis refresh lock. Empty falls back to
	// Postgres advisory locks.
	RedisURL string `env:"REDIS_URL"`

	TeslaClientID     string `env:"TESLA_CLIENT_ID,required"`
	TeslaClientSecret string `env:"TESLA_CLIENT_SECRET,required"`
	TeslaRedirectURI  string `env:"TESLA_REDIRECT_URI,required"`
	TeslaAuthBaseURL  string `env:"TESLA_AUTH_BASE_URL" envDefault:"https://auth.tesla.com"`
	TeslaFleetBaseURL string `env:"TESLA_FLEET_BASE_URL" envDefault:"https://fleet-api.prd.eu.vn.cloud.tesla.com"`

	// AuthSuccessURL receives the browser after a completed login.
	AuthSuccessURL string `env:"AUTH_SUCCESS_URL" envDefault:"/"`

	// TokenEncryptionKey, when set, enables at-rest encryption of stored
	// delegated tokens. Base64-encoded 32-byte key.
	TokenEncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`

	DBMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.SigningSecret) < 32 {
		return errors.New("SIGNING_SECRET must be at least 32 bytes")
	}
	if c.TokenEncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(c.TokenEncryptionKey)
		if err != nil {
			return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be base64: %w", err)
		}
		if len(key) != 32 {
			return errors.New("TOKEN_ENCRYPTION_KEY must decode to 32 bytes")
		}
	}
	return nil
}

// Production reports whether the service runs in production mode. Controls
// the Secure attribute on the login cookie.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// EncryptionKey returns the decoded at-rest encryption key, or nil when
// encryption is disabled. Load has already validated the encoding.
func (c *Config) EncryptionKey() []byte {
	if c.TokenEncryptionKey == "" {
		return nil
	}
	key, _ := base64.StdEncoding.DecodeString(c.TokenEncryptionKey)
	return key
}
