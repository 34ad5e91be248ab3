package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const minSecretLen = 16

// Config controls bearer-token authentication of the area routes.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Secret  string `yaml:"secret"`
	Issuer  string `yaml:"issuer"`

	// TokenTTL is the lifetime of tokens minted by Issue.
	TokenTTL time.Duration `yaml:"token_ttl"`

	// Leeway tolerates clock skew when checking exp and nbf.
	Leeway time.Duration `yaml:"leeway"`
}

func DefaultConfig() Config {
	return Config{
		Issuer:   "wordlog",
		TokenTTL: 24 * time.Hour,
		Leeway:   30 * time.Second,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Issuer == "" {
		c.Issuer = defaults.Issuer
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = defaults.TokenTTL
	}
	if c.Leeway == 0 {
		c.Leeway = defaults.Leeway
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("WORDLOG_AUTH_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Enabled = enabled
		}
	}
	if val := os.Getenv("WORDLOG_AUTH_SECRET"); val != "" {
		c.Secret = val
	}
}

// ResolvePaths is a no-op: auth has no paths.
func (c *Config) ResolvePaths(_, _ string) {}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.Enabled && len(c.Secret) < minSecretLen {
		return fmt.Errorf("auth.secret must be at least %d bytes when auth is enabled", minSecretLen)
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl must not be negative")
	}
	return nil
}
