package config

import (
	"fmt"
	"os"
	"time"
)

const (
	PubSubMemory = "memory"
	PubSubNATS   = "nats"
)

// PubSubConfig selects the transport carrying change notifications for the
// memory and sqlite storage backends.
type PubSubConfig struct {
	Type string `yaml:"type"` // "memory", "nats"
	URL  string `yaml:"url"`

	// JetStream stream settings, nats only.
	Storage string        `yaml:"storage"` // "memory", "file"
	MaxAge  time.Duration `yaml:"max_age"`
}

func DefaultPubSubConfig() PubSubConfig {
	return PubSubConfig{
		Type:    PubSubMemory,
		URL:     "nats://localhost:4222",
		Storage: "memory",
		MaxAge:  time.Hour,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *PubSubConfig) ApplyDefaults() {
	defaults := DefaultPubSubConfig()
	if c.Type == "" {
		c.Type = defaults.Type
	}
	if c.URL == "" {
		c.URL = defaults.URL
	}
	if c.Storage == "" {
		c.Storage = defaults.Storage
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaults.MaxAge
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *PubSubConfig) ApplyEnvOverrides() {
	if val := os.Getenv("WORDLOG_PUBSUB_TYPE"); val != "" {
		c.Type = val
	}
	if val := os.Getenv("WORDLOG_NATS_URL"); val != "" {
		c.URL = val
	}
}

// ResolvePaths is a no-op: pubsub has no paths.
func (c *PubSubConfig) ResolvePaths(_, _ string) {}

// Validate returns an error if the configuration is invalid.
func (c *PubSubConfig) Validate() error {
	switch c.Type {
	case PubSubMemory:
	case PubSubNATS:
		if c.URL == "" {
			return fmt.Errorf("pubsub.url is required for nats")
		}
	default:
		return fmt.Errorf("unsupported pubsub type: %s", c.Type)
	}
	if c.Storage != "memory" && c.Storage != "file" {
		return fmt.Errorf("pubsub.storage must be 'memory' or 'file', got '%s'", c.Storage)
	}
	return nil
}
