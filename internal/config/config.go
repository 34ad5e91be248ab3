// Package config assembles the wordlog configuration from YAML files and
// WORDLOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/syntrixbase/wordlog/internal/gateway/auth"
	gateway "github.com/syntrixbase/wordlog/internal/gateway/config"
	kv "github.com/syntrixbase/wordlog/internal/kv/config"
	"github.com/syntrixbase/wordlog/internal/server"
)

// DefaultConfigDir is where LoadConfig looks when no directory is given.
const DefaultConfigDir = "config"

// Config holds the application configuration
type Config struct {
	DataDir string `yaml:"data_dir"`

	Logging LoggingConfig         `yaml:"logging"`
	Server  server.Config         `yaml:"server"`
	Gateway gateway.GatewayConfig `yaml:"gateway"`
	Auth    auth.Config           `yaml:"auth"`

	Storage kv.Config    `yaml:"storage"`
	PubSub  PubSubConfig `yaml:"pubsub"`
	Record  RecordConfig `yaml:"record"`
}

// Default returns the configuration used when no file overrides anything.
// Storage defaults to sqlite under the data directory so separate CLI runs
// share their words.
func Default() *Config {
	storage := kv.DefaultConfig()
	storage.Type = kv.TypeSQLite
	return &Config{
		DataDir: "data",
		Logging: DefaultLoggingConfig(),
		Server:  server.DefaultConfig(),
		Gateway: gateway.DefaultGatewayConfig(),
		Auth:    auth.DefaultConfig(),
		Storage: storage,
		PubSub:  DefaultPubSubConfig(),
		Record:  DefaultRecordConfig(),
	}
}

// LoadConfig loads configuration from files and environment variables.
// Order: defaults -> config.yml -> config.local.yml -> ApplyDefaults ->
// ApplyEnvOverrides -> ResolvePaths -> Validate
func LoadConfig(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir
	}

	// Defaults first so YAML can override them, including bool fields.
	cfg := Default()

	for _, name := range []string{"config.yml", "config.local.yml"} {
		if err := loadFile(filepath.Join(configDir, name), cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Finalize(configDir); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// Finalize runs the lifecycle over every section. The data directory is
// settled first since other sections resolve their paths against it.
func (c *Config) Finalize(configDir string) error {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if val := os.Getenv("WORDLOG_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if !filepath.IsAbs(c.DataDir) {
		c.DataDir = filepath.Clean(filepath.Join(filepath.Dir(configDir), c.DataDir))
	}

	return ApplyServiceConfigs(configDir, c.DataDir,
		&c.Logging,
		&c.Server,
		&c.Gateway,
		&c.Auth,
		&c.Storage,
		&c.PubSub,
		&c.Record,
	)
}

func loadFile(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	return nil
}
