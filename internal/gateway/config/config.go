package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type GatewayConfig struct {
	// RequestTimeout bounds every REST call against the store.
	RequestTimeout time.Duration  `yaml:"request_timeout"`
	MaxBodySize    int64          `yaml:"max_body_size"`
	Realtime       RealtimeConfig `yaml:"realtime"`
}

type RealtimeConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowDevOrigin bool     `yaml:"allow_dev_origin"`

	PingInterval time.Duration `yaml:"ping_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	SendBuffer   int           `yaml:"send_buffer"`
}

func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		RequestTimeout: 5 * time.Second,
		MaxBodySize:    4 << 10,
		Realtime: RealtimeConfig{
			AllowedOrigins: []string{"http://localhost:8080", "http://localhost:3000", "http://localhost:5173"},
			AllowDevOrigin: true,
			PingInterval:   30 * time.Second,
			WriteTimeout:   10 * time.Second,
			SendBuffer:     16,
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (g *GatewayConfig) ApplyDefaults() {
	defaults := DefaultGatewayConfig()
	if g.RequestTimeout == 0 {
		g.RequestTimeout = defaults.RequestTimeout
	}
	if g.MaxBodySize == 0 {
		g.MaxBodySize = defaults.MaxBodySize
	}
	if len(g.Realtime.AllowedOrigins) == 0 {
		g.Realtime.AllowedOrigins = defaults.Realtime.AllowedOrigins
	}
	if g.Realtime.PingInterval == 0 {
		g.Realtime.PingInterval = defaults.Realtime.PingInterval
	}
	if g.Realtime.WriteTimeout == 0 {
		g.Realtime.WriteTimeout = defaults.Realtime.WriteTimeout
	}
	if g.Realtime.SendBuffer == 0 {
		g.Realtime.SendBuffer = defaults.Realtime.SendBuffer
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (g *GatewayConfig) ApplyEnvOverrides() {
	if val := os.Getenv("WORDLOG_REALTIME_ALLOWED_ORIGINS"); val != "" {
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		g.Realtime.AllowedOrigins = origins
	}
}

// ResolvePaths resolves relative paths using the given directories.
// No paths to resolve in gateway config.
func (g *GatewayConfig) ResolvePaths(_, _ string) {}

// Validate returns an error if the configuration is invalid.
func (g *GatewayConfig) Validate() error {
	if g.RequestTimeout < 0 {
		return fmt.Errorf("gateway.request_timeout must not be negative")
	}
	if g.MaxBodySize < 0 {
		return fmt.Errorf("gateway.max_body_size must not be negative")
	}
	if g.Realtime.PingInterval <= g.Realtime.WriteTimeout {
		return fmt.Errorf("gateway.realtime.ping_interval (%s) must exceed write_timeout (%s)",
			g.Realtime.PingInterval, g.Realtime.WriteTimeout)
	}
	return nil
}
