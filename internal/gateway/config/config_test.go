package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGatewayConfig_ApplyDefaults(t *testing.T) {
	var cfg GatewayConfig
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultGatewayConfig().RequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, int64(4096), cfg.MaxBodySize)
	assert.Len(t, cfg.Realtime.AllowedOrigins, 3)
	assert.False(t, cfg.Realtime.AllowDevOrigin)
	assert.NoError(t, cfg.Validate())

	cfg = GatewayConfig{RequestTimeout: time.Second, Realtime: RealtimeConfig{AllowedOrigins: []string{"https://a"}}}
	cfg.ApplyDefaults()
	assert.Equal(t, time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a"}, cfg.Realtime.AllowedOrigins)
}

func TestGatewayConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("WORDLOG_REALTIME_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	cfg := DefaultGatewayConfig()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Realtime.AllowedOrigins)
}

func TestGatewayConfig_ResolvePaths(t *testing.T) {
	cfg := DefaultGatewayConfig()
	cfg.ResolvePaths("config", "data")
	assert.Equal(t, DefaultGatewayConfig(), cfg)
}

func TestGatewayConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GatewayConfig)
		wantErr string
	}{
		{"defaults", func(*GatewayConfig) {}, ""},
		{"negative timeout", func(c *GatewayConfig) { c.RequestTimeout = -1 }, "request_timeout"},
		{"negative body", func(c *GatewayConfig) { c.MaxBodySize = -1 }, "max_body_size"},
		{"ping too short", func(c *GatewayConfig) { c.Realtime.PingInterval = time.Second }, "ping_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGatewayConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
