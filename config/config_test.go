package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a valid Config for testing
func newTestConfig() Config {
	var c Config
	c.DataDir = "./data"
	c.Storage.Backend = BackendSQLite
	c.API.Host = "127.0.0.1"
	c.API.Port = 8080
	c.API.RateLimit.RequestsPerSecond = 50
	c.API.RateLimit.Burst = 100
	c.Engine.LocalCacheSize = 256
	c.Engine.MaxCurvePoints = 2000
	c.Engine.ComputeTimeout = 30 * time.Second
	c.Logging.Level = "info"
	return c
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 2000, cfg.Engine.MaxCurvePoints)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("NAVARCH_API_PORT", "9999")
	t.Setenv("NAVARCH_STORAGE_BACKEND", "memory")
	t.Setenv("NAVARCH_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.API.Port)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad backend", func(c *Config) { c.Storage.Backend = "dynamo" }, "invalid storage backend"},
		{"bad port", func(c *Config) { c.API.Port = 0 }, "invalid API port"},
		{"curve points too small", func(c *Config) { c.Engine.MaxCurvePoints = 1 }, "max_curve_points"},
		{"negative cache", func(c *Config) { c.Engine.LocalCacheSize = -1 }, "local_cache_size"},
		{"zero timeout", func(c *Config) { c.Engine.ComputeTimeout = 0 }, "compute_timeout"},
		{"zero rate limit", func(c *Config) { c.API.RateLimit.Burst = 0 }, "rate limit"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSQLitePathDerivation(t *testing.T) {
	cfg := newTestConfig()
	assert.Equal(t, "data/navarch.db", cfg.SQLitePath())

	cfg.Storage.SQLitePath = "/var/lib/navarch/hulls.db"
	assert.Equal(t, "/var/lib/navarch/hulls.db", cfg.SQLitePath())
}

func TestAddr(t *testing.T) {
	cfg := newTestConfig()
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}
