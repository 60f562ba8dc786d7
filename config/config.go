// Package config loads service configuration from config.yaml and
// NAVARCH_* environment variables, with sensible defaults for a local
// single-node deployment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted by storage.backend.
const (
	BackendSQLite  = "sqlite"
	BackendMongoDB = "mongodb"
	BackendMemory  = "memory"
)

// Config holds all configuration for the hydrostatics service.
type Config struct {
	DataDir string `mapstructure:"data_dir"`

	Storage struct {
		// Backend selects the persistence layer: sqlite (default),
		// mongodb, or memory.
		Backend    string `mapstructure:"backend"`
		SQLitePath string `mapstructure:"sqlite_path"` // empty = derive from data_dir
	} `mapstructure:"storage"`

	MongoDB struct {
		URI         string `mapstructure:"uri"`
		Database    string `mapstructure:"database"`
		MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	} `mapstructure:"mongodb"`

	Redis struct {
		// Enabled turns on the shared result cache. The service runs
		// fine without it; every computation is just recomputed.
		Enabled  bool          `mapstructure:"enabled"`
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		PoolSize int           `mapstructure:"pool_size"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`

	Engine struct {
		// LocalCacheSize caps the in-process LRU of computed results.
		LocalCacheSize int `mapstructure:"local_cache_size"`
		// MaxCurvePoints bounds curve and GZ sampling density per request.
		MaxCurvePoints int `mapstructure:"max_curve_points"`
		// ComputeTimeout bounds a single computation request.
		ComputeTimeout time.Duration `mapstructure:"compute_timeout"`
	} `mapstructure:"engine"`

	API struct {
		Host           string   `mapstructure:"host"`
		Port           int      `mapstructure:"port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
		RateLimit      struct {
			RequestsPerSecond int `mapstructure:"requests_per_second"`
			Burst             int `mapstructure:"burst"`
		} `mapstructure:"rate_limit"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"api"`

	Logging struct {
		Level string `mapstructure:"level"` // debug, info, warn, error
		JSON  bool   `mapstructure:"json"`
	} `mapstructure:"logging"`
}

func setDefaults() {
	viper.SetDefault("data_dir", "./data")

	viper.SetDefault("storage.backend", BackendSQLite)
	viper.SetDefault("storage.sqlite_path", "") // empty = derive from data_dir

	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "navarch")
	viper.SetDefault("mongodb.max_pool_size", 10)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.ttl", time.Hour)

	viper.SetDefault("engine.local_cache_size", 256)
	viper.SetDefault("engine.max_curve_points", 2000)
	viper.SetDefault("engine.compute_timeout", 30*time.Second)

	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.allowed_origins", []string{"*"})
	viper.SetDefault("api.rate_limit.requests_per_second", 50)
	viper.SetDefault("api.rate_limit.burst", 100)
	viper.SetDefault("api.read_timeout", 15*time.Second)
	viper.SetDefault("api.write_timeout", 60*time.Second)
	viper.SetDefault("api.shutdown_timeout", 10*time.Second)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.json", false)
}

func loadFromEnv() {
	viper.SetEnvPrefix("NAVARCH")
	viper.AutomaticEnv()

	_ = viper.BindEnv("data_dir", "NAVARCH_DATA_DIR")
	_ = viper.BindEnv("storage.backend", "NAVARCH_STORAGE_BACKEND")
	_ = viper.BindEnv("storage.sqlite_path", "NAVARCH_SQLITE_PATH")
	_ = viper.BindEnv("mongodb.uri", "NAVARCH_MONGODB_URI")
	_ = viper.BindEnv("redis.addr", "NAVARCH_REDIS_ADDR")
	_ = viper.BindEnv("api.port", "NAVARCH_API_PORT")
	_ = viper.BindEnv("logging.level", "NAVARCH_LOG_LEVEL")
}

// LoadConfig loads configuration from file and environment variables. A
// missing config file is not an error; defaults and environment apply.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, will use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMongoDB, BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend %q (want sqlite, mongodb, or memory)", c.Storage.Backend)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port %d", c.API.Port)
	}
	if c.Engine.MaxCurvePoints < 2 {
		return fmt.Errorf("engine.max_curve_points must be at least 2, got %d", c.Engine.MaxCurvePoints)
	}
	if c.Engine.LocalCacheSize < 0 {
		return fmt.Errorf("engine.local_cache_size must not be negative")
	}
	if c.Engine.ComputeTimeout <= 0 {
		return fmt.Errorf("engine.compute_timeout must be positive")
	}
	if c.API.RateLimit.RequestsPerSecond <= 0 || c.API.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	return nil
}

// SQLitePath resolves the database file path, deriving from data_dir when
// not explicitly set.
func (c *Config) SQLitePath() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(c.DataDir, "navarch.db")
}

// Addr returns the API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}
