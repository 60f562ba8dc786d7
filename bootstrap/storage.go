package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"navarch/config"
	"navarch/core"
	"navarch/storage"
)

// InitStorage opens the configured persistence backend.
func InitStorage(cfg *config.Config, sugar *zap.SugaredLogger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		sugar.Infow("Opening SQLite storage", "path", cfg.SQLitePath())
		store, err := storage.NewSQLite(cfg.SQLitePath(), sugar)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return store, nil

	case config.BackendMongoDB:
		sugar.Infow("Connecting to MongoDB storage", "uri", cfg.MongoDB.URI, "database", cfg.MongoDB.Database)
		store, err := storage.NewMongoDB(cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.MaxPoolSize, sugar)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb storage: %w", err)
		}
		return store, nil

	case config.BackendMemory:
		sugar.Warn("Using in-memory storage; data will not survive a restart")
		return storage.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// InitRedis connects the shared result cache. A connection failure degrades
// to running without the shared layer rather than refusing to start.
func InitRedis(cfg *config.Config, sugar *zap.SugaredLogger) *core.RedisCache {
	if !cfg.Redis.Enabled {
		return nil
	}

	cache := core.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, sugar)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		sugar.Warnw("Redis unreachable, continuing without shared cache", "addr", cfg.Redis.Addr, "error", err)
		cache.Close()
		return nil
	}

	sugar.Infow("Connected to Redis", "addr", cfg.Redis.Addr)
	return cache
}
