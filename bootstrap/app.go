package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"navarch/api"
	"navarch/config"
	"navarch/core"
	"navarch/service"
	"navarch/storage"
)

// App represents the hydrostatics service with all its components.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	Store     storage.Store
	Cache     *core.RedisCache
	Service   *service.HydroService
	APIServer *api.API

	shutdownCh chan struct{}
}

// NewApp creates a new application instance and initializes all components.
func NewApp() (*App, error) {
	app := &App{shutdownCh: make(chan struct{})}

	// Bootstrap logger; replaced once config supplies level and format.
	logger, sugar, err := InitLogger("info", false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	cfg, err := InitConfig(sugar)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	logger, sugar, err = InitLogger(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	store, err := InitStorage(cfg, sugar)
	if err != nil {
		return nil, err
	}
	app.Store = store

	app.Cache = InitRedis(cfg, sugar)

	var cache service.Cache
	if app.Cache != nil {
		cache = app.Cache
	}
	svc, err := service.NewHydroService(store, cache, service.Options{
		LocalCacheSize: cfg.Engine.LocalCacheSize,
		MaxCurvePoints: cfg.Engine.MaxCurvePoints,
		ComputeTimeout: cfg.Engine.ComputeTimeout,
		CacheTTL:       cfg.Redis.TTL,
	}, sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize service: %w", err)
	}
	app.Service = svc

	app.APIServer = api.NewAPI(store, svc, cfg, sugar)
	return app, nil
}

// Start launches the API server and blocks until it exits.
func (a *App) Start() error {
	a.Sugar.Infow("API server starting", "addr", a.Config.Addr())
	if err := a.APIServer.Start(a.Config.Addr()); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// ShutdownSignal returns a channel that receives once SIGINT or SIGTERM
// arrives.
func (a *App) ShutdownSignal() <-chan struct{} {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		a.Sugar.Infow("Shutdown signal received", "signal", sig.String())
		close(a.shutdownCh)
	}()
	return a.shutdownCh
}

// WaitForShutdown blocks until SIGINT or SIGTERM.
func (a *App) WaitForShutdown() {
	<-a.ShutdownSignal()
}

// Shutdown stops components in dependency order: the API first so no new
// computations arrive, then the cache, then storage.
func (a *App) Shutdown() {
	a.Sugar.Info("Phase 1: Stopping API server...")
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.API.ShutdownTimeout)
	defer cancel()
	if err := a.APIServer.Stop(ctx); err != nil {
		a.Sugar.Warnw("API server shutdown error", "error", err)
	}

	if a.Cache != nil {
		a.Sugar.Info("Phase 2: Closing Redis connection...")
		if err := a.Cache.Close(); err != nil {
			a.Sugar.Warnw("Redis close error", "error", err)
		}
	}

	a.Sugar.Info("Phase 3: Closing storage...")
	if err := a.Store.Close(); err != nil {
		a.Sugar.Warnw("Storage close error", "error", err)
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}
