// Package api exposes vessel management and hydrostatic computation over
// HTTP. Handlers validate at the boundary, delegate to the service and
// storage layers, and round outgoing numerics to a fixed precision so
// responses are stable across platforms.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"navarch/config"
	"navarch/service"
	"navarch/storage"
)

// rateLimiterEntry holds a rate limiter with last seen time
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// API holds the HTTP server and its dependencies.
type API struct {
	router *mux.Router
	server *http.Server

	store    storage.Store
	svc      *service.HydroService
	config   *config.Config
	logger   *zap.SugaredLogger
	validate *validator.Validate

	rateLimiters   map[string]*rateLimiterEntry
	rateLimitersMu sync.Mutex
	stopCh         chan struct{}
}

// NewAPI creates the API server and wires its routes.
func NewAPI(store storage.Store, svc *service.HydroService, cfg *config.Config, logger *zap.SugaredLogger) *API {
	a := &API{
		router:       mux.NewRouter(),
		store:        store,
		svc:          svc,
		config:       cfg,
		logger:       logger,
		validate:     validator.New(),
		rateLimiters: make(map[string]*rateLimiterEntry),
		stopCh:       make(chan struct{}),
	}
	a.setupRoutes()
	go a.cleanupRateLimiters()
	return a
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.corsMiddleware)
	a.router.Use(a.rateLimitMiddleware)
	a.router.Use(a.loggingMiddleware)

	a.router.HandleFunc("/api/vessels", a.getVessels).Methods("GET")
	a.router.HandleFunc("/api/vessels", a.createVessel).Methods("POST")
	a.router.HandleFunc("/api/vessels/{id}", a.getVessel).Methods("GET")
	a.router.HandleFunc("/api/vessels/{id}", a.updateVessel).Methods("PUT")
	a.router.HandleFunc("/api/vessels/{id}", a.deleteVessel).Methods("DELETE")

	a.router.HandleFunc("/api/vessels/{id}/geometry", a.getGeometry).Methods("GET")
	a.router.HandleFunc("/api/vessels/{id}/geometry", a.putGeometry).Methods("PUT")
	a.router.HandleFunc("/api/vessels/{id}/geometry", a.deleteGeometry).Methods("DELETE")

	a.router.HandleFunc("/api/vessels/{id}/loadcases", a.getLoadcases).Methods("GET")
	a.router.HandleFunc("/api/vessels/{id}/loadcases", a.createLoadcase).Methods("POST")
	a.router.HandleFunc("/api/loadcases/{id}", a.getLoadcase).Methods("GET")
	a.router.HandleFunc("/api/loadcases/{id}", a.updateLoadcase).Methods("PUT")
	a.router.HandleFunc("/api/loadcases/{id}", a.deleteLoadcase).Methods("DELETE")

	a.router.HandleFunc("/api/vessels/{id}/hydrostatics", a.computeHydrostatics).Methods("GET")
	a.router.HandleFunc("/api/vessels/{id}/hydrostatics/table", a.computeTable).Methods("POST")
	a.router.HandleFunc("/api/vessels/{id}/curves", a.generateCurves).Methods("POST")
	a.router.HandleFunc("/api/vessels/{id}/curves/bonjean", a.generateBonjean).Methods("GET")
	a.router.HandleFunc("/api/vessels/{id}/stability/gz", a.computeGZ).Methods("POST")
	a.router.HandleFunc("/api/vessels/{id}/stability/criteria", a.checkCriteria).Methods("POST")
	a.router.HandleFunc("/api/vessels/{id}/stability/gz/stream", a.streamGZ).Methods("GET")

	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the API server
func (a *API) Start(addr string) error {
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  a.config.API.ReadTimeout,
		WriteTimeout: a.config.API.WriteTimeout,
	}
	return a.server.ListenAndServe()
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	close(a.stopCh)
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}

// Handler exposes the router for tests.
func (a *API) Handler() http.Handler {
	return a.router
}
