// Package service binds storage to the computation engine. It resolves
// vessels, geometry, and loadcases by ID, enforces request limits, and
// caches computed results keyed by geometry revision so a geometry change
// invalidates every stale result implicitly.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"navarch/core"
	"navarch/curves"
	"navarch/hydro"
	"navarch/metrics"
	"navarch/stability"
)

// Storage defines the read operations the service needs. Defined here, in
// the consumer package, so tests can supply small fakes.
type Storage interface {
	GetVessel(ctx context.Context, id string) (*core.Vessel, error)
	GetGeometry(ctx context.Context, vesselID string) (*core.Geometry, error)
	GetLoadcase(ctx context.Context, loadcaseID string) (*core.Loadcase, error)
}

// Cache is the shared result cache contract, satisfied by core.RedisCache.
// A nil Cache disables the shared layer; the local LRU still applies.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Options tunes the service.
type Options struct {
	// LocalCacheSize caps the in-process LRU. Zero disables it.
	LocalCacheSize int
	// MaxCurvePoints bounds sampling density per request.
	MaxCurvePoints int
	// ComputeTimeout bounds one computation. Zero means no limit.
	ComputeTimeout time.Duration
	// CacheTTL is the shared cache expiration.
	CacheTTL time.Duration
}

// HydroService exposes the computation engine by vessel and loadcase ID.
type HydroService struct {
	store  Storage
	calc   *hydro.Calculator
	curves *curves.Generator
	stab   *stability.Calculator

	shared Cache
	local  *lru.Cache[string, interface{}]

	opts   Options
	logger *zap.SugaredLogger
}

// NewHydroService creates the service. store and logger are required;
// shared may be nil.
func NewHydroService(store Storage, shared Cache, opts Options, logger *zap.SugaredLogger) (*HydroService, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if opts.MaxCurvePoints < 2 {
		opts.MaxCurvePoints = 2000
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}

	calc := hydro.New()
	s := &HydroService{
		store:  store,
		calc:   calc,
		curves: curves.New(calc),
		stab:   stability.New(calc),
		shared: shared,
		opts:   opts,
		logger: logger,
	}
	if opts.LocalCacheSize > 0 {
		local, err := lru.New[string, interface{}](opts.LocalCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create local cache: %w", err)
		}
		s.local = local
	}
	return s, nil
}

// resolve loads the vessel, its geometry, and optionally a loadcase, and
// checks that the loadcase belongs to the vessel.
func (s *HydroService) resolve(ctx context.Context, vesselID, loadcaseID string) (*core.Vessel, *core.Geometry, *core.Loadcase, error) {
	vessel, err := s.store.GetVessel(ctx, vesselID)
	if err != nil {
		return nil, nil, nil, err
	}
	geom, err := s.store.GetGeometry(ctx, vesselID)
	if err != nil {
		return nil, nil, nil, err
	}

	var lc *core.Loadcase
	if loadcaseID != "" {
		lc, err = s.store.GetLoadcase(ctx, loadcaseID)
		if err != nil {
			return nil, nil, nil, err
		}
		if lc.VesselID != vesselID {
			return nil, nil, nil, core.ErrLoadcaseNotFound
		}
	}
	return vessel, geom, lc, nil
}

func (s *HydroService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.ComputeTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.ComputeTimeout)
	}
	return ctx, func() {}
}

// prefixDeleter is the optional bulk-eviction capability of the shared
// cache, satisfied by core.RedisCache.
type prefixDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// cacheKinds are the key namespaces written by this service.
var cacheKinds = []string{"hydro", "curves", "gz", "bonjean"}

// InvalidateVessel evicts every cached result for a vessel. Revision-keyed
// cache keys already keep stale entries from being served after a geometry
// write; this reclaims their space ahead of TTL expiry. Best effort: a
// failed purge is logged, not surfaced, since correctness never depends
// on it.
func (s *HydroService) InvalidateVessel(ctx context.Context, vesselID string) {
	if s.local != nil {
		marker := ":" + vesselID + ":"
		for _, key := range s.local.Keys() {
			if strings.Contains(key, marker) {
				s.local.Remove(key)
			}
		}
	}
	pd, ok := s.shared.(prefixDeleter)
	if !ok {
		return
	}
	for _, kind := range cacheKinds {
		if err := pd.DeletePrefix(ctx, kind+":"+vesselID+":"); err != nil {
			s.logger.Warnw("Shared cache purge failed", "vessel_id", vesselID, "error", err)
			return
		}
	}
}

// lcKey distinguishes cache entries by loadcase identity and revision;
// UpdatedAt changes whenever the loadcase is edited.
func lcKey(lc *core.Loadcase) string {
	if lc == nil {
		return "-"
	}
	return fmt.Sprintf("%s@%d", lc.ID, lc.UpdatedAt.UnixNano())
}

// cached runs compute unless key is already present in a cache layer. dest
// must be a pointer to the result type; fresh results are stored in both
// layers.
func (s *HydroService) cached(ctx context.Context, key string, dest interface{}, assign func(interface{}) bool, compute func() (interface{}, error)) (interface{}, error) {
	if s.local != nil {
		if v, ok := s.local.Get(key); ok {
			metrics.CacheHits.WithLabelValues("local").Inc()
			return v, nil
		}
		metrics.CacheMisses.WithLabelValues("local").Inc()
	}
	if s.shared != nil {
		found, err := s.shared.Get(ctx, key, dest)
		if err != nil {
			// Cache trouble degrades to recomputation.
			s.logger.Warnw("Shared cache read failed", "key", key, "error", err)
		} else if found && assign(dest) {
			if s.local != nil {
				s.local.Add(key, dest)
			}
			return dest, nil
		}
	}

	result, err := compute()
	if err != nil {
		return nil, err
	}
	if s.local != nil {
		s.local.Add(key, result)
	}
	if s.shared != nil {
		if err := s.shared.Set(ctx, key, result, s.opts.CacheTTL); err != nil {
			s.logger.Warnw("Shared cache write failed", "key", key, "error", err)
		}
	}
	return result, nil
}

// ComputeHydrostatics computes the full hydrostatic state of a vessel at
// one draft and trim. loadcaseID may be empty; GM fields are then omitted.
func (s *HydroService) ComputeHydrostatics(ctx context.Context, vesselID, loadcaseID string, draft, trim float64) (*core.HydroResult, error) {
	vessel, geom, lc, err := s.resolve(ctx, vesselID, loadcaseID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := fmt.Sprintf("hydro:%s:%d:%s:%.9g:%.9g", vesselID, vessel.GeometryRev, lcKey(lc), draft, trim)
	out := new(core.HydroResult)
	v, err := s.cached(ctx, key, out, func(d interface{}) bool {
		return d.(*core.HydroResult).Volume >= 0
	}, func() (interface{}, error) {
		timer := time.Now()
		defer func() {
			metrics.ComputationDuration.WithLabelValues("hydrostatics").Observe(time.Since(timer).Seconds())
		}()
		metrics.Computations.WithLabelValues("hydrostatics").Inc()
		return s.calc.ComputeAtDraft(geom, lc, draft, trim)
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.HydroResult), nil
}

// ComputeTable computes hydrostatics over a draft grid.
func (s *HydroService) ComputeTable(ctx context.Context, vesselID, loadcaseID string, drafts []float64) ([]*core.HydroResult, error) {
	if len(drafts) > s.opts.MaxCurvePoints {
		return nil, &core.InvalidArgumentError{Field: "drafts", Reason: fmt.Sprintf("at most %d drafts per request", s.opts.MaxCurvePoints)}
	}
	_, geom, lc, err := s.resolve(ctx, vesselID, loadcaseID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	timer := time.Now()
	defer func() {
		metrics.ComputationDuration.WithLabelValues("table").Observe(time.Since(timer).Seconds())
	}()
	metrics.Computations.WithLabelValues("table").Inc()
	return s.calc.ComputeTable(ctx, geom, lc, drafts)
}

// GenerateCurves produces the requested property curves over a draft range.
func (s *HydroService) GenerateCurves(ctx context.Context, vesselID, loadcaseID string, types []core.CurveType, minDraft, maxDraft float64, n int) (map[core.CurveType]*core.CurveData, error) {
	if n > s.opts.MaxCurvePoints {
		return nil, &core.InvalidArgumentError{Field: "points", Reason: fmt.Sprintf("at most %d points per curve", s.opts.MaxCurvePoints)}
	}
	vessel, geom, lc, err := s.resolve(ctx, vesselID, loadcaseID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := fmt.Sprintf("curves:%s:%d:%s:%v:%.9g:%.9g:%d", vesselID, vessel.GeometryRev, lcKey(lc), types, minDraft, maxDraft, n)
	out := make(map[core.CurveType]*core.CurveData)
	v, err := s.cached(ctx, key, &out, func(d interface{}) bool {
		return len(*d.(*map[core.CurveType]*core.CurveData)) > 0
	}, func() (interface{}, error) {
		timer := time.Now()
		defer func() {
			metrics.ComputationDuration.WithLabelValues("curves").Observe(time.Since(timer).Seconds())
		}()
		metrics.Computations.WithLabelValues("curves").Inc()
		return s.curves.GenerateBatch(ctx, geom, lc, types, minDraft, maxDraft, n)
	})
	if err != nil {
		return nil, err
	}
	switch m := v.(type) {
	case map[core.CurveType]*core.CurveData:
		return m, nil
	case *map[core.CurveType]*core.CurveData:
		return *m, nil
	}
	return nil, fmt.Errorf("unexpected cached curve type %T", v)
}

// GenerateBonjean produces the per-station sectional area curves.
func (s *HydroService) GenerateBonjean(ctx context.Context, vesselID string) ([]core.BonjeanCurve, error) {
	vessel, geom, _, err := s.resolve(ctx, vesselID, "")
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := fmt.Sprintf("bonjean:%s:%d", vesselID, vessel.GeometryRev)
	out := new([]core.BonjeanCurve)
	v, err := s.cached(ctx, key, out, func(d interface{}) bool {
		return len(*d.(*[]core.BonjeanCurve)) > 0
	}, func() (interface{}, error) {
		metrics.Computations.WithLabelValues("bonjean").Inc()
		return s.curves.GenerateBonjean(ctx, geom)
	})
	if err != nil {
		return nil, err
	}
	switch b := v.(type) {
	case []core.BonjeanCurve:
		return b, nil
	case *[]core.BonjeanCurve:
		return *b, nil
	}
	return nil, fmt.Errorf("unexpected cached bonjean type %T", v)
}

// ComputeGZCurve computes a righting-arm curve. The loadcase comes from the
// request and must carry KG.
func (s *HydroService) ComputeGZCurve(ctx context.Context, vesselID string, req *core.GZRequest) (*core.StabilityCurve, error) {
	if req == nil {
		return nil, &core.InvalidArgumentError{Field: "request", Reason: "missing"}
	}
	if req.AngleIncrement > 0 {
		points := (req.MaxAngle-req.MinAngle)/req.AngleIncrement + 1
		if points > float64(s.opts.MaxCurvePoints) {
			return nil, &core.InvalidArgumentError{Field: "angle_increment", Reason: fmt.Sprintf("at most %d points per curve", s.opts.MaxCurvePoints)}
		}
	}
	vessel, geom, lc, err := s.resolve(ctx, vesselID, req.LoadcaseID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := fmt.Sprintf("gz:%s:%d:%s:%s:%.9g:%.9g:%.9g:%.9g", vesselID, vessel.GeometryRev, lcKey(lc), req.Method, req.MinAngle, req.MaxAngle, req.AngleIncrement, req.Draft)
	out := new(core.StabilityCurve)
	v, err := s.cached(ctx, key, out, func(d interface{}) bool {
		return len(d.(*core.StabilityCurve).Points) > 0
	}, func() (interface{}, error) {
		timer := time.Now()
		defer func() {
			metrics.ComputationDuration.WithLabelValues("gz").Observe(time.Since(timer).Seconds())
		}()
		metrics.Computations.WithLabelValues("gz").Inc()
		return s.stab.ComputeGZCurve(ctx, geom, lc, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.StabilityCurve), nil
}

// CheckCriteria computes a GZ curve and evaluates the intact stability
// criteria against it.
func (s *HydroService) CheckCriteria(ctx context.Context, vesselID string, req *core.GZRequest) (*core.StabilityCriteriaResult, *core.StabilityCurve, error) {
	curve, err := s.ComputeGZCurve(ctx, vesselID, req)
	if err != nil {
		return nil, nil, err
	}
	metrics.Computations.WithLabelValues("criteria").Inc()
	res, err := stability.CheckCriteria(curve)
	if err != nil {
		return nil, nil, err
	}
	return res, curve, nil
}
