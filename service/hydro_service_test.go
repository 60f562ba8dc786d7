package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"navarch/core"
	"navarch/hydro"
	"navarch/storage"
	"navarch/testhull"
)

const (
	testVesselID   = "vessel-1"
	testLoadcaseID = "lc-1"
)

// seedStore builds an in-memory store holding the standard barge and a
// loadcase with KG at half depth.
func seedStore(t *testing.T) *storage.Memory {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemory()

	require.NoError(t, store.CreateVessel(ctx, &core.Vessel{ID: testVesselID, Name: "barge"}))
	geom := testhull.Barge(100, 20, 8, 11, 9)
	var offsets []core.Offset
	for si, st := range geom.Stations {
		for wi, wl := range geom.Waterlines {
			offsets = append(offsets, core.Offset{
				StationIndex:   st.Index,
				WaterlineIndex: wl.Index,
				HalfBreadth:    geom.HalfBreadth(si, wi),
			})
		}
	}
	require.NoError(t, store.ReplaceGeometry(ctx, testVesselID, geom.Stations, geom.Waterlines, offsets))

	kg := 2.5
	require.NoError(t, store.CreateLoadcase(ctx, &core.Loadcase{
		ID: testLoadcaseID, VesselID: testVesselID, Name: "design", Rho: 1.025, KG: &kg,
	}))
	return store
}

func newService(t *testing.T, store Storage, shared Cache) *HydroService {
	t.Helper()
	svc, err := NewHydroService(store, shared, Options{
		LocalCacheSize: 16,
		MaxCurvePoints: 200,
		ComputeTimeout: 10 * time.Second,
	}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return svc
}

func TestComputeHydrostatics(t *testing.T) {
	svc := newService(t, seedStore(t), nil)

	res, err := svc.ComputeHydrostatics(context.Background(), testVesselID, testLoadcaseID, 5, 0)
	require.NoError(t, err)

	// Same numbers as calling the calculator directly.
	direct, err := hydro.New().ComputeAtDraft(testhull.Barge(100, 20, 8, 11, 9), testhull.Loadcase(2.5), 5, 0)
	require.NoError(t, err)
	assert.InDelta(t, direct.Volume, res.Volume, 1e-9)
	require.NotNil(t, res.GMt)
	assert.InDelta(t, *direct.GMt, *res.GMt, 1e-9)
}

func TestComputeHydrostatics_WithoutLoadcase(t *testing.T) {
	svc := newService(t, seedStore(t), nil)

	res, err := svc.ComputeHydrostatics(context.Background(), testVesselID, "", 5, 0)
	require.NoError(t, err)
	assert.Nil(t, res.GMt)
	assert.Greater(t, res.Volume, 0.0)
}

func TestComputeHydrostatics_LoadcaseOwnership(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateVessel(ctx, &core.Vessel{ID: "other", Name: "other"}))
	kg := 1.0
	require.NoError(t, store.CreateLoadcase(ctx, &core.Loadcase{
		ID: "lc-other", VesselID: "other", Name: "x", Rho: 1.025, KG: &kg,
	}))

	svc := newService(t, store, nil)
	_, err := svc.ComputeHydrostatics(ctx, testVesselID, "lc-other", 5, 0)
	assert.ErrorIs(t, err, core.ErrLoadcaseNotFound)
}

func TestComputeHydrostatics_NotFound(t *testing.T) {
	svc := newService(t, seedStore(t), nil)
	ctx := context.Background()

	_, err := svc.ComputeHydrostatics(ctx, "missing", "", 5, 0)
	assert.ErrorIs(t, err, core.ErrVesselNotFound)

	_, err = svc.ComputeHydrostatics(ctx, testVesselID, "missing", 5, 0)
	assert.ErrorIs(t, err, core.ErrLoadcaseNotFound)
}

func TestLocalCacheServesRepeatCalls(t *testing.T) {
	svc := newService(t, seedStore(t), nil)
	ctx := context.Background()

	first, err := svc.ComputeHydrostatics(ctx, testVesselID, testLoadcaseID, 5, 0)
	require.NoError(t, err)
	second, err := svc.ComputeHydrostatics(ctx, testVesselID, testLoadcaseID, 5, 0)
	require.NoError(t, err)

	// Same pointer: the second call came from the local LRU.
	assert.Same(t, first, second)
}

func TestGeometryChangeInvalidatesCache(t *testing.T) {
	store := seedStore(t)
	svc := newService(t, store, nil)
	ctx := context.Background()

	before, err := svc.ComputeHydrostatics(ctx, testVesselID, "", 5, 0)
	require.NoError(t, err)

	// Swap in a narrower barge; the revision bump changes the cache key.
	geom := testhull.Barge(100, 10, 8, 11, 9)
	var offsets []core.Offset
	for si, st := range geom.Stations {
		for wi, wl := range geom.Waterlines {
			offsets = append(offsets, core.Offset{
				StationIndex:   st.Index,
				WaterlineIndex: wl.Index,
				HalfBreadth:    geom.HalfBreadth(si, wi),
			})
		}
	}
	require.NoError(t, store.ReplaceGeometry(ctx, testVesselID, geom.Stations, geom.Waterlines, offsets))

	after, err := svc.ComputeHydrostatics(ctx, testVesselID, "", 5, 0)
	require.NoError(t, err)
	assert.InDelta(t, before.Volume/2, after.Volume, 1e-6)
}

func TestSharedCacheAcrossInstances(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := core.NewRedisCache(mr.Addr(), "", 0, 10, zaptest.NewLogger(t).Sugar())
	defer cache.Close()

	store := seedStore(t)
	ctx := context.Background()

	svcA := newService(t, store, cache)
	first, err := svcA.ComputeHydrostatics(ctx, testVesselID, testLoadcaseID, 5, 0)
	require.NoError(t, err)

	// A second instance with a cold local cache reads the shared entry.
	svcB := newService(t, store, cache)
	second, err := svcB.ComputeHydrostatics(ctx, testVesselID, testLoadcaseID, 5, 0)
	require.NoError(t, err)
	assert.InDelta(t, first.Volume, second.Volume, 1e-9)
	require.NotNil(t, second.GMt)
	assert.InDelta(t, *first.GMt, *second.GMt, 1e-9)
}

func TestInvalidateVesselPurgesBothLayers(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := core.NewRedisCache(mr.Addr(), "", 0, 10, zaptest.NewLogger(t).Sugar())
	defer cache.Close()

	store := seedStore(t)
	ctx := context.Background()
	svc := newService(t, store, cache)

	first, err := svc.ComputeHydrostatics(ctx, testVesselID, testLoadcaseID, 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, mr.Keys(), "shared cache should hold the result")

	svc.InvalidateVessel(ctx, testVesselID)
	assert.Empty(t, mr.Keys(), "shared cache entries for the vessel must be gone")

	// A repeat call recomputes instead of returning the evicted local entry.
	second, err := svc.ComputeHydrostatics(ctx, testVesselID, testLoadcaseID, 5, 0)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.InDelta(t, first.Volume, second.Volume, 1e-9)

	// Purging one vessel leaves others untouched.
	svc.InvalidateVessel(ctx, "someone-else")
	require.NotEmpty(t, mr.Keys())
}

func TestComputeTable(t *testing.T) {
	svc := newService(t, seedStore(t), nil)

	results, err := svc.ComputeTable(context.Background(), testVesselID, "", []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i := 1; i < len(results); i++ {
		assert.Greater(t, results[i].Volume, results[i-1].Volume)
	}
}

func TestComputeTable_TooManyDrafts(t *testing.T) {
	svc := newService(t, seedStore(t), nil)

	drafts := make([]float64, 201)
	for i := range drafts {
		drafts[i] = 0.01 * float64(i+1)
	}
	_, err := svc.ComputeTable(context.Background(), testVesselID, "", drafts)
	require.Error(t, err)
	assert.Equal(t, core.ClassInvalidArgument, core.Classify(err))
}

func TestGenerateCurves(t *testing.T) {
	svc := newService(t, seedStore(t), nil)

	out, err := svc.GenerateCurves(context.Background(), testVesselID, testLoadcaseID,
		[]core.CurveType{core.CurveDisplacement, core.CurveGMt}, 1, 5, 9)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out[core.CurveDisplacement].Points, 9)

	// Cached: a repeat call returns identical data.
	again, err := svc.GenerateCurves(context.Background(), testVesselID, testLoadcaseID,
		[]core.CurveType{core.CurveDisplacement, core.CurveGMt}, 1, 5, 9)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestGenerateBonjean(t *testing.T) {
	svc := newService(t, seedStore(t), nil)

	curves, err := svc.GenerateBonjean(context.Background(), testVesselID)
	require.NoError(t, err)
	assert.Len(t, curves, 11)
	for _, c := range curves {
		assert.NotEmpty(t, c.Points)
	}
}

func TestComputeGZCurveAndCriteria(t *testing.T) {
	svc := newService(t, seedStore(t), nil)

	req := &core.GZRequest{
		LoadcaseID:     testLoadcaseID,
		MinAngle:       0,
		MaxAngle:       60,
		AngleIncrement: 2.5,
		Method:         core.MethodFullImmersion,
		Draft:          5,
	}
	res, curve, err := svc.CheckCriteria(context.Background(), testVesselID, req)
	require.NoError(t, err)
	require.NotNil(t, curve)
	assert.True(t, res.AllPassed)
	assert.Len(t, res.Criteria, 6)
}

func TestComputeGZCurve_PointCap(t *testing.T) {
	svc := newService(t, seedStore(t), nil)

	req := &core.GZRequest{
		LoadcaseID:     testLoadcaseID,
		MinAngle:       0,
		MaxAngle:       180,
		AngleIncrement: 0.01,
		Method:         core.MethodWallSided,
	}
	_, err := svc.ComputeGZCurve(context.Background(), testVesselID, req)
	require.Error(t, err)
	assert.Equal(t, core.ClassInvalidArgument, core.Classify(err))
}
