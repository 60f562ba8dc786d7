package stability

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navarch/core"
	"navarch/hydro"
	"navarch/testhull"
)

const (
	bargeL  = 100.0
	bargeB  = 20.0
	bargeD  = 10.0
	bargeT  = 5.0
	bargeKG = 2.5
)

func newCalc() *Calculator {
	return New(hydro.New())
}

func bargeGeom() *core.Geometry {
	return testhull.Barge(bargeL, bargeB, bargeD, 11, 21)
}

func bargeRequest(method core.StabilityMethod) *core.GZRequest {
	return &core.GZRequest{
		LoadcaseID:     "lc-test",
		MinAngle:       0,
		MaxAngle:       45,
		AngleIncrement: 2.5,
		Method:         method,
		Draft:          bargeT,
	}
}

func TestComputeGZCurve_WallSidedBargeAnalytic(t *testing.T) {
	// Rectangular barge with KG at mid-draft: GMt = B²/(12T), and the
	// wall-sided closed form GZ = sinφ·(GMt + (BMt/2)·tan²φ) is exact for
	// the analytical method across [0°, 45°].
	c := newCalc()
	curve, err := c.ComputeGZCurve(context.Background(), bargeGeom(), testhull.Loadcase(bargeKG), bargeRequest(core.MethodWallSided))
	require.NoError(t, err)

	bm := bargeB * bargeB / (12 * bargeT)
	gm := bargeT/2 + bm - bargeKG
	assert.InDelta(t, 6.6667, curve.InitialGMt, 1e-3)
	assert.InDelta(t, gm, curve.InitialGMt, 1e-9)

	for _, p := range curve.Points {
		phi := p.HeelDeg * math.Pi / 180
		want := math.Sin(phi) * (gm + bm/2*math.Tan(phi)*math.Tan(phi))
		assert.InDelta(t, want, p.GZ, 1e-9, "heel %g", p.HeelDeg)
		assert.InDelta(t, p.GZ+bargeKG*math.Sin(phi), p.KN, 1e-9)
	}
}

func TestComputeGZCurve_WallSidedSmallAngleGMLimit(t *testing.T) {
	// For small angles GZ → GMt·sinφ: with KG at KB the barge limit is
	// GZ ≈ (B²/12T)·sinφ·cosφ, which the wall-sided output matches there.
	c := newCalc()
	req := bargeRequest(core.MethodWallSided)
	req.MaxAngle = 10
	req.AngleIncrement = 1
	curve, err := c.ComputeGZCurve(context.Background(), bargeGeom(), testhull.Loadcase(bargeKG), req)
	require.NoError(t, err)

	bm := bargeB * bargeB / (12 * bargeT)
	for _, p := range curve.Points[1:] {
		phi := p.HeelDeg * math.Pi / 180
		limit := bm * math.Sin(phi) * math.Cos(phi)
		assert.InEpsilon(t, limit, p.GZ, 0.04, "heel %g", p.HeelDeg)
	}
}

func TestComputeGZCurve_MethodAgreementAtSmallAngles(t *testing.T) {
	// WallSided and FullImmersion must agree within 15% below 15°. The
	// tolerance is wide because the integration strategies differ
	// materially.
	c := newCalc()
	geom := bargeGeom()
	lc := testhull.Loadcase(bargeKG)

	req := bargeRequest(core.MethodWallSided)
	req.MaxAngle = 14
	req.AngleIncrement = 2
	ws, err := c.ComputeGZCurve(context.Background(), geom, lc, req)
	require.NoError(t, err)

	req = bargeRequest(core.MethodFullImmersion)
	req.MaxAngle = 14
	req.AngleIncrement = 2
	fi, err := c.ComputeGZCurve(context.Background(), geom, lc, req)
	require.NoError(t, err)

	require.Equal(t, len(ws.Points), len(fi.Points))
	for i := range ws.Points {
		if ws.Points[i].HeelDeg == 0 {
			assert.InDelta(t, 0, fi.Points[i].GZ, 1e-9)
			continue
		}
		assert.InEpsilon(t, ws.Points[i].GZ, fi.Points[i].GZ, 0.15,
			"heel %g: wall-sided %g vs full-immersion %g",
			ws.Points[i].HeelDeg, ws.Points[i].GZ, fi.Points[i].GZ)
	}
}

// elevatedWaterlineBarge builds the barge with its lowest waterline at z=1
// instead of the keel. The hull below the first waterline carries the same
// constant half-breadth, so the stability answers must match the standard
// barge.
func elevatedWaterlineBarge(t *testing.T) *core.Geometry {
	t.Helper()
	var stations []core.Station
	for i := 0; i < 11; i++ {
		stations = append(stations, core.Station{Index: i, X: bargeL * float64(i) / 10})
	}
	var waterlines []core.Waterline
	var offsets []core.Offset
	for j := 0; j < 10; j++ {
		waterlines = append(waterlines, core.Waterline{Index: j, Z: 1 + float64(j)})
		for i := 0; i < 11; i++ {
			offsets = append(offsets, core.Offset{StationIndex: i, WaterlineIndex: j, HalfBreadth: bargeB / 2})
		}
	}
	geom, err := core.NewGeometry(stations, waterlines, offsets)
	require.NoError(t, err)
	return geom
}

func TestComputeGZCurve_MethodAgreementWaterlinesAboveKeel(t *testing.T) {
	// The heeled re-integration must cover the strip between the keel and
	// the lowest waterline just like the upright calculator does, or the
	// two methods drift apart on grids that start above z=0.
	c := newCalc()
	geom := elevatedWaterlineBarge(t)
	lc := testhull.Loadcase(bargeKG)

	req := bargeRequest(core.MethodWallSided)
	req.MaxAngle = 14
	req.AngleIncrement = 2
	ws, err := c.ComputeGZCurve(context.Background(), geom, lc, req)
	require.NoError(t, err)

	req = bargeRequest(core.MethodFullImmersion)
	req.MaxAngle = 14
	req.AngleIncrement = 2
	fi, err := c.ComputeGZCurve(context.Background(), geom, lc, req)
	require.NoError(t, err)

	require.Equal(t, len(ws.Points), len(fi.Points))
	for i := range ws.Points {
		if ws.Points[i].HeelDeg == 0 {
			continue
		}
		assert.InEpsilon(t, ws.Points[i].GZ, fi.Points[i].GZ, 0.15,
			"heel %g: wall-sided %g vs full-immersion %g",
			ws.Points[i].HeelDeg, ws.Points[i].GZ, fi.Points[i].GZ)
	}
}

func TestComputeGZCurve_FullImmersionLargeAngles(t *testing.T) {
	// The numerical method keeps producing finite values through deck-edge
	// immersion and beyond, up to 180°; GZ goes negative once the hull is
	// past its stability range.
	c := newCalc()
	req := &core.GZRequest{
		LoadcaseID:     "lc-test",
		MinAngle:       0,
		MaxAngle:       180,
		AngleIncrement: 10,
		Method:         core.MethodFullImmersion,
		Draft:          bargeT,
	}
	curve, err := c.ComputeGZCurve(context.Background(), bargeGeom(), testhull.Loadcase(bargeKG), req)
	require.NoError(t, err)
	require.Len(t, curve.Points, 19)
	sawNegative := false
	for _, p := range curve.Points {
		assert.False(t, math.IsNaN(p.GZ), "heel %g", p.HeelDeg)
		assert.False(t, math.IsInf(p.GZ, 0), "heel %g", p.HeelDeg)
		if p.HeelDeg >= 90 && p.GZ < 0 {
			sawNegative = true
		}
	}
	assert.True(t, sawNegative, "the arm turns upsetting past the range of stability")
}

func TestComputeGZCurve_UnstableLoadcaseDegradesGracefully(t *testing.T) {
	// KG far above the metacenter: negative initial GMt, negative GZ at
	// small angles, but no error.
	c := newCalc()
	lc := testhull.Loadcase(12.0)
	for _, m := range []core.StabilityMethod{core.MethodWallSided, core.MethodFullImmersion} {
		req := bargeRequest(m)
		req.MaxAngle = 20
		curve, err := c.ComputeGZCurve(context.Background(), bargeGeom(), lc, req)
		require.NoError(t, err, "method %s", m)
		assert.Negative(t, curve.InitialGMt)
		assert.Negative(t, curve.Points[2].GZ, "method %s", m)
	}
}

func TestComputeGZCurve_MaxGZFromSampledPoints(t *testing.T) {
	c := newCalc()
	req := bargeRequest(core.MethodFullImmersion)
	req.MaxAngle = 60
	req.AngleIncrement = 5
	curve, err := c.ComputeGZCurve(context.Background(), bargeGeom(), testhull.Loadcase(bargeKG), req)
	require.NoError(t, err)

	var wantMax float64
	var wantAngle float64
	for _, p := range curve.Points {
		if p.GZ > wantMax {
			wantMax = p.GZ
			wantAngle = p.HeelDeg
		}
	}
	assert.Equal(t, wantMax, curve.MaxGZ)
	assert.Equal(t, wantAngle, curve.AngleAtMaxGZ)
	assert.Positive(t, curve.MaxGZ)
}

func TestComputeGZCurve_SampledGMAnnotation(t *testing.T) {
	c := newCalc()
	req := bargeRequest(core.MethodWallSided)
	req.MaxAngle = 10
	req.AngleIncrement = 1
	curve, err := c.ComputeGZCurve(context.Background(), bargeGeom(), testhull.Loadcase(bargeKG), req)
	require.NoError(t, err)

	// Near upright the GZ slope approximates the initial GMt.
	require.NotNil(t, curve.Points[0].GMAtAngle)
	assert.InEpsilon(t, curve.InitialGMt, *curve.Points[0].GMAtAngle, 0.02)
}

func TestComputeGZCurve_Validation(t *testing.T) {
	c := newCalc()
	geom := bargeGeom()
	lc := testhull.Loadcase(bargeKG)
	ctx := context.Background()

	t.Run("missing KG", func(t *testing.T) {
		noKG := &core.Loadcase{ID: "lc", Rho: 1.025}
		_, err := c.ComputeGZCurve(ctx, geom, noKG, bargeRequest(core.MethodWallSided))
		require.ErrorIs(t, err, core.ErrLoadcaseRequired)
	})
	t.Run("nil loadcase", func(t *testing.T) {
		_, err := c.ComputeGZCurve(ctx, geom, nil, bargeRequest(core.MethodWallSided))
		require.ErrorIs(t, err, core.ErrLoadcaseRequired)
	})
	t.Run("angle range inverted", func(t *testing.T) {
		req := bargeRequest(core.MethodWallSided)
		req.MinAngle, req.MaxAngle = 30, 10
		_, err := c.ComputeGZCurve(ctx, geom, lc, req)
		require.Error(t, err)
		assert.Equal(t, core.ClassInvalidArgument, core.Classify(err))
	})
	t.Run("zero increment", func(t *testing.T) {
		req := bargeRequest(core.MethodWallSided)
		req.AngleIncrement = 0
		_, err := c.ComputeGZCurve(ctx, geom, lc, req)
		require.Error(t, err)
	})
	t.Run("unknown method", func(t *testing.T) {
		req := bargeRequest(core.StabilityMethod("levitation"))
		_, err := c.ComputeGZCurve(ctx, geom, lc, req)
		require.Error(t, err)
	})
	t.Run("nil geometry", func(t *testing.T) {
		_, err := c.ComputeGZCurve(ctx, nil, lc, bargeRequest(core.MethodWallSided))
		require.ErrorIs(t, err, core.ErrGeometryNotFound)
	})
}

func TestComputeGZCurve_Cancellation(t *testing.T) {
	c := newCalc()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ComputeGZCurve(ctx, bargeGeom(), testhull.Loadcase(bargeKG), bargeRequest(core.MethodFullImmersion))
	require.ErrorIs(t, err, context.Canceled)
}

func TestComputeGZCurve_DefaultDraft(t *testing.T) {
	c := newCalc()
	req := bargeRequest(core.MethodWallSided)
	req.Draft = 0
	curve, err := c.ComputeGZCurve(context.Background(), bargeGeom(), testhull.Loadcase(bargeKG), req)
	require.NoError(t, err)
	assert.Equal(t, bargeD, curve.Draft, "zero draft means design draft")
}

func TestComputeGZCurve_Determinism(t *testing.T) {
	c := newCalc()
	geom := testhull.Wigley(80, 12, 5, 15, 11)
	lc := testhull.Loadcase(3.0)
	req := &core.GZRequest{
		LoadcaseID:     "lc-test",
		MinAngle:       0,
		MaxAngle:       30,
		AngleIncrement: 5,
		Method:         core.MethodFullImmersion,
	}
	a, err := c.ComputeGZCurve(context.Background(), geom, lc, req)
	require.NoError(t, err)
	b, err := c.ComputeGZCurve(context.Background(), geom, lc, req)
	require.NoError(t, err)
	a.ComputationTimeMs, b.ComputationTimeMs = 0, 0
	assert.Equal(t, a, b)
}
