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

// syntheticCurve builds a GZ curve GZ(φ) = gm·sin(φ) sampled every degree
// to maxDeg, which has closed-form areas gm·(1 − cos φ).
func syntheticCurve(gm, maxDeg float64) *core.StabilityCurve {
	curve := &core.StabilityCurve{
		Method:     core.MethodWallSided,
		InitialGMt: gm,
	}
	for a := 0.0; a <= maxDeg; a++ {
		phi := a * math.Pi / 180
		gz := gm * math.Sin(phi)
		curve.Points = append(curve.Points, core.GZPoint{HeelDeg: a, GZ: gz, KN: gz})
		if gz > curve.MaxGZ {
			curve.MaxGZ = gz
			curve.AngleAtMaxGZ = a
		}
	}
	return curve
}

func TestCheckCriteria_PassingCurve(t *testing.T) {
	// gm = 1.2 m: area to 30° = 1.2·(1−cos30°) ≈ 0.161 m·rad, area to 40°
	// ≈ 0.281, GZ(30°) = 0.6 — everything clears the thresholds, and the
	// sine curve peaks at the last sampled angle (80° ≥ 25°).
	curve := syntheticCurve(1.2, 80)
	res, err := CheckCriteria(curve)
	require.NoError(t, err)

	assert.Equal(t, StandardIMO, res.Standard)
	require.Len(t, res.Criteria, 6)
	assert.True(t, res.AllPassed)
	for _, cr := range res.Criteria {
		assert.True(t, cr.Passed, cr.Name)
	}

	byName := map[string]core.StabilityCriterion{}
	for _, cr := range res.Criteria {
		byName[cr.Name] = cr
	}
	assert.InDelta(t, 1.2*(1-math.Cos(30*math.Pi/180)), byName["Area under GZ curve to 30°"].Actual, 1e-4)
	assert.InDelta(t, 1.2*(1-math.Cos(40*math.Pi/180)), byName["Area under GZ curve to 40°"].Actual, 1e-4)
	assert.InDelta(t, 0.6, byName["GZ at 30° or greater"].Actual, 1e-4)
	assert.InDelta(t, 1.2, byName["Initial GMt"].Actual, 1e-9)
}

func TestCheckCriteria_FailingCurve(t *testing.T) {
	// A marginal ship: gm = 0.1 m fails the GM floor, the area minima, and
	// the GZ(30°) minimum.
	curve := syntheticCurve(0.1, 80)
	res, err := CheckCriteria(curve)
	require.NoError(t, err)
	assert.False(t, res.AllPassed)

	failed := 0
	for _, cr := range res.Criteria {
		if !cr.Passed {
			failed++
		}
	}
	assert.GreaterOrEqual(t, failed, 4)
}

func TestCheckCriteria_AggregateIsANDOfAll(t *testing.T) {
	// Passing areas and GZ but an early maximum: a curve that peaks at 20°
	// fails only the angle-of-maximum criterion, and that alone must fail
	// the aggregate.
	curve := &core.StabilityCurve{InitialGMt: 1.0}
	for a := 0.0; a <= 60; a++ {
		phi := a * math.Pi / 180
		// Peaks near 20° then decays slowly.
		gz := 1.5 * math.Sin(phi*90/20) * math.Exp(-phi)
		if a > 20 {
			gz = curve.Points[20].GZ * (1 - (a-20)/200)
		}
		curve.Points = append(curve.Points, core.GZPoint{HeelDeg: a, GZ: gz})
		if gz > curve.MaxGZ {
			curve.MaxGZ = gz
			curve.AngleAtMaxGZ = a
		}
	}
	res, err := CheckCriteria(curve)
	require.NoError(t, err)

	for _, cr := range res.Criteria {
		if cr.Name == "Angle of maximum GZ" {
			assert.False(t, cr.Passed)
		} else {
			assert.True(t, cr.Passed, cr.Name)
		}
	}
	assert.False(t, res.AllPassed)
}

func TestCheckCriteria_ShortCurveNoted(t *testing.T) {
	curve := syntheticCurve(1.2, 25)
	res, err := CheckCriteria(curve)
	require.NoError(t, err)

	for _, cr := range res.Criteria {
		if cr.Name == "Area under GZ curve to 40°" {
			assert.Equal(t, "curve ends before target angle", cr.Notes)
		}
	}
}

func TestCheckCriteria_InvalidCurve(t *testing.T) {
	_, err := CheckCriteria(nil)
	require.Error(t, err)
	_, err = CheckCriteria(&core.StabilityCurve{Points: []core.GZPoint{{HeelDeg: 0}}})
	require.Error(t, err)
	assert.Equal(t, core.ClassInvalidArgument, core.Classify(err))
}

func TestCheckCriteria_RejectsCurveNotStartingUpright(t *testing.T) {
	// Area criteria are measured from 0°; a curve sampled from 10° upward
	// would under-report them, so it is rejected rather than evaluated.
	curve := syntheticCurve(1.2, 80)
	curve.Points = curve.Points[10:]
	require.Equal(t, 10.0, curve.Points[0].HeelDeg)

	_, err := CheckCriteria(curve)
	require.Error(t, err)
	assert.Equal(t, core.ClassInvalidArgument, core.Classify(err))
	assert.Contains(t, err.Error(), "0°")
}

func TestCheckCriteria_EndToEndBarge(t *testing.T) {
	// The standard barge is enormously stiff: it clears every criterion
	// from its own computed full-immersion curve.
	c := newCalc()
	req := &core.GZRequest{
		LoadcaseID:     "lc-test",
		MinAngle:       0,
		MaxAngle:       60,
		AngleIncrement: 2.5,
		Method:         core.MethodFullImmersion,
		Draft:          bargeT,
	}
	curve, err := c.ComputeGZCurve(context.Background(), bargeGeom(), testhull.Loadcase(bargeKG), req)
	require.NoError(t, err)

	res, err := CheckCriteria(curve)
	require.NoError(t, err)
	assert.True(t, res.AllPassed, "criteria: %+v", res.Criteria)

	// No geometry recomputation: checking twice is bit-identical.
	again, err := CheckCriteria(curve)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestCheckCriteria_UsesHydroBackedCurve(t *testing.T) {
	// Wigley hull with a reasonable KG passes the GM floor; sanity-check
	// wiring between the stability calculator and the checker.
	c := newCalc()
	geom := testhull.Wigley(80, 12, 5, 15, 11)
	h, err := hydro.New().ComputeAtDraft(geom, testhull.Loadcase(4.0), 5, 0)
	require.NoError(t, err)
	require.NotNil(t, h.GMt)

	req := &core.GZRequest{
		LoadcaseID:     "lc-test",
		MinAngle:       0,
		MaxAngle:       40,
		AngleIncrement: 5,
		Method:         core.MethodFullImmersion,
	}
	curve, err := c.ComputeGZCurve(context.Background(), geom, testhull.Loadcase(4.0), req)
	require.NoError(t, err)
	assert.InDelta(t, *h.GMt, curve.InitialGMt, 1e-9)

	_, err = CheckCriteria(curve)
	require.NoError(t, err)
}
