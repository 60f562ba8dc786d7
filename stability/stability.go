// Package stability computes large-angle righting-arm (GZ/KN) curves with
// two alternative algorithms — the analytical wall-sided approximation and
// the direct full-immersion numerical method — and evaluates computed curves
// against the IMO intact-stability criteria.
package stability

import (
	"context"
	"fmt"
	"math"
	"time"

	"navarch/core"
	"navarch/hydro"
)

// Calculator computes GZ curves. Stateless and safe for concurrent use.
type Calculator struct {
	calc *hydro.Calculator
}

// New returns a Calculator backed by the given hydrostatic calculator.
func New(calc *hydro.Calculator) *Calculator {
	return &Calculator{calc: calc}
}

// ComputeGZCurve samples GZ over [MinAngle, MaxAngle] in AngleIncrement
// steps (degrees). KG is mandatory: the loadcase must carry it. A negative
// initial GMt or extreme angles up to 180° degrade to negative arms, never
// to an error. Cancellation is checked between angles; partial curves are
// discarded.
func (c *Calculator) ComputeGZCurve(ctx context.Context, geom *core.Geometry, lc *core.Loadcase, req *core.GZRequest) (*core.StabilityCurve, error) {
	if geom == nil {
		return nil, core.ErrGeometryNotFound
	}
	if !lc.HasKG() {
		return nil, core.ErrLoadcaseRequired
	}
	if req.MinAngle < 0 {
		return nil, core.NewInvalidArgument("min_angle", "must be non-negative")
	}
	if req.MinAngle >= req.MaxAngle {
		return nil, core.NewInvalidArgument("min_angle", "must be less than max_angle")
	}
	if req.MaxAngle > 180 {
		return nil, core.NewInvalidArgument("max_angle", "must not exceed 180 degrees")
	}
	if req.AngleIncrement <= 0 {
		return nil, core.NewInvalidArgument("angle_increment", "must be positive")
	}
	if !req.Method.Valid() {
		return nil, core.NewInvalidArgument("method", fmt.Sprintf("unknown stability method %q", req.Method))
	}

	draft := req.Draft
	if draft == 0 {
		draft = geom.MaxDraft()
	}
	kg := *lc.KG

	upright, err := c.calc.ComputeAtDraft(geom, lc, draft, 0)
	if err != nil {
		return nil, err
	}
	initialGMt := *upright.GMt

	var m method
	switch req.Method {
	case core.MethodWallSided:
		m = &wallSided{gmt: initialGMt, bmt: upright.BMt, kg: kg}
	case core.MethodFullImmersion:
		m = newFullImmersion(geom, draft, kg)
	}

	start := time.Now()
	curve := &core.StabilityCurve{
		Method:       req.Method,
		Draft:        draft,
		Displacement: upright.Displacement,
		KG:           kg,
		InitialGMt:   initialGMt,
	}

	for angle := req.MinAngle; angle <= req.MaxAngle+1e-9; angle += req.AngleIncrement {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		phi := angle * math.Pi / 180
		gz, kn := m.evaluate(phi)
		curve.Points = append(curve.Points, core.GZPoint{HeelDeg: angle, GZ: gz, KN: kn})
	}

	fillSampledGM(curve.Points)

	// The reported maximum is the best sampled point; no sub-grid
	// refinement.
	curve.MaxGZ = curve.Points[0].GZ
	curve.AngleAtMaxGZ = curve.Points[0].HeelDeg
	for _, p := range curve.Points[1:] {
		if p.GZ > curve.MaxGZ {
			curve.MaxGZ = p.GZ
			curve.AngleAtMaxGZ = p.HeelDeg
		}
	}
	curve.ComputationTimeMs = time.Since(start).Milliseconds()
	return curve, nil
}

// fillSampledGM annotates each point with the sampled curve slope dGZ/dφ
// in m/rad: central differences inside, one-sided at the ends.
func fillSampledGM(points []core.GZPoint) {
	n := len(points)
	if n < 2 {
		return
	}
	rad := math.Pi / 180
	slope := func(a, b core.GZPoint) float64 {
		return (b.GZ - a.GZ) / ((b.HeelDeg - a.HeelDeg) * rad)
	}
	for i := range points {
		var gm float64
		switch {
		case i == 0:
			gm = slope(points[0], points[1])
		case i == n-1:
			gm = slope(points[n-2], points[n-1])
		default:
			gm = slope(points[i-1], points[i+1])
		}
		points[i].GMAtAngle = &gm
	}
}
