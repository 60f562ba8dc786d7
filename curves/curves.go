// Package curves drives the hydrostatic calculator across draft grids to
// produce named property curves (displacement, KB, LCB, waterplane area,
// GMt, ...) and per-station Bonjean sectional-area curves.
package curves

import (
	"context"
	"fmt"

	"navarch/core"
	"navarch/hydro"
)

// Generator produces property curves from geometry. Stateless and safe for
// concurrent use.
type Generator struct {
	calc *hydro.Calculator
}

// New returns a Generator backed by the given calculator.
func New(calc *hydro.Calculator) *Generator {
	return &Generator{calc: calc}
}

// Generate samples the requested property over a linear draft grid of n
// points in [minDraft, maxDraft]. GMt curves require a loadcase with KG.
// Cancellation is checked between grid points; partial results are
// discarded.
func (g *Generator) Generate(ctx context.Context, geom *core.Geometry, lc *core.Loadcase, typ core.CurveType, minDraft, maxDraft float64, n int) (*core.CurveData, error) {
	if !typ.Valid() {
		return nil, core.NewInvalidArgument("type", fmt.Sprintf("unknown curve type %q", typ))
	}
	if typ == core.CurveBonjean {
		return nil, core.NewInvalidArgument("type", "bonjean curves are per-station; use GenerateBonjean")
	}
	if n < 2 {
		return nil, core.NewInvalidArgument("point_count", "need at least 2 points")
	}
	if minDraft >= maxDraft {
		return nil, core.NewInvalidArgument("min_draft", "must be less than max_draft")
	}
	if minDraft < 0 {
		return nil, core.NewInvalidArgument("min_draft", "must be non-negative")
	}
	if typ.RequiresLoadcase() && !lc.HasKG() {
		return nil, core.ErrLoadcaseRequired
	}

	curve := &core.CurveData{Type: typ, Points: make([]core.CurvePoint, 0, n)}
	step := (maxDraft - minDraft) / float64(n-1)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		draft := minDraft + step*float64(i)
		res, err := g.calc.ComputeAtDraft(geom, lc, draft, 0)
		if err != nil {
			return nil, err
		}
		y, err := extract(typ, res)
		if err != nil {
			return nil, err
		}
		curve.Points = append(curve.Points, core.CurvePoint{X: draft, Y: y})
	}
	return curve, nil
}

// GenerateBatch produces one curve per requested type over a shared draft
// grid. Types are deduplicated; the same validation as Generate applies to
// each.
func (g *Generator) GenerateBatch(ctx context.Context, geom *core.Geometry, lc *core.Loadcase, types []core.CurveType, minDraft, maxDraft float64, n int) (map[core.CurveType]*core.CurveData, error) {
	if len(types) == 0 {
		return nil, core.NewInvalidArgument("types", "must not be empty")
	}
	out := make(map[core.CurveType]*core.CurveData, len(types))
	for _, typ := range types {
		if _, done := out[typ]; done {
			continue
		}
		c, err := g.Generate(ctx, geom, lc, typ, minDraft, maxDraft, n)
		if err != nil {
			return nil, fmt.Errorf("curve %s: %w", typ, err)
		}
		out[typ] = c
	}
	return out, nil
}

// GenerateBonjean produces one sectional-area-vs-draft curve per station,
// sampled at every waterline. Bonjean curves are geometry-only. Each curve
// starts at zero area at the keel and is monotone non-decreasing with draft
// for a non-reentrant hull; both properties fall out of integrating a
// non-negative half-breadth from the keel upward.
func (g *Generator) GenerateBonjean(ctx context.Context, geom *core.Geometry) ([]core.BonjeanCurve, error) {
	if geom == nil {
		return nil, core.ErrGeometryNotFound
	}
	zs := geom.WaterlineZs()
	out := make([]core.BonjeanCurve, 0, len(geom.Stations))
	for si, st := range geom.Stations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		curve := core.BonjeanCurve{
			StationIndex: st.Index,
			X:            st.X,
			Points:       make([]core.CurvePoint, 0, len(zs)),
		}
		for _, z := range zs {
			area, err := g.calc.SectionalArea(geom, si, z)
			if err != nil {
				return nil, err
			}
			curve.Points = append(curve.Points, core.CurvePoint{X: z, Y: area})
		}
		out = append(out, curve)
	}
	return out, nil
}

// extract pulls the requested scalar from a hydrostatic result. The switch
// is exhaustive over the closed curve enumeration; Generate has already
// rejected unknown types and bonjean.
func extract(typ core.CurveType, res *core.HydroResult) (float64, error) {
	switch typ {
	case core.CurveDisplacement:
		return res.Displacement, nil
	case core.CurveVolume:
		return res.Volume, nil
	case core.CurveKB:
		return res.KB, nil
	case core.CurveLCB:
		return res.LCB, nil
	case core.CurveLCF:
		return res.LCF, nil
	case core.CurveAwp:
		return res.Awp, nil
	case core.CurveBMt:
		return res.BMt, nil
	case core.CurveGMt:
		if res.GMt == nil {
			return 0, core.ErrLoadcaseRequired
		}
		return *res.GMt, nil
	case core.CurveCb:
		return res.Cb, nil
	case core.CurveCp:
		return res.Cp, nil
	case core.CurveCwp:
		return res.Cwp, nil
	case core.CurveBonjean:
		return 0, core.NewInvalidArgument("type", "bonjean is not a scalar curve")
	default:
		return 0, core.NewInvalidArgument("type", fmt.Sprintf("unknown curve type %q", typ))
	}
}
