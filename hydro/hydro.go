// Package hydro computes hydrostatic properties of a hull form at a given
// draft and trim: displaced volume, centers of buoyancy, metacentric radii,
// waterplane properties, and form coefficients. Everything is a double
// integration over the offset grid built on the quad package; nothing here
// re-derives integration logic.
package hydro

import (
	"context"
	"math"

	"navarch/core"
	"navarch/quad"
)

// Calculator derives hydrostatic results from geometry. It is stateless:
// every method is a pure function of its inputs and safe for concurrent use.
type Calculator struct{}

// New returns a Calculator.
func New() *Calculator {
	return &Calculator{}
}

// ComputeAtDraft computes the full hydrostatic state at one draft and trim
// angle (degrees, positive bow down). The loadcase may be nil; GMt/GMl are
// then left unset. Draft zero produces a zero-volume result, not an error.
func (c *Calculator) ComputeAtDraft(geom *core.Geometry, lc *core.Loadcase, draft, trim float64) (*core.HydroResult, error) {
	if geom == nil {
		return nil, core.ErrGeometryNotFound
	}
	if draft < 0 {
		return nil, core.NewInvalidArgument("draft", "must be non-negative")
	}

	res := &core.HydroResult{Draft: draft, Trim: trim}
	rho := lc.Density()

	xs := geom.StationXs()
	lpp := geom.Length()
	xMid := xs[0] + lpp/2
	tanTrim := math.Tan(trim * math.Pi / 180)

	// Sectional area and vertical centroid per station at the local draft.
	areas := make([]float64, len(xs))
	zMoments := make([]float64, len(xs)) // area-weighted vertical centroid numerators
	for si := range xs {
		local := localDraft(draft, tanTrim, xs[si], xMid, geom.MaxDraft())
		area, zbar, err := sectionProperties(geom, si, local)
		if err != nil {
			return nil, err
		}
		areas[si] = area
		zMoments[si] = area * zbar
	}

	volume, err := quad.Integrate(xs, areas)
	if err != nil {
		return nil, err
	}
	res.Volume = volume
	res.Displacement = volume * rho

	if volume > 0 {
		xMom, err := quad.FirstMoment(xs, areas)
		if err != nil {
			return nil, err
		}
		res.LCB = xMom / volume

		zMom, err := quad.Integrate(xs, zMoments)
		if err != nil {
			return nil, err
		}
		res.KB = zMom / volume
	}
	// TCB stays zero: offsets describe a symmetric hull.

	if err := c.waterplane(geom, res, draft, tanTrim, xMid); err != nil {
		return nil, err
	}

	if volume > 0 {
		res.BMt = res.Iwp / volume
		res.BMl = res.Iwl / volume
	}

	c.coefficients(geom, res, areas, draft)

	if lc.HasKG() {
		kg := *lc.KG
		gmt := res.KB + res.BMt - kg
		gml := res.KB + res.BMl - kg
		res.GMt = &gmt
		res.GMl = &gml
	}

	return res, nil
}

// ComputeTable maps ComputeAtDraft over a draft sequence, checking for
// cancellation between iterations. Partial results are discarded on cancel.
func (c *Calculator) ComputeTable(ctx context.Context, geom *core.Geometry, lc *core.Loadcase, drafts []float64) ([]*core.HydroResult, error) {
	if len(drafts) == 0 {
		return nil, core.NewInvalidArgument("drafts", "must not be empty")
	}
	out := make([]*core.HydroResult, 0, len(drafts))
	for _, d := range drafts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := c.ComputeAtDraft(geom, lc, d, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// SectionalArea computes the submerged full-breadth cross-section area of
// one station up to the given draft: the Bonjean kernel.
func (c *Calculator) SectionalArea(geom *core.Geometry, si int, draft float64) (float64, error) {
	if geom == nil {
		return 0, core.ErrGeometryNotFound
	}
	area, _, err := sectionProperties(geom, si, draft)
	return area, err
}

// localDraft applies the linear trim correction and clamps to the waterline
// range.
func localDraft(draft, tanTrim, x, xMid, maxZ float64) float64 {
	d := draft + (x-xMid)*tanTrim
	if d < 0 {
		return 0
	}
	if d > maxZ {
		return maxZ
	}
	return d
}

// sectionProperties integrates the interpolated half-breadth curve of one
// station over z in [0, draft] and returns the full-breadth area and its
// vertical centroid. Draft is clamped to the available waterline range.
func sectionProperties(geom *core.Geometry, si int, draft float64) (area, zbar float64, err error) {
	if draft > geom.MaxDraft() {
		draft = geom.MaxDraft()
	}
	if draft <= 0 {
		return 0, 0, nil
	}

	zs, ys := sectionSamples(geom, si, draft)
	half, err := quad.Integrate(zs, ys)
	if err != nil {
		return 0, 0, err
	}
	if half <= 0 {
		return 0, 0, nil
	}
	zMom, err := quad.FirstMoment(zs, ys)
	if err != nil {
		return 0, 0, err
	}
	return 2 * half, zMom / half, nil
}

// sectionSamples builds the z grid for one station from the keel to the
// draft: every waterline strictly below the draft plus the draft itself,
// with half-breadths interpolated from the offset column.
func sectionSamples(geom *core.Geometry, si int, draft float64) (zs, ys []float64) {
	wls := geom.WaterlineZs()
	zs = make([]float64, 0, len(wls)+2)
	if wls[0] > 0 {
		zs = append(zs, 0)
	}
	for _, z := range wls {
		if z < draft {
			zs = append(zs, z)
		}
	}
	zs = append(zs, draft)
	ys = make([]float64, len(zs))
	for i, z := range zs {
		ys[i] = geom.HalfBreadthAt(si, z)
	}
	return zs, ys
}

// waterplane fills Awp, LCF, Iwp, Iwl, Lwl, and Bwl from the offsets
// interpolated at the draft's waterline.
func (c *Calculator) waterplane(geom *core.Geometry, res *core.HydroResult, draft, tanTrim, xMid float64) error {
	xs := geom.StationXs()
	ys := make([]float64, len(xs))
	y3 := make([]float64, len(xs))
	var bMax float64
	for si := range xs {
		local := localDraft(draft, tanTrim, xs[si], xMid, geom.MaxDraft())
		var y float64
		if local > 0 {
			y = geom.HalfBreadthAt(si, local)
		}
		ys[si] = y
		y3[si] = y * y * y
		if y > bMax {
			bMax = y
		}
	}
	res.Bwl = 2 * bMax
	res.Lwl = geom.Length()
	if bMax == 0 {
		return nil
	}

	halfAwp, err := quad.Integrate(xs, ys)
	if err != nil {
		return err
	}
	res.Awp = 2 * halfAwp
	if res.Awp <= 0 {
		return nil
	}

	xMom, err := quad.FirstMoment(xs, ys)
	if err != nil {
		return err
	}
	res.LCF = 2 * xMom / res.Awp

	iy3, err := quad.Integrate(xs, y3)
	if err != nil {
		return err
	}
	// Transverse inertia of a symmetric strip of breadth 2y about the
	// centerline: (2y)³/12 per unit length.
	res.Iwp = 2.0 / 3.0 * iy3

	x2Mom, err := quad.SecondMoment(xs, ys)
	if err != nil {
		return err
	}
	// Parallel-axis shift from the x origin to the LCF.
	res.Iwl = 2*x2Mom - res.Awp*res.LCF*res.LCF
	if res.Iwl < 0 {
		res.Iwl = 0
	}
	return nil
}

// coefficients fills the dimensionless form coefficients against the
// Lwl × Bwl × T reference block.
func (c *Calculator) coefficients(geom *core.Geometry, res *core.HydroResult, areas []float64, draft float64) {
	if draft <= 0 || res.Bwl <= 0 || res.Lwl <= 0 {
		return
	}
	t := math.Min(draft, geom.MaxDraft())

	var aMax float64
	for _, a := range areas {
		if a > aMax {
			aMax = a
		}
	}

	block := res.Lwl * res.Bwl * t
	if block > 0 {
		res.Cb = res.Volume / block
	}
	if aMax > 0 {
		res.Cm = aMax / (res.Bwl * t)
		res.Cp = res.Volume / (aMax * res.Lwl)
	}
	if res.Awp > 0 {
		res.Cwp = res.Awp / (res.Lwl * res.Bwl)
	}
}
