package stability

import (
	"math"

	"navarch/core"
	"navarch/quad"
)

// method is the strategy interface behind core.StabilityMethod: one
// implementation per algorithm, selected by the request, so each
// algorithm's invariants stay independent.
type method interface {
	// evaluate returns the righting arm GZ and the keel arm KN at the
	// given heel angle in radians. Implementations never fail: unstable
	// loadcases and extreme angles produce negative or degenerate arms,
	// not errors.
	evaluate(phi float64) (gz, kn float64)
}

// wallSided is the analytical wall-sided approximation
//
//	GZ(φ) = GMt·sinφ + (BMt/2)·tan²φ·sinφ
//
// valid while no deck immersion or bilge emergence changes the waterplane
// qualitatively. For a rectangular section with KG at mid-draft it reduces
// to GZ = BMt·sinφ·(1 + tan²φ/2).
type wallSided struct {
	gmt float64
	bmt float64
	kg  float64
}

func (m *wallSided) evaluate(phi float64) (float64, float64) {
	sin := math.Sin(phi)
	tan := math.Tan(phi)
	gz := m.gmt*sin + m.bmt/2*tan*tan*sin
	return gz, gz + m.kg*sin
}

// fullImmersion re-integrates the submerged geometry at each heel angle:
// the waterline plane is rotated about the centerline at the upright draft,
// each station's submerged cross-section area and centroid are recomputed,
// and the heeled buoyancy center gives KN, so GZ = KN − KG·sinφ.
type fullImmersion struct {
	geom  *core.Geometry
	draft float64
	kg    float64

	// zGrid is the merged, refined vertical sample grid shared by all
	// angles; built once per curve.
	zGrid []float64
}

// heelGridIntervals bounds the vertical integration step to maxDraft/n.
const heelGridIntervals = 64

func newFullImmersion(geom *core.Geometry, draft, kg float64) *fullImmersion {
	// The grid runs from the keel, not the first waterline: a grid whose
	// lowest waterline sits above z=0 still has hull below it, carried as
	// a constant half-breadth the same way the upright section samples do.
	zs := geom.WaterlineZs()
	if zs[0] > 0 {
		zs = append([]float64{0}, zs...)
	}
	return &fullImmersion{
		geom:  geom,
		draft: draft,
		kg:    kg,
		zGrid: refineGrid(zs, geom.MaxDraft()/heelGridIntervals),
	}
}

// refineGrid subdivides each interval of zs until no step exceeds maxStep,
// keeping the original breakpoints so piecewise-linear half-breadths stay
// exact at their knots.
func refineGrid(zs []float64, maxStep float64) []float64 {
	out := make([]float64, 0, len(zs)*4)
	out = append(out, zs[0])
	for i := 1; i < len(zs); i++ {
		span := zs[i] - zs[i-1]
		parts := int(math.Ceil(span / maxStep))
		if parts < 1 {
			parts = 1
		}
		for k := 1; k <= parts; k++ {
			out = append(out, zs[i-1]+span*float64(k)/float64(parts))
		}
	}
	return out
}

func (m *fullImmersion) evaluate(phi float64) (float64, float64) {
	sin := math.Sin(phi)
	if phi == 0 || sin <= 0 {
		// Upright (or a degenerate angle at 180°): buoyancy sits on the
		// centerline and the arm vanishes.
		return 0, 0
	}
	cot := math.Cos(phi) / sin

	xs := m.geom.StationXs()
	areas := make([]float64, len(xs))
	yMoms := make([]float64, len(xs))
	zMoms := make([]float64, len(xs))
	for si := range xs {
		areas[si], yMoms[si], zMoms[si] = m.heeledSection(si, cot)
	}

	volume, err := quad.Integrate(xs, areas)
	if err != nil || volume <= 0 {
		// Nothing submerged at this angle; only the gravity arm remains.
		return -m.kg * sin, 0
	}
	my, err := quad.Integrate(xs, yMoms)
	if err != nil {
		return -m.kg * sin, 0
	}
	mz, err := quad.Integrate(xs, zMoms)
	if err != nil {
		return -m.kg * sin, 0
	}

	yb := my / volume
	zb := mz / volume
	// KN is the horizontal arm of the heeled buoyancy center about the
	// keel centerline, projected onto the earth horizontal.
	kn := yb*math.Cos(phi) + zb*sin
	return kn - m.kg*sin, kn
}

// heeledSection integrates one station's submerged cross-section under the
// heeled waterline plane z = draft + y·tanφ. For heel to starboard the
// immersing side is +y: at height z the section spans
// [max(−Y(z), (z−draft)·cotφ), Y(z)]. Returns the area and its first
// moments about the centerline plane and the keel plane.
func (m *fullImmersion) heeledSection(si int, cot float64) (area, yMom, zMom float64) {
	n := len(m.zGrid)
	widths := make([]float64, n)
	myInteg := make([]float64, n)
	mzInteg := make([]float64, n)
	for i, z := range m.zGrid {
		y := m.geom.HalfBreadthAt(si, z)
		lo := -y
		if lim := (z - m.draft) * cot; lim > lo {
			lo = lim
		}
		if lo >= y {
			continue
		}
		w := y - lo
		widths[i] = w
		myInteg[i] = (y*y - lo*lo) / 2
		mzInteg[i] = z * w
	}
	// Trapezoid, not Simpson: the emerged-wedge boundary introduces slope
	// discontinuities mid-grid that a quadratic fit would overshoot.
	area, _ = quad.Trapezoid(m.zGrid, widths)
	yMom, _ = quad.Trapezoid(m.zGrid, myInteg)
	zMom, _ = quad.Trapezoid(m.zGrid, mzInteg)
	return area, yMom, zMom
}
