// Package testhull builds synthetic in-memory hull geometries with known
// closed-form hydrostatics, used by the engine test suites. Three families
// are provided: a rectangular barge, a triangular (V-section) prism, and the
// Wigley parabolic hull.
package testhull

import (
	"fmt"

	"navarch/core"
)

// Barge returns a rectangular barge: constant beam at every station and
// waterline. Closed forms at draft T: volume = L·B·T, KB = T/2,
// BMt = B²/(12T), Awp = L·B, Cb = Cm = Cp = Cwp = 1.
func Barge(length, beam, depth float64, nStations, nWaterlines int) *core.Geometry {
	return build(length, depth, nStations, nWaterlines, func(x, z float64) float64 {
		return beam / 2
	})
}

// Prism returns a triangular-section prism (V bottom): half-breadth grows
// linearly from zero at the keel to beam/2 at the depth. Sectional area at
// draft T is L-independent: (beam/(2·depth))·T², exactly zero at the keel.
func Prism(length, beam, depth float64, nStations, nWaterlines int) *core.Geometry {
	return build(length, depth, nStations, nWaterlines, func(x, z float64) float64 {
		return beam / 2 * (z / depth)
	})
}

// Wigley returns the Wigley parabolic hull with keel at z=0 and design
// waterline at z=depth: y(x,z) = B/2·(1-(2x/L)²)·(1-((D-z)/D)²) with x
// measured from midships. Closed forms at draft D: volume = (4/9)·L·B·D,
// Cb = 4/9, Awp = (2/3)·L·B, Cwp = 2/3, Cm = Cp = 2/3.
func Wigley(length, beam, depth float64, nStations, nWaterlines int) *core.Geometry {
	return build(length, depth, nStations, nWaterlines, func(x, z float64) float64 {
		xi := 2*(x-length/2)/length // -1..1 from midships
		zeta := (depth - z) / depth // 1 at keel, 0 at waterline
		return beam / 2 * (1 - xi*xi) * (1 - zeta*zeta)
	})
}

// Loadcase returns a seawater loadcase with the given KG.
func Loadcase(kg float64) *core.Loadcase {
	return &core.Loadcase{
		ID:       "lc-test",
		VesselID: "v-test",
		Name:     "test loadcase",
		Rho:      core.SeawaterDensity,
		KG:       &kg,
	}
}

// build samples a half-breadth function onto a uniform station/waterline
// grid and assembles the geometry; it panics on validation failure because
// the generators above always produce complete grids.
func build(length, depth float64, nStations, nWaterlines int, halfBreadth func(x, z float64) float64) *core.Geometry {
	stations := make([]core.Station, nStations)
	for i := range stations {
		stations[i] = core.Station{
			Index: i,
			X:     length * float64(i) / float64(nStations-1),
		}
	}
	waterlines := make([]core.Waterline, nWaterlines)
	for j := range waterlines {
		waterlines[j] = core.Waterline{
			Index: j,
			Z:     depth * float64(j) / float64(nWaterlines-1),
		}
	}
	offsets := make([]core.Offset, 0, nStations*nWaterlines)
	for i, s := range stations {
		for j, w := range waterlines {
			y := halfBreadth(s.X, w.Z)
			if y < 0 {
				y = 0
			}
			offsets = append(offsets, core.Offset{
				StationIndex:   i,
				WaterlineIndex: j,
				HalfBreadth:    y,
			})
		}
	}
	geom, err := core.NewGeometry(stations, waterlines, offsets)
	if err != nil {
		panic(fmt.Sprintf("testhull: invalid synthetic geometry: %v", err))
	}
	return geom
}
