package core

import (
	"fmt"
	"sort"
)

// Station represents a transverse hull slice at a longitudinal position.
type Station struct {
	Index int     `json:"index" bson:"index" example:"0"`
	X     float64 `json:"x" bson:"x" example:"0.0"` // Longitudinal position from the aft perpendicular, meters
}

// Waterline represents a horizontal hull slice at a vertical position.
type Waterline struct {
	Index int     `json:"index" bson:"index" example:"0"`
	Z     float64 `json:"z" bson:"z" example:"0.0"` // Height above keel, meters, >= 0
}

// Offset is a half-breadth sample at a station/waterline intersection.
type Offset struct {
	StationIndex   int     `json:"station_index" bson:"station_index"`
	WaterlineIndex int     `json:"waterline_index" bson:"waterline_index"`
	HalfBreadth    float64 `json:"half_breadth" bson:"half_breadth"` // Meters, >= 0
}

// Geometry is the complete offset table for one vessel: stations ascending
// in x, waterlines ascending in z, and exactly one offset per grid cell.
// Construct it with NewGeometry so the grid invariants hold; a Geometry is
// read-only once built.
type Geometry struct {
	Stations   []Station
	Waterlines []Waterline

	// grid[si][wi] is the half-breadth at station index position si and
	// waterline index position wi, both in slice order (not raw index).
	grid [][]float64
}

// NewGeometry validates and assembles a geometry from its parts. It fails
// with a GeometryError (wrapping ErrIncompleteGeometry) when stations,
// waterlines, or offsets are empty, out of order, negative where forbidden,
// or do not form a complete rectangular grid.
func NewGeometry(stations []Station, waterlines []Waterline, offsets []Offset) (*Geometry, error) {
	if len(stations) < 2 {
		return nil, &GeometryError{Detail: fmt.Sprintf("need at least 2 stations, have %d", len(stations))}
	}
	if len(waterlines) < 2 {
		return nil, &GeometryError{Detail: fmt.Sprintf("need at least 2 waterlines, have %d", len(waterlines))}
	}
	if len(offsets) == 0 {
		return nil, &GeometryError{Detail: "no offsets"}
	}

	st := make([]Station, len(stations))
	copy(st, stations)
	sort.Slice(st, func(i, j int) bool { return st[i].Index < st[j].Index })
	for i := 1; i < len(st); i++ {
		if st[i].Index == st[i-1].Index {
			return nil, &GeometryError{Detail: fmt.Sprintf("duplicate station index %d", st[i].Index)}
		}
		if st[i].X <= st[i-1].X {
			return nil, &GeometryError{Detail: fmt.Sprintf("station x positions not ascending at index %d", st[i].Index)}
		}
	}

	wl := make([]Waterline, len(waterlines))
	copy(wl, waterlines)
	sort.Slice(wl, func(i, j int) bool { return wl[i].Index < wl[j].Index })
	for i, w := range wl {
		if w.Z < 0 {
			return nil, &GeometryError{Detail: fmt.Sprintf("waterline %d below keel (z=%g)", w.Index, w.Z)}
		}
		if i > 0 {
			if w.Index == wl[i-1].Index {
				return nil, &GeometryError{Detail: fmt.Sprintf("duplicate waterline index %d", w.Index)}
			}
			if w.Z <= wl[i-1].Z {
				return nil, &GeometryError{Detail: fmt.Sprintf("waterline z positions not ascending at index %d", w.Index)}
			}
		}
	}

	stPos := make(map[int]int, len(st))
	for i, s := range st {
		stPos[s.Index] = i
	}
	wlPos := make(map[int]int, len(wl))
	for i, w := range wl {
		wlPos[w.Index] = i
	}

	grid := make([][]float64, len(st))
	seen := make([][]bool, len(st))
	for i := range grid {
		grid[i] = make([]float64, len(wl))
		seen[i] = make([]bool, len(wl))
	}

	for _, o := range offsets {
		si, ok := stPos[o.StationIndex]
		if !ok {
			return nil, &GeometryError{Detail: fmt.Sprintf("offset references unknown station %d", o.StationIndex)}
		}
		wi, ok := wlPos[o.WaterlineIndex]
		if !ok {
			return nil, &GeometryError{Detail: fmt.Sprintf("offset references unknown waterline %d", o.WaterlineIndex)}
		}
		if o.HalfBreadth < 0 {
			return nil, &GeometryError{Detail: fmt.Sprintf("negative half-breadth at station %d waterline %d", o.StationIndex, o.WaterlineIndex)}
		}
		if seen[si][wi] {
			return nil, &GeometryError{Detail: fmt.Sprintf("duplicate offset at station %d waterline %d", o.StationIndex, o.WaterlineIndex)}
		}
		seen[si][wi] = true
		grid[si][wi] = o.HalfBreadth
	}

	for si := range seen {
		for wi := range seen[si] {
			if !seen[si][wi] {
				return nil, &GeometryError{Detail: fmt.Sprintf("missing offset at station %d waterline %d", st[si].Index, wl[wi].Index)}
			}
		}
	}

	return &Geometry{Stations: st, Waterlines: wl, grid: grid}, nil
}

// HalfBreadth returns the half-breadth at station slice position si and
// waterline slice position wi.
func (g *Geometry) HalfBreadth(si, wi int) float64 {
	return g.grid[si][wi]
}

// StationHalfBreadths returns the half-breadth column for one station,
// ordered by ascending waterline. The returned slice is a copy.
func (g *Geometry) StationHalfBreadths(si int) []float64 {
	out := make([]float64, len(g.grid[si]))
	copy(out, g.grid[si])
	return out
}

// StationXs returns the longitudinal positions of all stations, ascending.
func (g *Geometry) StationXs() []float64 {
	xs := make([]float64, len(g.Stations))
	for i, s := range g.Stations {
		xs[i] = s.X
	}
	return xs
}

// WaterlineZs returns the vertical positions of all waterlines, ascending.
func (g *Geometry) WaterlineZs() []float64 {
	zs := make([]float64, len(g.Waterlines))
	for i, w := range g.Waterlines {
		zs[i] = w.Z
	}
	return zs
}

// HalfBreadthAt linearly interpolates the half-breadth of station si at
// height z, clamped to the waterline range.
func (g *Geometry) HalfBreadthAt(si int, z float64) float64 {
	zs := g.WaterlineZs()
	ys := g.grid[si]
	if z <= zs[0] {
		return ys[0]
	}
	last := len(zs) - 1
	if z >= zs[last] {
		return ys[last]
	}
	// zs is strictly ascending; find the bracketing interval.
	hi := sort.SearchFloat64s(zs, z)
	lo := hi - 1
	t := (z - zs[lo]) / (zs[hi] - zs[lo])
	return ys[lo] + t*(ys[hi]-ys[lo])
}

// Length is the longitudinal extent covered by the station grid.
func (g *Geometry) Length() float64 {
	return g.Stations[len(g.Stations)-1].X - g.Stations[0].X
}

// MaxDraft is the highest waterline, the upper bound for draft clamping.
func (g *Geometry) MaxDraft() float64 {
	return g.Waterlines[len(g.Waterlines)-1].Z
}
