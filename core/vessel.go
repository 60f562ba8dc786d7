package core

import "time"

// SeawaterDensity is the default fluid density in t/m³, used when a
// loadcase does not specify rho.
const SeawaterDensity = 1.025

// Vessel is the persistent owner of a hull geometry and its loadcases.
type Vessel struct {
	ID          string    `json:"id" bson:"_id" example:"7d5ed40e-4a84-4cfa-a0e3-49b6db834a6d"`
	Name        string    `json:"name" bson:"name" example:"MV Example"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	// GeometryRev increments on every geometry write and keys cached
	// computation results, so stale cache entries die on geometry change.
	GeometryRev int64     `json:"geometry_rev" bson:"geometry_rev"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Loadcase is an immutable input to stability computation: fluid density
// and the centers of gravity. KG is optional; GM-dependent computations
// fail without it.
type Loadcase struct {
	ID        string    `json:"id" bson:"_id"`
	VesselID  string    `json:"vessel_id" bson:"vessel_id"`
	Name      string    `json:"name" bson:"name" example:"Full load departure"`
	Rho       float64   `json:"rho" bson:"rho" example:"1.025"` // Fluid density, t/m³, > 0
	KG        *float64  `json:"kg,omitempty" bson:"kg,omitempty"`   // Vertical center of gravity above keel, m
	LCG       *float64  `json:"lcg,omitempty" bson:"lcg,omitempty"` // Longitudinal center of gravity, m
	TCG       *float64  `json:"tcg,omitempty" bson:"tcg,omitempty"` // Transverse center of gravity, m
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Density returns rho, falling back to standard seawater when unset.
func (lc *Loadcase) Density() float64 {
	if lc == nil || lc.Rho <= 0 {
		return SeawaterDensity
	}
	return lc.Rho
}

// HasKG reports whether the loadcase carries a vertical center of gravity.
func (lc *Loadcase) HasKG() bool {
	return lc != nil && lc.KG != nil
}
