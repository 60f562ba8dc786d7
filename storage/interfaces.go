// Package storage persists vessels, hull geometry, and loadcases, and
// exposes the narrow read-only provider contracts the computation engine
// consumes. Two backends implement the same interfaces: embedded SQLite
// (default) and MongoDB (selected by configuration).
package storage

import (
	"context"

	"navarch/core"
)

// GeometryProvider is the engine's read-only view of hull geometry.
type GeometryProvider interface {
	GetGeometry(ctx context.Context, vesselID string) (*core.Geometry, error)
}

// LoadcaseProvider is the engine's read-only view of loadcases.
type LoadcaseProvider interface {
	GetLoadcase(ctx context.Context, loadcaseID string) (*core.Loadcase, error)
}

// VesselStorage defines vessel CRUD.
type VesselStorage interface {
	GetVessels(ctx context.Context, limit, offset int) ([]core.Vessel, error)
	GetVesselCount(ctx context.Context) (int64, error)
	GetVessel(ctx context.Context, id string) (*core.Vessel, error)
	CreateVessel(ctx context.Context, v *core.Vessel) error
	UpdateVessel(ctx context.Context, id string, v *core.Vessel) error
	DeleteVessel(ctx context.Context, id string) error
}

// GeometryStorage defines geometry persistence. ReplaceGeometry swaps the
// complete station/waterline/offset grid atomically and bumps the vessel's
// geometry revision; partial grids are rejected before anything is written.
type GeometryStorage interface {
	GeometryProvider
	ReplaceGeometry(ctx context.Context, vesselID string, stations []core.Station, waterlines []core.Waterline, offsets []core.Offset) error
	DeleteGeometry(ctx context.Context, vesselID string) error
}

// LoadcaseStorage defines loadcase CRUD.
type LoadcaseStorage interface {
	LoadcaseProvider
	GetLoadcases(ctx context.Context, vesselID string) ([]core.Loadcase, error)
	CreateLoadcase(ctx context.Context, lc *core.Loadcase) error
	UpdateLoadcase(ctx context.Context, id string, lc *core.Loadcase) error
	DeleteLoadcase(ctx context.Context, id string) error
}

// Store aggregates the three storage facets one backend provides.
type Store interface {
	VesselStorage
	GeometryStorage
	LoadcaseStorage
	Close() error
}
