// Package core defines the domain model for Navarch, a hydrostatics and
// stability computation service for ship hull forms.
//
// # Architecture Overview
//
// The core package provides:
//   - Hull geometry types (Station, Waterline, Offset, Geometry)
//   - Vessel and Loadcase entities
//   - Computation result types (HydroResult, CurveData, StabilityCurve)
//   - The error taxonomy shared by the computation engine and its callers
//   - The fixed-point rounding applied at every API and storage boundary
//
// # Design Principles
//
// Computation results are transient and immutable: every HydroResult,
// CurveData, and StabilityCurve is derived fresh from geometry plus loadcase
// on each call and carries no identity beyond the computation that produced
// it. Geometry is owned by the storage layer and read-only everywhere else.
//
// The numeric engines (quad, hydro, curves, stability) depend on this
// package for types; this package depends on none of them.
package core
