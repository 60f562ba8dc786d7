package core

import (
	"errors"
	"fmt"
)

// Computation error constants
var (
	// ErrVesselNotFound is returned when a vessel is not found
	ErrVesselNotFound = errors.New("vessel not found")

	// ErrLoadcaseNotFound is returned when a loadcase is not found
	ErrLoadcaseNotFound = errors.New("loadcase not found")

	// ErrGeometryNotFound is returned when a vessel has no geometry
	ErrGeometryNotFound = errors.New("geometry not found")

	// ErrIncompleteGeometry is returned when stations, waterlines, or offsets
	// are empty or do not form a complete rectangular grid
	ErrIncompleteGeometry = errors.New("incomplete geometry")

	// ErrLoadcaseRequired is returned for GM-dependent computations invoked
	// without a loadcase carrying KG
	ErrLoadcaseRequired = errors.New("loadcase with KG is required")
)

// ErrorClass partitions failures for transport-layer status mapping.
type ErrorClass int

const (
	// ClassInternal is the default for unclassified failures.
	ClassInternal ErrorClass = iota
	// ClassNotFound covers absent vessels, loadcases, and geometry.
	ClassNotFound
	// ClassIncompleteGeometry covers unusable station/waterline/offset grids.
	ClassIncompleteGeometry
	// ClassInvalidArgument covers bad ranges, increments, and missing loadcases.
	ClassInvalidArgument
	// ClassNumericDomain covers quadrature domain violations.
	ClassNumericDomain
)

// InvalidArgumentError reports a caller-supplied parameter that fails
// validation. It is deterministic: retrying with the same input reproduces
// the same failure.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// NewInvalidArgument builds an InvalidArgumentError for a named field.
func NewInvalidArgument(field, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

// GeometryError wraps ErrIncompleteGeometry with detail about what is
// missing or inconsistent in the grid.
type GeometryError struct {
	VesselID string
	Detail   string
}

func (e *GeometryError) Error() string {
	if e.VesselID == "" {
		return fmt.Sprintf("incomplete geometry: %s", e.Detail)
	}
	return fmt.Sprintf("incomplete geometry for vessel %s: %s", e.VesselID, e.Detail)
}

func (e *GeometryError) Unwrap() error { return ErrIncompleteGeometry }

// Classify maps an error onto the taxonomy used by the API layer. It walks
// wrapped errors, so storage and engine errors classify the same way.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassInternal
	case errors.Is(err, ErrVesselNotFound),
		errors.Is(err, ErrLoadcaseNotFound),
		errors.Is(err, ErrGeometryNotFound):
		return ClassNotFound
	case errors.Is(err, ErrIncompleteGeometry):
		return ClassIncompleteGeometry
	case errors.Is(err, ErrLoadcaseRequired):
		return ClassInvalidArgument
	}
	var ia *InvalidArgumentError
	if errors.As(err, &ia) {
		return ClassInvalidArgument
	}
	var nd *NumericDomainError
	if errors.As(err, &nd) {
		return ClassNumericDomain
	}
	return ClassInternal
}

// NumericDomainError reports a quadrature rule invoked outside its domain,
// e.g. Simpson's rule with an even point count. Callers needing tolerance
// use the composite rule instead; this failure is never silently degraded.
type NumericDomainError struct {
	Rule   string
	Reason string
}

func (e *NumericDomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Reason)
}
