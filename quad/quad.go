// Package quad provides the quadrature primitives every higher-level
// hydrostatic calculation composes: trapezoidal and Simpson integration over
// parallel abscissa/ordinate slices, a composite rule tolerant of even point
// counts, and first/second moment integrals.
//
// All functions are pure, allocate no shared state, and accept non-uniform
// spacing; station and waterline grids need not be uniform.
package quad

import (
	"navarch/core"
)

// validate checks the shared preconditions: equal lengths, at least two
// points, strictly increasing abscissas.
func validate(x, y []float64) error {
	if len(x) != len(y) {
		return &core.NumericDomainError{Rule: "quadrature", Reason: "x and y lengths differ"}
	}
	if len(x) < 2 {
		return &core.NumericDomainError{Rule: "quadrature", Reason: "need at least 2 points"}
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return &core.NumericDomainError{Rule: "quadrature", Reason: "abscissas not strictly increasing"}
		}
	}
	return nil
}

// Trapezoid integrates y over x by summing trapezoid areas between
// consecutive points. Valid for any spacing; exact for piecewise-linear
// data.
func Trapezoid(x, y []float64) (float64, error) {
	if err := validate(x, y); err != nil {
		return 0, err
	}
	var sum float64
	for i := 1; i < len(x); i++ {
		sum += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2
	}
	return sum, nil
}

// Simpson integrates y over x with the classic 1/3 rule generalized to
// non-uniform spacing. It requires an odd point count (an even number of
// intervals) and fails with a NumericDomainError otherwise; callers needing
// tolerance use CompositeSimpson. Exact for quadratics.
func Simpson(x, y []float64) (float64, error) {
	if err := validate(x, y); err != nil {
		return 0, err
	}
	if len(x)%2 == 0 {
		return 0, &core.NumericDomainError{Rule: "simpson", Reason: "requires an odd number of points"}
	}
	var sum float64
	for i := 0; i+2 < len(x); i += 2 {
		sum += simpsonPair(x[i], x[i+1], x[i+2], y[i], y[i+1], y[i+2])
	}
	return sum, nil
}

// simpsonPair integrates the quadratic through three points over
// [x0, x2]. For non-uniform spacing this is the standard unequal-interval
// Simpson segment; it reduces to (h/3)(y0 + 4y1 + y2) when h0 == h1.
func simpsonPair(x0, x1, x2, y0, y1, y2 float64) float64 {
	h0 := x1 - x0
	h1 := x2 - x1
	hSum := h0 + h1
	return hSum / 6 * (y0*(2-h1/h0) + y1*hSum*hSum/(h0*h1) + y2*(2-h0/h1))
}

// CompositeSimpson applies Simpson's rule to as many interior interval
// pairs as possible and closes an even point count with a trapezoid over
// the trailing interval, so it never rejects otherwise valid input.
func CompositeSimpson(x, y []float64) (float64, error) {
	if err := validate(x, y); err != nil {
		return 0, err
	}
	n := len(x)
	if n == 2 {
		return (x[1] - x[0]) * (y[0] + y[1]) / 2, nil
	}
	if n%2 == 1 {
		return Simpson(x, y)
	}
	head, err := Simpson(x[:n-1], y[:n-1])
	if err != nil {
		return 0, err
	}
	tail := (x[n-1] - x[n-2]) * (y[n-1] + y[n-2]) / 2
	return head + tail, nil
}

// Integrate auto-selects the rule: Simpson for odd point counts, composite
// Simpson otherwise.
func Integrate(x, y []float64) (float64, error) {
	if err := validate(x, y); err != nil {
		return 0, err
	}
	if len(x)%2 == 1 {
		return Simpson(x, y)
	}
	return CompositeSimpson(x, y)
}

// FirstMoment integrates x·y over x, the kernel of centroid calculations.
func FirstMoment(x, y []float64) (float64, error) {
	if err := validate(x, y); err != nil {
		return 0, err
	}
	xy := make([]float64, len(x))
	for i := range x {
		xy[i] = x[i] * y[i]
	}
	return Integrate(x, xy)
}

// SecondMoment integrates x²·y over x, the kernel of metacentric radius
// calculations.
func SecondMoment(x, y []float64) (float64, error) {
	if err := validate(x, y); err != nil {
		return 0, err
	}
	xxy := make([]float64, len(x))
	for i := range x {
		xxy[i] = x[i] * x[i] * y[i]
	}
	return Integrate(x, xxy)
}
