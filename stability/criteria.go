package stability

import (
	"math"

	"navarch/core"
	"navarch/quad"
)

// StandardIMO identifies the regulatory standard the checker implements.
const StandardIMO = "IMO A.749(18) Ch3.1"

// IMO intact-stability thresholds.
const (
	minArea30    = 0.055 // m·rad, area under GZ to 30°
	minArea40    = 0.090 // m·rad, area under GZ to 40°
	minArea3040  = 0.030 // m·rad, area under GZ between 30° and 40°
	minGZAt30    = 0.20  // m
	minAngleMax  = 25.0  // degrees, angle of maximum GZ
	minInitialGM = 0.15  // m
)

// CheckCriteria evaluates a computed GZ curve against the fixed
// six-criterion IMO intact-stability standard. It is a pure function of the
// curve: areas are integrated over the curve's own sampled points and no
// geometry is recomputed. The aggregate passes only when all six criteria
// pass.
func CheckCriteria(curve *core.StabilityCurve) (*core.StabilityCriteriaResult, error) {
	if curve == nil || len(curve.Points) < 2 {
		return nil, core.NewInvalidArgument("curve", "need a curve with at least 2 points")
	}
	// The area criteria are measured from upright; a curve sampled from a
	// nonzero minimum angle would silently under-report them.
	if curve.Points[0].HeelDeg != 0 {
		return nil, core.NewInvalidArgument("curve", "criteria areas are measured from 0°; curve must start at 0° heel")
	}

	area30, note30 := areaToAngle(curve, 30)
	area40, note40 := areaToAngle(curve, 40)
	area3040 := area40 - area30
	gz30 := gzAtAngle(curve, 30)

	result := &core.StabilityCriteriaResult{
		Standard: StandardIMO,
		Criteria: []core.StabilityCriterion{
			{
				Name:     "Area under GZ curve to 30°",
				Required: minArea30,
				Actual:   core.Round(area30),
				Unit:     "m·rad",
				Passed:   area30 >= minArea30,
				Notes:    note30,
			},
			{
				Name:     "Area under GZ curve to 40°",
				Required: minArea40,
				Actual:   core.Round(area40),
				Unit:     "m·rad",
				Passed:   area40 >= minArea40,
				Notes:    note40,
			},
			{
				Name:     "Area under GZ curve 30° to 40°",
				Required: minArea3040,
				Actual:   core.Round(area3040),
				Unit:     "m·rad",
				Passed:   area3040 >= minArea3040,
			},
			{
				Name:     "GZ at 30° or greater",
				Required: minGZAt30,
				Actual:   core.Round(gz30),
				Unit:     "m",
				Passed:   gz30 >= minGZAt30,
			},
			{
				Name:     "Angle of maximum GZ",
				Required: minAngleMax,
				Actual:   core.Round(curve.AngleAtMaxGZ),
				Unit:     "deg",
				Passed:   curve.AngleAtMaxGZ >= minAngleMax,
			},
			{
				Name:     "Initial GMt",
				Required: minInitialGM,
				Actual:   core.Round(curve.InitialGMt),
				Unit:     "m",
				Passed:   curve.InitialGMt >= minInitialGM,
			},
		},
	}

	result.AllPassed = true
	for _, cr := range result.Criteria {
		if !cr.Passed {
			result.AllPassed = false
			break
		}
	}
	return result, nil
}

// areaToAngle integrates GZ over heel (in radians) from the curve start up
// to the given angle, interpolating the cut point. When the curve ends
// before the angle, the available range is integrated and noted.
func areaToAngle(curve *core.StabilityCurve, angleDeg float64) (float64, string) {
	pts := curve.Points
	rad := math.Pi / 180

	xs := make([]float64, 0, len(pts)+1)
	ys := make([]float64, 0, len(pts)+1)
	for _, p := range pts {
		if p.HeelDeg > angleDeg {
			break
		}
		xs = append(xs, p.HeelDeg*rad)
		ys = append(ys, p.GZ)
	}
	last := pts[len(pts)-1].HeelDeg
	switch {
	case last < angleDeg:
		return trapezoidOrZero(xs, ys), "curve ends before target angle"
	case len(xs) == 0 || xs[len(xs)-1] < angleDeg*rad:
		xs = append(xs, angleDeg*rad)
		ys = append(ys, gzAtAngle(curve, angleDeg))
	}
	return trapezoidOrZero(xs, ys), ""
}

func trapezoidOrZero(xs, ys []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	area, err := quad.Trapezoid(xs, ys)
	if err != nil {
		return 0
	}
	return area
}

// gzAtAngle linearly interpolates GZ at a heel angle, clamped to the
// sampled range.
func gzAtAngle(curve *core.StabilityCurve, angleDeg float64) float64 {
	pts := curve.Points
	if angleDeg <= pts[0].HeelDeg {
		return pts[0].GZ
	}
	for i := 1; i < len(pts); i++ {
		if angleDeg <= pts[i].HeelDeg {
			a, b := pts[i-1], pts[i]
			t := (angleDeg - a.HeelDeg) / (b.HeelDeg - a.HeelDeg)
			return a.GZ + t*(b.GZ-a.GZ)
		}
	}
	return pts[len(pts)-1].GZ
}
