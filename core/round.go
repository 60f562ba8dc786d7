package core

import "github.com/shopspring/decimal"

// BoundaryPlaces is the fixed decimal precision applied to every numeric
// value crossing the API or storage boundary. Internal computation runs in
// float64; rounding here keeps repeated quadrature summation from leaking
// binary representation drift into reported regulatory outputs. Six places
// is far below any physical tolerance of an offset table while well above
// float64 noise for the magnitudes involved.
const BoundaryPlaces = 6

// Round rounds v to the fixed boundary precision using exact base-10
// arithmetic (half away from zero).
func Round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(BoundaryPlaces).Float64()
	return f
}

// RoundPtr rounds through a possibly-nil pointer.
func RoundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v)
	return &r
}

// RoundHydroResult returns a copy of r with every scalar at boundary
// precision.
func RoundHydroResult(r *HydroResult) *HydroResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Draft = Round(r.Draft)
	out.Trim = Round(r.Trim)
	out.Volume = Round(r.Volume)
	out.Displacement = Round(r.Displacement)
	out.KB = Round(r.KB)
	out.LCB = Round(r.LCB)
	out.TCB = Round(r.TCB)
	out.BMt = Round(r.BMt)
	out.BMl = Round(r.BMl)
	out.GMt = RoundPtr(r.GMt)
	out.GMl = RoundPtr(r.GMl)
	out.Awp = Round(r.Awp)
	out.Iwp = Round(r.Iwp)
	out.Iwl = Round(r.Iwl)
	out.LCF = Round(r.LCF)
	out.Lwl = Round(r.Lwl)
	out.Bwl = Round(r.Bwl)
	out.Cb = Round(r.Cb)
	out.Cp = Round(r.Cp)
	out.Cm = Round(r.Cm)
	out.Cwp = Round(r.Cwp)
	return &out
}

// RoundCurve returns a copy of c with every point at boundary precision.
func RoundCurve(c *CurveData) *CurveData {
	if c == nil {
		return nil
	}
	out := CurveData{Type: c.Type, Points: make([]CurvePoint, len(c.Points))}
	for i, p := range c.Points {
		out.Points[i] = CurvePoint{X: Round(p.X), Y: Round(p.Y)}
	}
	return &out
}

// RoundStabilityCurve returns a copy of s with every point at boundary
// precision. ComputationTimeMs is carried through untouched.
func RoundStabilityCurve(s *StabilityCurve) *StabilityCurve {
	if s == nil {
		return nil
	}
	out := *s
	out.Draft = Round(s.Draft)
	out.Displacement = Round(s.Displacement)
	out.KG = Round(s.KG)
	out.InitialGMt = Round(s.InitialGMt)
	out.MaxGZ = Round(s.MaxGZ)
	out.AngleAtMaxGZ = Round(s.AngleAtMaxGZ)
	out.Points = make([]GZPoint, len(s.Points))
	for i, p := range s.Points {
		out.Points[i] = GZPoint{
			HeelDeg:   Round(p.HeelDeg),
			GZ:        Round(p.GZ),
			KN:        Round(p.KN),
			GMAtAngle: RoundPtr(p.GMAtAngle),
		}
	}
	return &out
}
