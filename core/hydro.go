package core

// HydroResult holds the hydrostatic properties of a hull at one draft and
// trim. Every field is a pure function of (geometry, draft, trim, loadcase);
// there is no hidden state. GMt/GMl are populated only when the loadcase
// supplies KG.
type HydroResult struct {
	Draft float64 `json:"draft"` // Meters above keel at midships
	Trim  float64 `json:"trim"`  // Trim angle, degrees, +ve bow down

	Volume       float64 `json:"volume"`       // Displaced volume, m³
	Displacement float64 `json:"displacement"` // Volume × rho, tonnes

	KB  float64 `json:"kb"`  // Vertical center of buoyancy, m above keel
	LCB float64 `json:"lcb"` // Longitudinal center of buoyancy, m from aft perpendicular
	TCB float64 `json:"tcb"` // Transverse center of buoyancy, m off centerline

	BMt float64 `json:"bmt"` // Transverse metacentric radius, m
	BMl float64 `json:"bml"` // Longitudinal metacentric radius, m

	GMt *float64 `json:"gmt,omitempty"` // Transverse metacentric height, m (requires KG)
	GMl *float64 `json:"gml,omitempty"` // Longitudinal metacentric height, m (requires KG)

	Awp float64 `json:"awp"` // Waterplane area, m²
	Iwp float64 `json:"iwp"` // Transverse waterplane second moment, m⁴
	Iwl float64 `json:"iwl"` // Longitudinal waterplane second moment about LCF, m⁴
	LCF float64 `json:"lcf"` // Longitudinal center of flotation, m

	Lwl float64 `json:"lwl"` // Waterline length, m
	Bwl float64 `json:"bwl"` // Waterline beam, m

	Cb  float64 `json:"cb"`  // Block coefficient
	Cp  float64 `json:"cp"`  // Prismatic coefficient
	Cm  float64 `json:"cm"`  // Midship section coefficient
	Cwp float64 `json:"cwp"` // Waterplane coefficient
}

// CurveType enumerates the hydrostatic property curves the generator can
// produce. The enumeration is closed: extraction is an exhaustive switch,
// and unknown types are rejected at the boundary, not at extraction time.
type CurveType string

const (
	CurveDisplacement CurveType = "displacement"
	CurveVolume       CurveType = "volume"
	CurveKB           CurveType = "kb"
	CurveLCB          CurveType = "lcb"
	CurveLCF          CurveType = "lcf"
	CurveAwp          CurveType = "awp"
	CurveBMt          CurveType = "bmt"
	CurveGMt          CurveType = "gmt"
	CurveCb           CurveType = "cb"
	CurveCp           CurveType = "cp"
	CurveCwp          CurveType = "cwp"
	CurveBonjean      CurveType = "bonjean"
)

// CurveTypes lists every valid curve type, for boundary validation.
func CurveTypes() []CurveType {
	return []CurveType{
		CurveDisplacement, CurveVolume, CurveKB, CurveLCB, CurveLCF,
		CurveAwp, CurveBMt, CurveGMt, CurveCb, CurveCp, CurveCwp,
		CurveBonjean,
	}
}

// Valid reports whether t is a member of the closed curve enumeration.
func (t CurveType) Valid() bool {
	for _, v := range CurveTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// RequiresLoadcase reports whether a curve type needs KG to be defined.
func (t CurveType) RequiresLoadcase() bool {
	return t == CurveGMt
}

// CurvePoint is one sample of a property curve.
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CurveData is a named, ordered property curve over a draft grid.
type CurveData struct {
	Type   CurveType    `json:"type"`
	Points []CurvePoint `json:"points"`
}

// BonjeanCurve is the sectional area vs draft curve of one station. For a
// non-reentrant hull it starts at zero area at the keel and is monotone
// non-decreasing with draft; the curves generator constructs it so.
type BonjeanCurve struct {
	StationIndex int          `json:"station_index"`
	X            float64      `json:"x"` // Station longitudinal position, m
	Points       []CurvePoint `json:"points"`
}
