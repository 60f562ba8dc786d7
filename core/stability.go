package core

// StabilityMethod selects the GZ curve algorithm.
type StabilityMethod string

const (
	// MethodWallSided is the analytical wall-sided approximation,
	// GZ(φ) = GMt·sinφ + (BMt/2)·tan²φ·sinφ. Fast; accurate while the
	// waterplane shape does not change qualitatively.
	MethodWallSided StabilityMethod = "wall_sided"

	// MethodFullImmersion re-integrates the heeled submerged geometry at
	// every angle. Slower; valid to large angles including deck-edge
	// immersion, and the reference for benchmark comparisons.
	MethodFullImmersion StabilityMethod = "full_immersion"
)

// Valid reports whether m names a known stability method.
func (m StabilityMethod) Valid() bool {
	return m == MethodWallSided || m == MethodFullImmersion
}

// GZPoint is one sample of a righting-arm curve.
type GZPoint struct {
	HeelDeg   float64  `json:"heel_deg"`
	GZ        float64  `json:"gz"` // Righting arm, m; negative for upsetting moments
	KN        float64  `json:"kn"` // Righting arm about keel, m
	GMAtAngle *float64 `json:"gm_at_angle,omitempty"` // dGZ/dφ in m/rad, sampled slope
}

// StabilityCurve is a computed righting-arm curve. MaxGZ and AngleAtMaxGZ
// are taken from the sampled points; no sub-grid refinement is performed.
type StabilityCurve struct {
	Method       StabilityMethod `json:"method"`
	Draft        float64         `json:"draft"`
	Displacement float64         `json:"displacement"` // Tonnes
	KG           float64         `json:"kg"`
	InitialGMt   float64         `json:"initial_gmt"`

	Points       []GZPoint `json:"points"`
	MaxGZ        float64   `json:"max_gz"`
	AngleAtMaxGZ float64   `json:"angle_at_max_gz"` // Degrees

	// ComputationTimeMs is wall-clock instrumentation, not a correctness
	// property; it is excluded from determinism comparisons.
	ComputationTimeMs int64 `json:"computation_time_ms"`
}

// GZRequest parameterizes a righting-arm computation.
type GZRequest struct {
	LoadcaseID     string          `json:"loadcase_id" validate:"required"`
	MinAngle       float64         `json:"min_angle" validate:"gte=0,lte=180"`
	MaxAngle       float64         `json:"max_angle" validate:"gt=0,lte=180"`
	AngleIncrement float64         `json:"angle_increment" validate:"gt=0"`
	Method         StabilityMethod `json:"method" validate:"required"`
	// Draft is optional; zero means "use the design draft", the highest
	// waterline of the geometry.
	Draft float64 `json:"draft,omitempty" validate:"gte=0"`
}

// StabilityCriterion is one regulatory pass/fail check of a GZ curve.
type StabilityCriterion struct {
	Name     string  `json:"name"`
	Required float64 `json:"required"`
	Actual   float64 `json:"actual"`
	Unit     string  `json:"unit"`
	Passed   bool    `json:"passed"`
	Notes    string  `json:"notes,omitempty"`
}

// StabilityCriteriaResult aggregates the fixed criteria set of one standard.
type StabilityCriteriaResult struct {
	Standard  string               `json:"standard"`
	Criteria  []StabilityCriterion `json:"criteria"`
	AllPassed bool                 `json:"all_passed"`
}
