package domain

// StressLevel is the display band for a line's load percentage.
type StressLevel string

const (
	StressNominal    StressLevel = "nominal"
	StressCaution    StressLevel = "caution"
	StressCritical   StressLevel = "critical"
	StressOverloaded StressLevel = "overloaded"
)

// LineStress is the classification of one line after a flow solve.
// RatedCapacityMVA is the static nameplate rating from the conductor
// ratings table; ActualCapacityMVA is the dynamic weather-adjusted capacity
// from the thermal model. Immutable once produced.
type LineStress struct {
	Line              string  `json:"line"`
	ApparentLoadMVA   float64 `json:"apparent_load_mva"`
	RatedCapacityMVA  float64 `json:"rated_capacity_mva"`
	ActualCapacityMVA float64 `json:"actual_capacity_mva"`
	AtRisk            bool    `json:"at_risk"`
	Overcapacity      bool    `json:"overcapacity"`
	LoadPercent       float64 `json:"load_percent"`
}

// ClassifyLine derives the stress flags for one line:
//
//	at_risk       dynamic capacity exceeds the nameplate rating
//	overcapacity  apparent load exceeds the nameplate rating
//	load_percent  apparent load as a fraction of the nameplate rating
func ClassifyLine(name string, loadMVA, ratedMVA, actualMVA float64) LineStress {
	return LineStress{
		Line:              name,
		ApparentLoadMVA:   loadMVA,
		RatedCapacityMVA:  ratedMVA,
		ActualCapacityMVA: actualMVA,
		AtRisk:            actualMVA > ratedMVA,
		Overcapacity:      loadMVA > ratedMVA,
		LoadPercent:       loadMVA / ratedMVA,
	}
}

// Level maps the load percentage to its display band. Lower bounds are
// inclusive: below 0.60 nominal, 0.60 to 0.90 caution, 0.90 to 1.00
// critical, 1.00 and up overloaded.
func (s LineStress) Level() StressLevel {
	switch {
	case s.LoadPercent < 0.60:
		return StressNominal
	case s.LoadPercent < 0.90:
		return StressCaution
	case s.LoadPercent < 1.00:
		return StressCritical
	default:
		return StressOverloaded
	}
}
