package models

import "time"

// AlertLevel is the discrete alert category derived from a risk scalar.
type AlertLevel string

const (
	LevelInfo      AlertLevel = "INFO"
	LevelWatch     AlertLevel = "WATCH"
	LevelWarning   AlertLevel = "WARNING"
	LevelEmergency AlertLevel = "EMERGENCY"
)

// Rank orders alert levels for comparisons: INFO < WATCH < WARNING < EMERGENCY.
func (l AlertLevel) Rank() int {
	switch l {
	case LevelInfo:
		return 0
	case LevelWatch:
		return 1
	case LevelWarning:
		return 2
	case LevelEmergency:
		return 3
	default:
		return -1
	}
}

// RiskSource identifies which predictor produced a risk estimate.
type RiskSource string

const (
	RiskSourceModel     RiskSource = "model"
	RiskSourceHeuristic RiskSource = "heuristic"
)

// RiskFactors echoes the inputs that drove an assessment.
type RiskFactors struct {
	Rainfall24h  float64   `json:"rainfall_24h"`
	RiverLevel   float64   `json:"river_level"`
	SoilMoisture float64   `json:"soil_moisture"`
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	RegionRisk   RiskClass `json:"region_risk"`
}

// HorizonProjection holds the per-horizon risk/confidence curves as parallel
// ordered sequences, one entry per requested horizon.
type HorizonProjection struct {
	Hours      []int     `json:"hours"`
	Risk       []float64 `json:"risk"`
	Confidence []float64 `json:"confidence"`
}

// RiskAssessment is the output of one prediction call. It is built fresh per
// call and never cached.
type RiskAssessment struct {
	ID              string            `json:"id"`
	RegionCode      string            `json:"region_code"`
	RegionName      string            `json:"region_name"`
	Group           string            `json:"group"`
	RegionDefaulted bool              `json:"region_defaulted,omitempty"`
	Risk            float64           `json:"risk"`
	Confidence      float64           `json:"confidence"`
	Level           AlertLevel        `json:"level"`
	Source          RiskSource        `json:"source"`
	Recommendations []string          `json:"recommendations"`
	Factors         RiskFactors       `json:"factors"`
	Horizons        HorizonProjection `json:"horizons"`
	GeneratedAt     time.Time         `json:"generated_at"`
}
