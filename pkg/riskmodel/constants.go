// Package riskmodel implements the flood risk estimators: the canonical
// seven-factor risk formula shared by the synthetic data generator, the
// heuristic fallback and the alert thresholds, plus the trainable
// gradient-boosted and random-forest regressors.
package riskmodel

import "github.com/floodsense/floodsense-go/pkg/models"

// Canonical seven-factor risk weights. The synthetic label generator, the
// heuristic fallback and the tests all consume this one table so the three
// can never drift apart. The weights sum to 1.0.
const (
	WeightRainfall    = 0.30
	WeightRiverLevel  = 0.25
	WeightSoil        = 0.15
	WeightTemperature = 0.08
	WeightHumidity    = 0.05
	WeightPressure    = 0.02
	WeightRegionClass = 0.15
)

// Factor normalization scales.
const (
	RainfallSaturation = 50.0 // mm/24h at which the rainfall factor saturates
	RiverBaseLevel     = 2.0  // m, normal river level
	RiverExcessScale   = 3.0  // m above base at which the river factor saturates
	TemperatureBase    = 30.0 // °C above which evaporation stress counts
	TemperatureScale   = 10.0
	PressureNormal     = 1013.0 // hPa
	PressureScale      = 50.0
)

// Alert level thresholds on the risk scalar. Used identically by the
// synthetic generator and the recommendation engine.
const (
	ThresholdEmergency = 0.8
	ThresholdWarning   = 0.6
	ThresholdWatch     = 0.4
)

// Confidence contract for prediction responses.
const (
	ConfidenceBaseline     = 0.8 // trained model path
	ConfidenceFallback     = 0.6 // heuristic path
	ConfidenceMissingPenal = 0.1 // per absent input reading
	ConfidenceFloor        = 0.3
)

// Documented heuristic defaults substituted for absent readings. These are
// the only values the engine ever fabricates; the confidence penalty above
// records that a substitution happened.
const (
	DefaultTemperature   = 25.0
	DefaultHumidity      = 65.0
	DefaultPressure      = PressureNormal
	DefaultWindSpeed     = 3.0
	DefaultWindDirection = 180.0
	DefaultPrecipitation = 0.0
	DefaultRainfall24h   = 0.0
	DefaultRainfall7d    = 0.0
	DefaultSoilMoisture  = 0.5
	DefaultRiverLevel    = RiverBaseLevel
)

// LevelForRisk maps a risk scalar to its discrete alert level.
func LevelForRisk(risk float64) models.AlertLevel {
	switch {
	case risk > ThresholdEmergency:
		return models.LevelEmergency
	case risk > ThresholdWarning:
		return models.LevelWarning
	case risk > ThresholdWatch:
		return models.LevelWatch
	default:
		return models.LevelInfo
	}
}

// Clamp01 clamps v to the unit interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
