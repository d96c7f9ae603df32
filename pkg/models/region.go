package models

// RiskClass is the static qualitative flood-risk class assigned to a region.
type RiskClass string

const (
	RiskClassLow      RiskClass = "low"
	RiskClassMedium   RiskClass = "medium"
	RiskClassHigh     RiskClass = "high"
	RiskClassCritical RiskClass = "critical"
)

// Valid reports whether the risk class is one of the four known classes.
func (c RiskClass) Valid() bool {
	switch c {
	case RiskClassLow, RiskClassMedium, RiskClassHigh, RiskClassCritical:
		return true
	}
	return false
}

// Weight returns the risk contribution of the class in the seven-factor
// risk formula.
func (c RiskClass) Weight() float64 {
	switch c {
	case RiskClassLow:
		return 0.1
	case RiskClassMedium:
		return 0.3
	case RiskClassHigh:
		return 0.6
	case RiskClassCritical:
		return 0.8
	default:
		return 0.3
	}
}

// RiverMultiplier returns the class-specific scaling applied to
// rainfall-driven river level rise.
func (c RiskClass) RiverMultiplier() float64 {
	switch c {
	case RiskClassLow:
		return 0.5
	case RiskClassMedium:
		return 1.0
	case RiskClassHigh:
		return 1.5
	case RiskClassCritical:
		return 2.0
	default:
		return 1.0
	}
}

// Region is a geographic unit with coordinates and a static base risk class.
// Regions are loaded once at startup and never mutated.
type Region struct {
	Code      string    `json:"code" yaml:"code"`
	Name      string    `json:"name" yaml:"name"`
	Group     string    `json:"group" yaml:"group"`
	Latitude  float64   `json:"latitude" yaml:"latitude"`
	Longitude float64   `json:"longitude" yaml:"longitude"`
	BaseRisk  RiskClass `json:"base_risk" yaml:"base_risk"`
}
