// Package recommend derives the discrete alert level and ordered guidance
// strings from a risk value and the observed conditions.
package recommend

import (
	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/riskmodel"
)

// Condition thresholds for the targeted recommendations.
const (
	HighRainfallThreshold = 30.0 // mm over 24h
	HighRiverThreshold    = 3.0  // m
	HighSoilThreshold     = 0.8  // fraction
)

// ForAssessment produces the recommendation list for one assessment. The
// headline block for the alert level comes first, then the condition checks
// in fixed order: rainfall, river level, soil moisture, region class. The
// order is an output contract relied on by downstream consumers.
func ForAssessment(risk float64, obs models.Observation, region models.Region) []string {
	recommendations := headline(risk)

	if models.ValueOr(obs.Rainfall24h, 0) > HighRainfallThreshold {
		recommendations = append(recommendations, "High rainfall detected - monitor river levels")
	}
	if models.ValueOr(obs.RiverLevel, 0) > HighRiverThreshold {
		recommendations = append(recommendations, "River levels elevated - check flood defenses")
	}
	if models.ValueOr(obs.SoilMoisture, 0) > HighSoilThreshold {
		recommendations = append(recommendations, "High soil moisture - increased runoff risk")
	}
	if region.BaseRisk == models.RiskClassHigh || region.BaseRisk == models.RiskClassCritical {
		recommendations = append(recommendations, "Region is in a designated flood-prone zone - stay alert to official advisories")
	}

	return recommendations
}

// headline returns the alert-level block. Thresholds are the same table the
// synthetic generator labels with, so the two can never disagree on a risk
// value.
func headline(risk float64) []string {
	switch {
	case risk > riskmodel.ThresholdEmergency:
		return []string{
			"EMERGENCY: Evacuate low-lying areas immediately",
			"Activate emergency response protocols",
		}
	case risk > riskmodel.ThresholdWarning:
		return []string{
			"WARNING: Prepare for potential flooding",
			"Monitor river levels closely",
		}
	case risk > riskmodel.ThresholdWatch:
		return []string{
			"WATCH: Monitor conditions closely",
			"Prepare emergency supplies",
		}
	default:
		return []string{"INFO: Normal conditions expected"}
	}
}
