// Package horizon extends a single current-risk estimate into risk and
// confidence curves over requested forecast lead times.
package horizon

import (
	"math"
	"math/rand"

	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/riskmodel"
)

const (
	// NormalizationHours is the one-week horizon both decay terms share.
	// Risk inflation and confidence decay must use the same constant.
	NormalizationHours = 168.0

	riskInflationRate   = 0.3
	forecastRiskWeight  = 0.3
	confidenceDecayRate = 0.4
	confidenceFloor     = 0.3
	forecastDivisor     = 100.0

	// Forecast rainfall upper bounds (mm) per horizon bucket. Longer lead
	// times admit wider rainfall possibilities.
	shortHorizonRainMax  = 15.0
	mediumHorizonRainMax = 30.0
	longHorizonRainMax   = 50.0

	shortHorizonHours  = 24
	mediumHorizonHours = 48
)

// ForecastSource supplies a forecast rainfall estimate (mm) for one horizon.
// Production uses the seeded random source below; tests inject fixed values.
type ForecastSource interface {
	ForecastRainfall(hours int) float64
}

// RandomForecast draws uniform rainfall estimates bounded by the horizon
// bucket. A fixed seed makes projections reproducible.
type RandomForecast struct {
	rng *rand.Rand
}

// NewRandomForecast builds a seeded forecast source.
func NewRandomForecast(seed int64) *RandomForecast {
	return &RandomForecast{rng: rand.New(rand.NewSource(seed))}
}

// ForecastRainfall returns a uniform draw in [0, bucket max).
func (f *RandomForecast) ForecastRainfall(hours int) float64 {
	return f.rng.Float64() * rainBucketMax(hours)
}

func rainBucketMax(hours int) float64 {
	switch {
	case hours <= shortHorizonHours:
		return shortHorizonRainMax
	case hours <= mediumHorizonHours:
		return mediumHorizonRainMax
	default:
		return longHorizonRainMax
	}
}

// Projector turns (base risk, base confidence, horizons) into parallel
// per-horizon risk and confidence sequences.
type Projector struct {
	forecast ForecastSource
}

// NewProjector builds a projector over a forecast source.
func NewProjector(forecast ForecastSource) *Projector {
	return &Projector{forecast: forecast}
}

// Project computes the projection for each horizon in input order. Forecast
// rainfall accumulates across horizons up to and including the current one,
// so later horizons carry the whole expected accumulation. Outputs are
// rounded to three decimals for presentation stability.
func (p *Projector) Project(baseRisk, baseConfidence float64, horizons []int) models.HorizonProjection {
	out := models.HorizonProjection{
		Hours:      append([]int(nil), horizons...),
		Risk:       make([]float64, len(horizons)),
		Confidence: make([]float64, len(horizons)),
	}

	cumulative := 0.0
	for i, hours := range horizons {
		cumulative += p.forecast.ForecastRainfall(hours)
		factor := math.Min(1.0, cumulative/forecastDivisor)

		timeScale := float64(hours) / NormalizationHours

		risk := riskmodel.Clamp01((baseRisk + forecastRiskWeight*factor) * (1 + timeScale*riskInflationRate))

		confidence := baseConfidence * (1 - timeScale*confidenceDecayRate)
		if confidence < confidenceFloor {
			confidence = confidenceFloor
		}
		if confidence > baseConfidence {
			confidence = baseConfidence
		}

		out.Risk[i] = round3(risk)
		out.Confidence[i] = round3(confidence)
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
