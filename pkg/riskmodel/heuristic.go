package riskmodel

import (
	"math"

	"github.com/floodsense/floodsense-go/pkg/models"
)

// RiskFactorSet holds the seven normalized factors entering the canonical
// risk formula.
type RiskFactorSet struct {
	Rainfall    float64
	River       float64
	Soil        float64
	Temperature float64
	Humidity    float64
	Pressure    float64
	RegionClass float64
}

// Factors normalizes an observation and region into the seven risk factors,
// substituting the documented defaults for absent readings.
func Factors(obs models.Observation, region models.Region) RiskFactorSet {
	rainfall24h := models.ValueOr(obs.Rainfall24h, DefaultRainfall24h)
	riverLevel := models.ValueOr(obs.RiverLevel, DefaultRiverLevel)
	soil := models.ValueOr(obs.SoilMoisture, DefaultSoilMoisture)
	temperature := models.ValueOr(obs.Temperature, DefaultTemperature)
	humidity := models.ValueOr(obs.Humidity, DefaultHumidity)
	pressure := models.ValueOr(obs.Pressure, DefaultPressure)

	return RiskFactorSet{
		Rainfall:    math.Min(1.0, rainfall24h/RainfallSaturation),
		River:       math.Min(1.0, math.Max(0, riverLevel-RiverBaseLevel)/RiverExcessScale),
		Soil:        Clamp01(soil),
		Temperature: math.Min(1.0, math.Max(0, temperature-TemperatureBase)/TemperatureScale),
		Humidity:    Clamp01(humidity / 100.0),
		Pressure:    math.Min(1.0, math.Abs(pressure-PressureNormal)/PressureScale),
		RegionClass: region.BaseRisk.Weight(),
	}
}

// Combine applies the canonical weights to a factor set.
func (f RiskFactorSet) Combine() float64 {
	risk := WeightRainfall*f.Rainfall +
		WeightRiverLevel*f.River +
		WeightSoil*f.Soil +
		WeightTemperature*f.Temperature +
		WeightHumidity*f.Humidity +
		WeightPressure*f.Pressure +
		WeightRegionClass*f.RegionClass
	return Clamp01(risk)
}

// HeuristicRisk is the closed-form fallback used whenever no trained model
// is available. It is the noise-free form of the label formula the synthetic
// generator uses, applied to live readings.
func HeuristicRisk(obs models.Observation, region models.Region) float64 {
	return Factors(obs, region).Combine()
}
