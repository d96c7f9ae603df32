// Package features converts observations into the fixed numeric vectors the
// regressors consume: categorical label encoding, standardization and the
// canonical fourteen-feature layout.
package features

import (
	"fmt"

	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/riskmodel"
)

// FeatureNames is the canonical feature order. Every vector produced by the
// encoder follows this layout exactly; feature importance reports key off it.
var FeatureNames = []string{
	"temperature",
	"humidity",
	"pressure",
	"wind_speed",
	"wind_direction",
	"precipitation",
	"rainfall_24h",
	"rainfall_7d",
	"soil_moisture",
	"river_level",
	"day_of_year",
	"month",
	"region_code_encoded",
	"group_encoded",
}

// NumFeatures is the width of every encoded vector.
const NumFeatures = 14

// Encoder turns (region, observation) pairs into feature vectors. The
// categorical encoders are fitted once per training run and serialized with
// the model so predict-time vectors match the training layout.
type Encoder struct {
	RegionEncoder *LabelEncoder `json:"region_encoder"`
	GroupEncoder  *LabelEncoder `json:"group_encoder"`
	Fitted        bool          `json:"fitted"`
}

// NewEncoder returns an unfitted encoder.
func NewEncoder() *Encoder {
	return &Encoder{
		RegionEncoder: NewLabelEncoder(),
		GroupEncoder:  NewLabelEncoder(),
	}
}

// Fit learns the categorical codes from the training regions.
func (e *Encoder) Fit(rows []models.TrainingRow) {
	codes := make([]string, len(rows))
	groups := make([]string, len(rows))
	for i, row := range rows {
		codes[i] = row.Region.Code
		groups[i] = row.Region.Group
	}
	e.RegionEncoder.Fit(codes)
	e.GroupEncoder.Fit(groups)
	e.Fitted = true
}

// Encode produces the fourteen-feature vector for one observation. Absent
// readings take the documented defaults; categories unseen during fitting
// encode to 0 rather than failing.
func (e *Encoder) Encode(obs models.Observation, region models.Region) ([]float64, error) {
	if !e.Fitted {
		return nil, models.ErrEncoderNotFitted
	}
	return []float64{
		models.ValueOr(obs.Temperature, riskmodel.DefaultTemperature),
		models.ValueOr(obs.Humidity, riskmodel.DefaultHumidity),
		models.ValueOr(obs.Pressure, riskmodel.DefaultPressure),
		models.ValueOr(obs.WindSpeed, riskmodel.DefaultWindSpeed),
		models.ValueOr(obs.WindDirection, riskmodel.DefaultWindDirection),
		models.ValueOr(obs.Precipitation, riskmodel.DefaultPrecipitation),
		models.ValueOr(obs.Rainfall24h, riskmodel.DefaultRainfall24h),
		models.ValueOr(obs.Rainfall7d, riskmodel.DefaultRainfall7d),
		models.ValueOr(obs.SoilMoisture, riskmodel.DefaultSoilMoisture),
		models.ValueOr(obs.RiverLevel, riskmodel.DefaultRiverLevel),
		float64(obs.DayOfYear),
		float64(obs.Month),
		float64(e.RegionEncoder.Encode(region.Code)),
		float64(e.GroupEncoder.Encode(region.Group)),
	}, nil
}

// FitTransform fits the encoder on rows and returns their feature matrix and
// label vector.
func (e *Encoder) FitTransform(rows []models.TrainingRow) ([][]float64, []float64, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("encoder fit requires at least one training row")
	}
	e.Fit(rows)

	features := make([][]float64, len(rows))
	labels := make([]float64, len(rows))
	for i, row := range rows {
		vec, err := e.Encode(row.Observation, row.Region)
		if err != nil {
			return nil, nil, err
		}
		features[i] = vec
		labels[i] = row.Risk
	}
	return features, labels, nil
}

// ImportanceByName maps a positional importance slice onto feature names.
func ImportanceByName(importance []float64) map[string]float64 {
	out := make(map[string]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		if i < len(importance) {
			out[name] = importance[i]
		}
	}
	return out
}
