package riskmodel

import (
	"errors"

	"github.com/floodsense/floodsense-go/pkg/models"
)

// Regressor is a trainable risk regressor. Both ensemble families satisfy
// it, so the training orchestrator and the artifact store never care which
// one is behind it.
type Regressor interface {
	Fit(features [][]float64, labels []float64) error
	Predict(features []float64) float64
	FeatureImportance() []float64
	Type() models.ModelType
}

// NewRegressor builds an unfitted regressor for the configured model type.
func NewRegressor(cfg models.TrainingConfig) (Regressor, error) {
	switch cfg.ModelType {
	case models.ModelTypeGradientBoosting:
		return NewGradientBoosted(cfg), nil
	case models.ModelTypeRandomForest:
		return NewRandomForest(cfg), nil
	default:
		return nil, errors.New("unknown model type: " + string(cfg.ModelType))
	}
}
