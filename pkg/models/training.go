package models

import "time"

// ModelType selects the regressor family.
type ModelType string

const (
	ModelTypeGradientBoosting ModelType = "gradient_boosting"
	ModelTypeRandomForest     ModelType = "random_forest"
)

// ModelState is the lifecycle state of the trained model artifact.
type ModelState string

const (
	ModelStateUntrained ModelState = "untrained"
	ModelStateTraining  ModelState = "training"
	ModelStateTrained   ModelState = "trained"
	ModelStateStale     ModelState = "stale"
)

// TrainingDataSource selects where training rows come from.
type TrainingDataSource string

const (
	DataSourceSynthetic TrainingDataSource = "synthetic"
	DataSourceReal      TrainingDataSource = "real"
)

// TrainingConfig holds hyperparameters for model fitting.
type TrainingConfig struct {
	ModelType       ModelType `json:"model_type"`
	Estimators      int       `json:"n_estimators"`
	LearningRate    float64   `json:"learning_rate"`
	MaxDepth        int       `json:"max_depth"`
	TestSize        float64   `json:"test_size"`
	RandomSeed      int64     `json:"random_seed"`
	CVFolds         int       `json:"cross_validation_folds"`
	MinSamplesSplit int       `json:"min_samples_split"`
	MinSamplesLeaf  int       `json:"min_samples_leaf"`
}

// DefaultTrainingConfig mirrors the tuned defaults of the production model.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		ModelType:       ModelTypeGradientBoosting,
		Estimators:      100,
		LearningRate:    0.1,
		MaxDepth:        6,
		TestSize:        0.2,
		RandomSeed:      42,
		CVFolds:         5,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

// Validate checks the training configuration.
func (c *TrainingConfig) Validate() error {
	switch c.ModelType {
	case ModelTypeGradientBoosting, ModelTypeRandomForest:
	default:
		return &ConfigurationError{Field: "model_type", Reason: "must be gradient_boosting or random_forest"}
	}
	if c.Estimators <= 0 {
		return &ConfigurationError{Field: "n_estimators", Reason: "must be positive"}
	}
	if c.ModelType == ModelTypeGradientBoosting && (c.LearningRate <= 0 || c.LearningRate > 1) {
		return &ConfigurationError{Field: "learning_rate", Reason: "must be in (0, 1]"}
	}
	if c.MaxDepth <= 0 {
		return &ConfigurationError{Field: "max_depth", Reason: "must be positive"}
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return &ConfigurationError{Field: "test_size", Reason: "must be in (0, 1)"}
	}
	if c.CVFolds < 2 {
		return &ConfigurationError{Field: "cross_validation_folds", Reason: "must be at least 2"}
	}
	if c.MinSamplesSplit < 2 {
		return &ConfigurationError{Field: "min_samples_split", Reason: "must be at least 2"}
	}
	if c.MinSamplesLeaf < 1 {
		return &ConfigurationError{Field: "min_samples_leaf", Reason: "must be at least 1"}
	}
	return nil
}

// TrainingResult holds the evaluation metrics of one completed fit.
type TrainingResult struct {
	ModelType         ModelType          `json:"model_type"`
	MSE               float64            `json:"mse"`
	R2                float64            `json:"r2"`
	MAE               float64            `json:"mae"`
	CVR2Mean          float64            `json:"cv_r2_mean"`
	CVR2Std           float64            `json:"cv_r2_std"`
	SampleCount       int                `json:"n_samples"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	TrainedAt         time.Time          `json:"trained_at"`
}

// PredictionRequest asks for a risk assessment for one region.
type PredictionRequest struct {
	RegionCode  string       `json:"region_code"`
	Horizons    []int        `json:"horizon_hours"`
	Observation *Observation `json:"observation,omitempty"`
}

// Validate checks the prediction request.
func (r *PredictionRequest) Validate() error {
	if len(r.Horizons) == 0 {
		return &ConfigurationError{Field: "horizon_hours", Reason: "at least one horizon is required"}
	}
	for _, h := range r.Horizons {
		if h <= 0 {
			return &ConfigurationError{Field: "horizon_hours", Reason: "horizons must be positive hour counts"}
		}
	}
	return nil
}

// TrainingRequest asks for a model fit from real or synthetic data.
type TrainingRequest struct {
	Source       TrainingDataSource `json:"source"`
	Regions      []string           `json:"regions,omitempty"`
	LookbackDays int                `json:"lookback_days,omitempty"`
	Samples      int                `json:"samples,omitempty"`
	Config       *TrainingConfig    `json:"config,omitempty"`
}

// Validate checks the training request and fills defaults.
func (r *TrainingRequest) Validate() error {
	switch r.Source {
	case "":
		r.Source = DataSourceSynthetic
	case DataSourceSynthetic, DataSourceReal:
	default:
		return &ConfigurationError{Field: "source", Reason: "must be real or synthetic"}
	}
	if r.LookbackDays < 0 {
		return &ConfigurationError{Field: "lookback_days", Reason: "must not be negative"}
	}
	if r.Samples < 0 {
		return &ConfigurationError{Field: "samples", Reason: "must not be negative"}
	}
	if r.Config != nil {
		return r.Config.Validate()
	}
	return nil
}
