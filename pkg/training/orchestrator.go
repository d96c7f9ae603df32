// Package training coordinates encoder, scaler and regressor fitting over a
// labeled dataset and produces both the evaluation metrics and the
// persistable artifact set.
package training

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/floodsense/floodsense-go/pkg/artifacts"
	"github.com/floodsense/floodsense-go/pkg/features"
	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/riskmodel"
	"github.com/floodsense/floodsense-go/utils"
)

// Orchestrator runs the full fit pipeline: encode, split, scale, fit,
// evaluate, cross-validate. It never touches the serving model; the caller
// publishes the returned artifact set after a successful run.
type Orchestrator struct {
	logger *utils.FieldLogger
}

// NewOrchestrator builds an orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{logger: utils.GetLogger().WithComponent("training")}
}

// Fit trains a model over rows with the given configuration. Cancellation is
// checked between major stages; any failure is wrapped in a TrainingError
// naming the stage that failed, and no partial state escapes.
func (o *Orchestrator) Fit(ctx context.Context, rows []models.TrainingRow, cfg models.TrainingConfig) (*artifacts.Set, *models.TrainingResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, &models.TrainingError{Stage: "configure", Err: err}
	}
	minimum := cfg.CVFolds * 2
	if len(rows) < minimum {
		return nil, nil, &models.TrainingError{
			Stage: "configure",
			Err:   fmt.Errorf("need at least %d training rows, have %d", minimum, len(rows)),
		}
	}

	start := time.Now()
	o.logger.Info("starting model fit",
		utils.String("model_type", string(cfg.ModelType)),
		utils.Int("samples", len(rows)),
		utils.Int("estimators", cfg.Estimators))

	// Encode.
	encoder := features.NewEncoder()
	matrix, labels, err := encoder.FitTransform(rows)
	if err != nil {
		return nil, nil, &models.TrainingError{Stage: "encode", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, &models.TrainingError{Stage: "encode", Err: err}
	}

	// Split. One seeded shuffle drives both the holdout split and the
	// fold boundaries of cross validation, so a fixed seed reproduces
	// identical metrics.
	trainX, trainY, testX, testY := split(matrix, labels, cfg.TestSize, cfg.RandomSeed)
	if err := ctx.Err(); err != nil {
		return nil, nil, &models.TrainingError{Stage: "split", Err: err}
	}

	// Scale. The scaler is fit on the training split only so holdout
	// metrics stay honest.
	scaler := &features.StandardScaler{}
	trainScaled, err := scaler.FitTransform(trainX)
	if err != nil {
		return nil, nil, &models.TrainingError{Stage: "scale", Err: err}
	}
	testScaled, err := scaler.Transform(testX)
	if err != nil {
		return nil, nil, &models.TrainingError{Stage: "scale", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, &models.TrainingError{Stage: "scale", Err: err}
	}

	// Fit.
	model, err := riskmodel.NewRegressor(cfg)
	if err != nil {
		return nil, nil, &models.TrainingError{Stage: "fit", Err: err}
	}
	if err := model.Fit(trainScaled, trainY); err != nil {
		return nil, nil, &models.TrainingError{Stage: "fit", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, &models.TrainingError{Stage: "fit", Err: err}
	}

	// Evaluate on the holdout split.
	predictions := make([]float64, len(testScaled))
	for i, row := range testScaled {
		predictions[i] = model.Predict(row)
	}
	mse := riskmodel.MSE(testY, predictions)
	mae := riskmodel.MAE(testY, predictions)
	r2 := riskmodel.R2(testY, predictions)
	if err := ctx.Err(); err != nil {
		return nil, nil, &models.TrainingError{Stage: "evaluate", Err: err}
	}

	// Cross-validate on the training split.
	cvMean, cvStd, err := riskmodel.CrossValidateR2(cfg, trainScaled, trainY)
	if err != nil {
		return nil, nil, &models.TrainingError{Stage: "evaluate", Err: err}
	}

	result := &models.TrainingResult{
		ModelType:         cfg.ModelType,
		MSE:               mse,
		R2:                r2,
		MAE:               mae,
		CVR2Mean:          cvMean,
		CVR2Std:           cvStd,
		SampleCount:       len(rows),
		FeatureImportance: features.ImportanceByName(model.FeatureImportance()),
		TrainedAt:         time.Now().UTC(),
	}

	set := &artifacts.Set{
		Model:   model,
		Scaler:  scaler,
		Encoder: encoder,
		Metadata: artifacts.Metadata{
			ModelType:    cfg.ModelType,
			FeatureNames: append([]string(nil), features.FeatureNames...),
			SampleCount:  len(rows),
			TrainedAt:    result.TrainedAt,
			Metrics:      *result,
		},
	}

	o.logger.Info("model fit complete",
		utils.String("model_type", string(cfg.ModelType)),
		utils.Float("mse", mse),
		utils.Float("r2", r2),
		utils.Float("cv_r2_mean", cvMean),
		utils.Duration("elapsed", time.Since(start)))

	return set, result, nil
}

// split shuffles row indices with the configured seed and carves off the
// trailing fraction as the holdout set.
func split(matrix [][]float64, labels []float64, testSize float64, seed int64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	n := len(matrix)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testCount := int(float64(n) * testSize)
	if testCount < 1 {
		testCount = 1
	}
	cut := n - testCount

	for _, i := range idx[:cut] {
		trainX = append(trainX, matrix[i])
		trainY = append(trainY, labels[i])
	}
	for _, i := range idx[cut:] {
		testX = append(testX, matrix[i])
		testY = append(testY, labels[i])
	}
	return trainX, trainY, testX, testY
}
