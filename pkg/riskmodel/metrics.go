package riskmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/floodsense/floodsense-go/pkg/models"
)

// MSE is the mean squared error between labels and predictions.
func MSE(labels, predictions []float64) float64 {
	sum := 0.0
	for i := range labels {
		d := labels[i] - predictions[i]
		sum += d * d
	}
	return sum / float64(len(labels))
}

// MAE is the mean absolute error between labels and predictions.
func MAE(labels, predictions []float64) float64 {
	sum := 0.0
	for i := range labels {
		sum += math.Abs(labels[i] - predictions[i])
	}
	return sum / float64(len(labels))
}

// R2 is the coefficient of determination. A constant label vector yields 0.
func R2(labels, predictions []float64) float64 {
	mean := stat.Mean(labels, nil)
	var ssRes, ssTot float64
	for i := range labels {
		d := labels[i] - predictions[i]
		ssRes += d * d
		t := labels[i] - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// CrossValidateR2 runs k-fold cross validation with a fresh regressor per
// fold and returns the mean and standard deviation of the fold R² scores.
// Fold boundaries are contiguous slices of the input order, so the caller
// shuffles once up front and the whole procedure stays deterministic.
func CrossValidateR2(cfg models.TrainingConfig, features [][]float64, labels []float64) (mean, std float64, err error) {
	n := len(features)
	folds := cfg.CVFolds
	if n < folds {
		return 0, 0, fmt.Errorf("cross validation needs at least %d samples, have %d", folds, n)
	}

	scores := make([]float64, 0, folds)
	foldSize := n / folds

	for fold := 0; fold < folds; fold++ {
		lo := fold * foldSize
		hi := lo + foldSize
		if fold == folds-1 {
			hi = n
		}

		trainX := make([][]float64, 0, n-(hi-lo))
		trainY := make([]float64, 0, n-(hi-lo))
		trainX = append(trainX, features[:lo]...)
		trainX = append(trainX, features[hi:]...)
		trainY = append(trainY, labels[:lo]...)
		trainY = append(trainY, labels[hi:]...)

		foldCfg := cfg
		foldCfg.RandomSeed = cfg.RandomSeed + int64(fold)
		reg, err := NewRegressor(foldCfg)
		if err != nil {
			return 0, 0, err
		}
		if err := reg.Fit(trainX, trainY); err != nil {
			return 0, 0, fmt.Errorf("fold %d: %w", fold, err)
		}

		predictions := make([]float64, hi-lo)
		for i, row := range features[lo:hi] {
			predictions[i] = reg.Predict(row)
		}
		scores = append(scores, R2(labels[lo:hi], predictions))
	}

	mean = stat.Mean(scores, nil)
	std = stat.StdDev(scores, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std, nil
}
