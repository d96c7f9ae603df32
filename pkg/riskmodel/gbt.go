package riskmodel

import (
	"errors"

	"github.com/floodsense/floodsense-go/pkg/models"
)

// GradientBoosted is a gradient-boosted ensemble of regression trees fit on
// squared-error residuals. Exported fields serialize the trained state.
type GradientBoosted struct {
	InitValue    float64     `json:"init_value"`
	LearningRate float64     `json:"learning_rate"`
	Trees        []*TreeNode `json:"trees"`
	Importances  []float64   `json:"importances"`

	estimators      int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

// NewGradientBoosted builds an unfitted gradient-boosted regressor.
func NewGradientBoosted(cfg models.TrainingConfig) *GradientBoosted {
	return &GradientBoosted{
		LearningRate:    cfg.LearningRate,
		estimators:      cfg.Estimators,
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		minSamplesLeaf:  cfg.MinSamplesLeaf,
	}
}

// Fit trains the ensemble. Each tree is fit on the residuals left by the
// running prediction of the trees before it.
func (g *GradientBoosted) Fit(features [][]float64, labels []float64) error {
	if len(features) == 0 || len(features) != len(labels) {
		return errors.New("gradient boosting: features and labels must be non-empty and equal length")
	}

	numFeatures := len(features[0])
	idx := make([]int, len(features))
	for i := range idx {
		idx[i] = i
	}

	g.InitValue = meanAt(labels, idx)

	predictions := make([]float64, len(labels))
	for i := range predictions {
		predictions[i] = g.InitValue
	}

	residuals := make([]float64, len(labels))
	builder := newTreeBuilder(g.maxDepth, g.minSamplesSplit, g.minSamplesLeaf, numFeatures)
	g.Trees = make([]*TreeNode, 0, g.estimators)

	for t := 0; t < g.estimators; t++ {
		for i := range labels {
			residuals[i] = labels[i] - predictions[i]
		}

		tree := builder.build(features, residuals, idx, 0)
		g.Trees = append(g.Trees, tree)

		for i, row := range features {
			predictions[i] += g.LearningRate * tree.Predict(row)
		}
	}

	g.Importances = normalizeImportance(builder.importance)
	return nil
}

// Predict sums the shrunken tree outputs over the initial value.
func (g *GradientBoosted) Predict(features []float64) float64 {
	prediction := g.InitValue
	for _, tree := range g.Trees {
		prediction += g.LearningRate * tree.Predict(features)
	}
	return prediction
}

// FeatureImportance returns normalized impurity-decrease importances.
func (g *GradientBoosted) FeatureImportance() []float64 {
	return g.Importances
}

func (g *GradientBoosted) Type() models.ModelType {
	return models.ModelTypeGradientBoosting
}
