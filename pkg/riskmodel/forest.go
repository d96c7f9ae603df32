package riskmodel

import (
	"errors"
	"math/rand"

	"github.com/floodsense/floodsense-go/pkg/models"
)

// RandomForest is a bagged ensemble of regression trees averaged at predict
// time. Exported fields serialize the trained state.
type RandomForest struct {
	Trees       []*TreeNode `json:"trees"`
	Importances []float64   `json:"importances"`

	estimators      int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	seed            int64
}

// NewRandomForest builds an unfitted random-forest regressor.
func NewRandomForest(cfg models.TrainingConfig) *RandomForest {
	return &RandomForest{
		estimators:      cfg.Estimators,
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		minSamplesLeaf:  cfg.MinSamplesLeaf,
		seed:            cfg.RandomSeed,
	}
}

// Fit trains the forest. Each tree sees a bootstrap resample drawn from a
// seeded source, so identical seed and data reproduce the identical forest.
func (f *RandomForest) Fit(features [][]float64, labels []float64) error {
	if len(features) == 0 || len(features) != len(labels) {
		return errors.New("random forest: features and labels must be non-empty and equal length")
	}

	numFeatures := len(features[0])
	rng := rand.New(rand.NewSource(f.seed))
	builder := newTreeBuilder(f.maxDepth, f.minSamplesSplit, f.minSamplesLeaf, numFeatures)
	f.Trees = make([]*TreeNode, 0, f.estimators)

	sample := make([]int, len(features))
	for t := 0; t < f.estimators; t++ {
		for i := range sample {
			sample[i] = rng.Intn(len(features))
		}
		f.Trees = append(f.Trees, builder.build(features, labels, sample, 0))
	}

	f.Importances = normalizeImportance(builder.importance)
	return nil
}

// Predict averages the tree outputs.
func (f *RandomForest) Predict(features []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, tree := range f.Trees {
		sum += tree.Predict(features)
	}
	return sum / float64(len(f.Trees))
}

// FeatureImportance returns normalized impurity-decrease importances.
func (f *RandomForest) FeatureImportance() []float64 {
	return f.Importances
}

func (f *RandomForest) Type() models.ModelType {
	return models.ModelTypeRandomForest
}
