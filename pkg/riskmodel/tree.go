package riskmodel

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TreeNode is one node of a regression tree. The structure is exported so
// trained trees serialize to JSON for the artifact store.
type TreeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Value     float64   `json:"value"`
	Leaf      bool      `json:"leaf,omitempty"`
}

// Predict walks the tree for one feature vector.
func (n *TreeNode) Predict(features []float64) float64 {
	node := n
	for !node.Leaf {
		if features[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// splitQuantiles are the candidate thresholds tried per feature, extending
// the median-split search to the quartiles.
var splitQuantiles = []float64{0.25, 0.5, 0.75}

// treeBuilder grows variance-reduction regression trees and accumulates
// impurity-decrease feature importance across every tree it builds.
type treeBuilder struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	importance      []float64
}

func newTreeBuilder(maxDepth, minSamplesSplit, minSamplesLeaf, numFeatures int) *treeBuilder {
	if minSamplesSplit < 2 {
		minSamplesSplit = 2
	}
	if minSamplesLeaf < 1 {
		minSamplesLeaf = 1
	}
	return &treeBuilder{
		maxDepth:        maxDepth,
		minSamplesSplit: minSamplesSplit,
		minSamplesLeaf:  minSamplesLeaf,
		importance:      make([]float64, numFeatures),
	}
}

// build grows a tree over the rows selected by idx.
func (b *treeBuilder) build(features [][]float64, labels []float64, idx []int, depth int) *TreeNode {
	if depth >= b.maxDepth || len(idx) < b.minSamplesSplit || isConstant(labels, idx) {
		return &TreeNode{Leaf: true, Value: meanAt(labels, idx)}
	}

	feature, threshold, gain := b.findBestSplit(features, labels, idx)
	if gain <= 0 {
		return &TreeNode{Leaf: true, Value: meanAt(labels, idx)}
	}

	left, right := partition(features, idx, feature, threshold)
	if len(left) < b.minSamplesLeaf || len(right) < b.minSamplesLeaf {
		return &TreeNode{Leaf: true, Value: meanAt(labels, idx)}
	}

	b.importance[feature] += gain * float64(len(idx))

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(features, labels, left, depth+1),
		Right:     b.build(features, labels, right, depth+1),
	}
}

// findBestSplit searches every feature at quartile thresholds for the split
// with the largest variance reduction.
func (b *treeBuilder) findBestSplit(features [][]float64, labels []float64, idx []int) (int, float64, float64) {
	numFeatures := len(features[idx[0]])
	parentVar := varianceAt(labels, idx)

	bestFeature, bestThreshold, bestGain := 0, 0.0, 0.0
	values := make([]float64, len(idx))

	for feature := 0; feature < numFeatures; feature++ {
		for i, row := range idx {
			values[i] = features[row][feature]
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		prev := sorted[0] - 1
		for _, q := range splitQuantiles {
			threshold := stat.Quantile(q, stat.Empirical, sorted, nil)
			if threshold == prev || threshold >= sorted[len(sorted)-1] {
				continue
			}
			prev = threshold

			left, right := partition(features, idx, feature, threshold)
			if len(left) < b.minSamplesLeaf || len(right) < b.minSamplesLeaf {
				continue
			}

			leftW := float64(len(left)) / float64(len(idx))
			rightW := float64(len(right)) / float64(len(idx))
			gain := parentVar - (leftW*varianceAt(labels, left) + rightW*varianceAt(labels, right))

			if gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

func partition(features [][]float64, idx []int, feature int, threshold float64) ([]int, []int) {
	var left, right []int
	for _, row := range idx {
		if features[row][feature] <= threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	return left, right
}

func isConstant(labels []float64, idx []int) bool {
	first := labels[idx[0]]
	for _, row := range idx[1:] {
		if labels[row] != first {
			return false
		}
	}
	return true
}

func meanAt(labels []float64, idx []int) float64 {
	sum := 0.0
	for _, row := range idx {
		sum += labels[row]
	}
	return sum / float64(len(idx))
}

func varianceAt(labels []float64, idx []int) float64 {
	if len(idx) < 2 {
		return 0
	}
	mean := meanAt(labels, idx)
	sum := 0.0
	for _, row := range idx {
		d := labels[row] - mean
		sum += d * d
	}
	return sum / float64(len(idx))
}

// normalizeImportance scales importances to sum to 1, falling back to a
// uniform distribution when no split ever gained.
func normalizeImportance(importance []float64) []float64 {
	total := 0.0
	for _, v := range importance {
		total += v
	}
	out := make([]float64, len(importance))
	if total == 0 {
		for i := range out {
			out[i] = 1.0 / float64(len(out))
		}
		return out
	}
	for i, v := range importance {
		out[i] = v / total
	}
	return out
}
