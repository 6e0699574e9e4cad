// Package tree provides CART decision trees for classification and
// regression. Splits are axis-aligned thresholds chosen greedily by Gini
// impurity or variance reduction.
package tree

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/core/model"
	"github.com/evalgo-ml/evalgo/pkg/errors"
)

type node struct {
	// Internal nodes.
	feature   int
	threshold float64
	left      *node
	right     *node

	// Leaves.
	leaf  bool
	value float64   // predicted label or mean
	probs []float64 // class distribution, classifiers only
}

// treeConfig carries the shared growth limits.
type treeConfig struct {
	maxDepth        int // <= 0 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
}

// Option configures a decision tree.
type Option func(*treeConfig)

// WithMaxDepth limits the tree depth; non-positive means unlimited.
func WithMaxDepth(depth int) Option {
	return func(c *treeConfig) {
		c.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum node size eligible for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(c *treeConfig) {
		c.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples per leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(c *treeConfig) {
		c.minSamplesLeaf = n
	}
}

func defaultConfig() treeConfig {
	return treeConfig{maxDepth: 0, minSamplesSplit: 2, minSamplesLeaf: 1}
}

// split is a candidate partition of a node's sample set.
type split struct {
	feature   int
	threshold float64
	left      []int
	right     []int
	score     float64
	found     bool
}

// bestSplit scans every feature and midpoint threshold, scoring partitions
// with impurity. Lower is better.
func bestSplit(X mat.Matrix, y []float64, indices []int, cfg treeConfig,
	impurity func(indices []int) float64) split {

	_, nFeatures := X.Dims()
	best := split{}

	sorted := make([]int, len(indices))
	for f := 0; f < nFeatures; f++ {
		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool {
			return X.At(sorted[a], f) < X.At(sorted[b], f)
		})

		for cut := cfg.minSamplesLeaf; cut <= len(sorted)-cfg.minSamplesLeaf; cut++ {
			if cut == 0 || cut == len(sorted) {
				continue
			}
			lo := X.At(sorted[cut-1], f)
			hi := X.At(sorted[cut], f)
			if lo == hi {
				continue
			}

			left := sorted[:cut]
			right := sorted[cut:]
			n := float64(len(sorted))
			score := float64(len(left))/n*impurity(left) + float64(len(right))/n*impurity(right)

			if !best.found || score < best.score {
				best = split{
					feature:   f,
					threshold: (lo + hi) / 2,
					left:      append([]int(nil), left...),
					right:     append([]int(nil), right...),
					score:     score,
					found:     true,
				}
			}
		}
	}
	return best
}

func grow(X mat.Matrix, y []float64, indices []int, depth int, cfg treeConfig,
	impurity func(indices []int) float64, makeLeaf func(indices []int) *node) *node {

	if len(indices) < cfg.minSamplesSplit ||
		(cfg.maxDepth > 0 && depth >= cfg.maxDepth) ||
		impurity(indices) == 0 {
		return makeLeaf(indices)
	}

	best := bestSplit(X, y, indices, cfg, impurity)
	if !best.found {
		return makeLeaf(indices)
	}

	return &node{
		feature:   best.feature,
		threshold: best.threshold,
		left:      grow(X, y, best.left, depth+1, cfg, impurity, makeLeaf),
		right:     grow(X, y, best.right, depth+1, cfg, impurity, makeLeaf),
	}
}

func (n *node) descend(X mat.Matrix, i int) *node {
	cur := n
	for !cur.leaf {
		if X.At(i, cur.feature) <= cur.threshold {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	return cur
}

func (n *node) depth() int {
	if n == nil || n.leaf {
		return 0
	}
	left := n.left.depth()
	right := n.right.depth()
	if left > right {
		return left + 1
	}
	return right + 1
}

func (n *node) leaves() int {
	if n == nil {
		return 0
	}
	if n.leaf {
		return 1
	}
	return n.left.leaves() + n.right.leaves()
}

func checkTrainingPair(op string, X, y mat.Matrix) (nSamples, nFeatures int, err error) {
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, errors.NewEmptyDatasetError(op)
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return 0, 0, errors.NewValueError(op, "y must be a column vector")
	}
	if yRows != nSamples {
		return 0, 0, errors.NewLengthMismatchError(op, nSamples, yRows)
	}
	return nSamples, nFeatures, nil
}

func labelsOf(y mat.Matrix) []float64 {
	rows, _ := y.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = y.At(i, 0)
	}
	return out
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// base holds what classifier and regressor trees share after fitting.
type base struct {
	model.BaseEstimator

	cfg  treeConfig
	root *node

	NFeatures int
}

// Depth reports the fitted tree depth, 0 for a single leaf.
func (b *base) Depth() int {
	return b.root.depth()
}

// NumLeaves reports the number of leaves in the fitted tree.
func (b *base) NumLeaves() int {
	return b.root.leaves()
}

func (b *base) checkQuery(name string, X mat.Matrix) (int, error) {
	if !b.IsFitted() {
		return 0, errors.NewNotFittedError(name, "Predict")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != b.NFeatures {
		return 0, errors.NewDimensionError(name+".Predict", b.NFeatures, nFeatures, 1)
	}
	return nSamples, nil
}

func (b *base) getParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         b.cfg.maxDepth,
		"min_samples_split": b.cfg.minSamplesSplit,
		"min_samples_leaf":  b.cfg.minSamplesLeaf,
	}
}

func (b *base) setParams(op string, params map[string]interface{}) error {
	for key, value := range params {
		v, ok := value.(int)
		if !ok {
			return errors.NewValueError(op, key+" must be an int")
		}
		switch key {
		case "max_depth":
			b.cfg.maxDepth = v
		case "min_samples_split":
			b.cfg.minSamplesSplit = v
		case "min_samples_leaf":
			b.cfg.minSamplesLeaf = v
		default:
			return errors.NewValueError(op, "unknown parameter "+key)
		}
	}
	return nil
}
