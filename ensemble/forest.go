// Package ensemble provides tree ensembles: bootstrap-aggregated random
// forests and gradient boosting machines.
package ensemble

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/core/model"
	"github.com/evalgo-ml/evalgo/core/parallel"
	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
	"github.com/evalgo-ml/evalgo/tree"
)

// RandomForestClassifier averages the class distributions of trees grown
// on bootstrap resamples of the training data.
type RandomForestClassifier struct {
	model.BaseEstimator

	nTrees   int
	maxDepth int
	seed     int64

	trees     []*tree.DecisionTreeClassifier
	Classes_  []float64
	NFeatures int
}

// ForestOption configures a RandomForestClassifier.
type ForestOption func(*RandomForestClassifier)

// WithTrees sets the ensemble size.
func WithTrees(n int) ForestOption {
	return func(rf *RandomForestClassifier) {
		rf.nTrees = n
	}
}

// WithForestMaxDepth limits each tree's depth; non-positive means
// unlimited.
func WithForestMaxDepth(depth int) ForestOption {
	return func(rf *RandomForestClassifier) {
		rf.maxDepth = depth
	}
}

// WithForestSeed fixes the bootstrap sampling seed.
func WithForestSeed(seed int64) ForestOption {
	return func(rf *RandomForestClassifier) {
		rf.seed = seed
	}
}

// NewRandomForestClassifier returns a forest of 100 unlimited-depth trees
// with seed 0.
func NewRandomForestClassifier(opts ...ForestOption) *RandomForestClassifier {
	rf := &RandomForestClassifier{nTrees: 100, maxDepth: 0, seed: 0}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// Fit grows the trees, each on its own bootstrap resample. Trees train in
// parallel; each draws from a rand.Source derived from the seed and the
// tree index, so results are independent of scheduling.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewEmptyDatasetError("RandomForestClassifier.Fit")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewValueError("RandomForestClassifier.Fit", "y must be a column vector")
	}
	if yRows != nSamples {
		return errors.NewLengthMismatchError("RandomForestClassifier.Fit", nSamples, yRows)
	}
	if rf.nTrees <= 0 {
		return errors.NewValueError("RandomForestClassifier.Fit", "trees must be positive")
	}
	rf.NFeatures = nFeatures

	seen := make(map[float64]struct{})
	for i := 0; i < nSamples; i++ {
		seen[y.At(i, 0)] = struct{}{}
	}
	rf.Classes_ = make([]float64, 0, len(seen))
	for c := range seen {
		rf.Classes_ = append(rf.Classes_, c)
	}
	sort.Float64s(rf.Classes_)

	rf.trees = make([]*tree.DecisionTreeClassifier, rf.nTrees)
	errs := make([]error, rf.nTrees)

	parallel.ParallelizeWorkers(rf.nTrees, 0, func(start, end int) {
		for t := start; t < end; t++ {
			rf.fitTree(t, X, y, errs)
		}
	})

	for _, err := range errs {
		if err != nil {
			return errors.Wrap(err, "RandomForestClassifier.Fit")
		}
	}

	rf.SetFitted()
	log.GetLoggerWithName("ensemble").Debug("fitted random forest",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(rf.Classes_),
	)
	return nil
}

func (rf *RandomForestClassifier) fitTree(t int, X, y mat.Matrix, errs []error) {
	nSamples, nFeatures := X.Dims()
	rng := rand.New(rand.NewSource(rf.seed + int64(t)))

	// Bootstrap resample with replacement, same size as the input.
	bootX := mat.NewDense(nSamples, nFeatures, nil)
	bootY := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		src := rng.Intn(nSamples)
		for j := 0; j < nFeatures; j++ {
			bootX.Set(i, j, X.At(src, j))
		}
		bootY.Set(i, 0, y.At(src, 0))
	}

	clf := tree.NewDecisionTreeClassifier(tree.WithMaxDepth(rf.maxDepth))
	if err := clf.Fit(bootX, bootY); err != nil {
		errs[t] = err
		return
	}
	rf.trees[t] = clf
}

// PredictProba averages the per-tree class distributions. A class a
// bootstrap tree never saw contributes zero probability for that tree.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != rf.NFeatures {
		return nil, errors.NewDimensionError("RandomForestClassifier.PredictProba", rf.NFeatures, nFeatures, 1)
	}

	classIndex := make(map[float64]int, len(rf.Classes_))
	for i, c := range rf.Classes_ {
		classIndex[c] = i
	}

	probs := mat.NewDense(nSamples, len(rf.Classes_), nil)
	for _, clf := range rf.trees {
		treeProbs, err := clf.PredictProba(X)
		if err != nil {
			return nil, err
		}
		treeClasses := clf.Classes()
		for i := 0; i < nSamples; i++ {
			for tc, c := range treeClasses {
				global := classIndex[c]
				probs.Set(i, global, probs.At(i, global)+treeProbs.At(i, tc))
			}
		}
	}
	probs.Scale(1/float64(len(rf.trees)), probs)
	return probs, nil
}

// Predict returns an n×1 matrix of the highest-probability labels.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	probs, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, nClasses := probs.Dims()
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		best := 0
		for c := 1; c < nClasses; c++ {
			if probs.At(i, c) > probs.At(i, best) {
				best = c
			}
		}
		out.Set(i, 0, rf.Classes_[best])
	}
	return out, nil
}

// Classes returns the sorted class labels seen during fit.
func (rf *RandomForestClassifier) Classes() []float64 {
	out := make([]float64, len(rf.Classes_))
	copy(out, rf.Classes_)
	return out
}

// Score returns the accuracy on the given data.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := y.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if y.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// NumTrees reports the fitted ensemble size.
func (rf *RandomForestClassifier) NumTrees() int {
	return len(rf.trees)
}

// GetParams reports the configuration in sklearn-style keys.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators": rf.nTrees,
		"max_depth":    rf.maxDepth,
		"random_state": rf.seed,
	}
}

// SetParams updates the configuration from sklearn-style keys.
func (rf *RandomForestClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError("RandomForestClassifier.SetParams", "n_estimators must be an int")
			}
			rf.nTrees = v
		case "max_depth":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError("RandomForestClassifier.SetParams", "max_depth must be an int")
			}
			rf.maxDepth = v
		case "random_state":
			v, ok := value.(int64)
			if !ok {
				return errors.NewValueError("RandomForestClassifier.SetParams", "random_state must be an int64")
			}
			rf.seed = v
		default:
			return errors.NewValueError("RandomForestClassifier.SetParams", "unknown parameter "+key)
		}
	}
	return nil
}
