package tree

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
)

// DecisionTreeClassifier grows a CART tree minimizing Gini impurity.
type DecisionTreeClassifier struct {
	base

	Classes_ []float64
}

// NewDecisionTreeClassifier returns a classifier with unlimited depth,
// min split 2 and min leaf 1.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	clf := &DecisionTreeClassifier{base: base{cfg: defaultConfig()}}
	for _, opt := range opts {
		opt(&clf.base.cfg)
	}
	return clf
}

// Fit grows the tree on the training data.
func (clf *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkTrainingPair("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	clf.NFeatures = nFeatures

	labels := labelsOf(y)
	seen := make(map[float64]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	clf.Classes_ = make([]float64, 0, len(seen))
	for c := range seen {
		clf.Classes_ = append(clf.Classes_, c)
	}
	sort.Float64s(clf.Classes_)

	classIndex := make(map[float64]int, len(clf.Classes_))
	for i, c := range clf.Classes_ {
		classIndex[c] = i
	}

	gini := func(indices []int) float64 {
		counts := make([]int, len(clf.Classes_))
		for _, i := range indices {
			counts[classIndex[labels[i]]]++
		}
		impurity := 1.0
		n := float64(len(indices))
		for _, c := range counts {
			p := float64(c) / n
			impurity -= p * p
		}
		return impurity
	}

	makeLeaf := func(indices []int) *node {
		probs := make([]float64, len(clf.Classes_))
		for _, i := range indices {
			probs[classIndex[labels[i]]]++
		}
		best := 0
		for c := range probs {
			probs[c] /= float64(len(indices))
			if probs[c] > probs[best] {
				best = c
			}
		}
		return &node{leaf: true, value: clf.Classes_[best], probs: probs}
	}

	clf.root = grow(X, labels, allIndices(nSamples), 0, clf.cfg, gini, makeLeaf)
	clf.SetFitted()

	log.GetLoggerWithName("tree").Debug("grew classification tree",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(clf.Classes_),
	)
	return nil
}

// Predict returns an n×1 matrix of leaf-majority labels.
func (clf *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := clf.checkQuery("DecisionTreeClassifier", X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		out.Set(i, 0, clf.root.descend(X, i).value)
	}
	return out, nil
}

// PredictProba returns an n×len(Classes()) matrix of leaf class
// distributions.
func (clf *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := clf.checkQuery("DecisionTreeClassifier", X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(nSamples, len(clf.Classes_), nil)
	for i := 0; i < nSamples; i++ {
		leaf := clf.root.descend(X, i)
		for c, p := range leaf.probs {
			out.Set(i, c, p)
		}
	}
	return out, nil
}

// Classes returns the sorted class labels seen during fit.
func (clf *DecisionTreeClassifier) Classes() []float64 {
	out := make([]float64, len(clf.Classes_))
	copy(out, clf.Classes_)
	return out
}

// Score returns the accuracy on the given data.
func (clf *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := clf.Predict(X)
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

// GetParams reports the configuration in sklearn-style keys.
func (clf *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return clf.getParams()
}

// SetParams updates the configuration from sklearn-style keys.
func (clf *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	return clf.setParams("DecisionTreeClassifier.SetParams", params)
}

// DecisionTreeRegressor grows a CART tree minimizing within-node variance.
type DecisionTreeRegressor struct {
	base
}

// NewDecisionTreeRegressor returns a regressor with unlimited depth,
// min split 2 and min leaf 1.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	reg := &DecisionTreeRegressor{base: base{cfg: defaultConfig()}}
	for _, opt := range opts {
		opt(&reg.base.cfg)
	}
	return reg
}

// Fit grows the tree on the training data.
func (reg *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkTrainingPair("DecisionTreeRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	reg.NFeatures = nFeatures

	labels := labelsOf(y)

	variance := func(indices []int) float64 {
		var mean float64
		for _, i := range indices {
			mean += labels[i]
		}
		mean /= float64(len(indices))
		var v float64
		for _, i := range indices {
			v += (labels[i] - mean) * (labels[i] - mean)
		}
		return v / float64(len(indices))
	}

	makeLeaf := func(indices []int) *node {
		var mean float64
		for _, i := range indices {
			mean += labels[i]
		}
		return &node{leaf: true, value: mean / float64(len(indices))}
	}

	reg.root = grow(X, labels, allIndices(nSamples), 0, reg.cfg, variance, makeLeaf)
	reg.SetFitted()

	log.GetLoggerWithName("tree").Debug("grew regression tree",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
	)
	return nil
}

// Predict returns an n×1 matrix of leaf-mean values.
func (reg *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := reg.checkQuery("DecisionTreeRegressor", X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		out.Set(i, 0, reg.root.descend(X, i).value)
	}
	return out, nil
}

// Score returns the coefficient of determination on the given data.
func (reg *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := reg.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := y.Dims()

	var yMean float64
	for i := 0; i < nSamples; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(nSamples)

	var rss, tss float64
	for i := 0; i < nSamples; i++ {
		yTrue := y.At(i, 0)
		rss += (yTrue - yPred.At(i, 0)) * (yTrue - yPred.At(i, 0))
		tss += (yTrue - yMean) * (yTrue - yMean)
	}
	if tss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("r2", "zero variance in y", 0))
		return 0, nil
	}
	return 1 - rss/tss, nil
}

// GetParams reports the configuration in sklearn-style keys.
func (reg *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return reg.getParams()
}

// SetParams updates the configuration from sklearn-style keys.
func (reg *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	return reg.setParams("DecisionTreeRegressor.SetParams", params)
}
