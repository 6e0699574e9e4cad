// Package neighbors provides k-nearest-neighbor estimators over Euclidean
// distance.
package neighbors

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/core/model"
	"github.com/evalgo-ml/evalgo/core/parallel"
	"github.com/evalgo-ml/evalgo/pkg/errors"
)

// knnBase stores the training data and answers neighbor queries. Fitting
// is lazy in the usual k-NN sense, the work happens at prediction time.
type knnBase struct {
	model.BaseEstimator

	k int

	X *mat.Dense
	y []float64
}

// Option configures a k-NN estimator.
type Option func(*knnBase)

// WithNeighbors sets the number of neighbors consulted per query.
func WithNeighbors(k int) Option {
	return func(b *knnBase) {
		b.k = k
	}
}

func (b *knnBase) fit(op string, X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewEmptyDatasetError(op)
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewValueError(op, "y must be a column vector")
	}
	if yRows != nSamples {
		return errors.NewLengthMismatchError(op, nSamples, yRows)
	}
	if b.k <= 0 {
		return errors.NewValueError(op, "neighbors must be positive")
	}
	if b.k > nSamples {
		return errors.NewValueError(op, "neighbors exceeds the training size")
	}

	b.X = mat.DenseCopyOf(X)
	b.y = make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		b.y[i] = y.At(i, 0)
	}
	b.SetFitted()
	return nil
}

type neighbor struct {
	index    int
	distance float64
}

// neighborsOf returns the k training points closest to row i of X, ties
// broken by training index so queries are deterministic.
func (b *knnBase) neighborsOf(X mat.Matrix, i int) []neighbor {
	nTrain, nFeatures := b.X.Dims()
	candidates := make([]neighbor, nTrain)
	for t := 0; t < nTrain; t++ {
		var sum float64
		for j := 0; j < nFeatures; j++ {
			d := X.At(i, j) - b.X.At(t, j)
			sum += d * d
		}
		candidates[t] = neighbor{index: t, distance: math.Sqrt(sum)}
	}
	sort.Slice(candidates, func(a, c int) bool {
		if candidates[a].distance != candidates[c].distance {
			return candidates[a].distance < candidates[c].distance
		}
		return candidates[a].index < candidates[c].index
	})
	return candidates[:b.k]
}

func (b *knnBase) checkQuery(op string, X mat.Matrix) (int, error) {
	if !b.IsFitted() {
		return 0, errors.NewNotFittedError(op, "Predict")
	}
	nSamples, nFeatures := X.Dims()
	_, trained := b.X.Dims()
	if nFeatures != trained {
		return 0, errors.NewDimensionError(op+".Predict", trained, nFeatures, 1)
	}
	return nSamples, nil
}

// KNNClassifier predicts the majority class among the k nearest training
// points. Vote ties go to the smaller class label.
type KNNClassifier struct {
	knnBase

	Classes_ []float64
}

// NewKNNClassifier returns a classifier with the default of 5 neighbors.
func NewKNNClassifier(opts ...Option) *KNNClassifier {
	clf := &KNNClassifier{knnBase: knnBase{k: 5}}
	for _, opt := range opts {
		opt(&clf.knnBase)
	}
	return clf
}

// Fit stores the training data.
func (clf *KNNClassifier) Fit(X, y mat.Matrix) error {
	if err := clf.fit("KNNClassifier", X, y); err != nil {
		return err
	}
	seen := make(map[float64]struct{})
	for _, label := range clf.y {
		seen[label] = struct{}{}
	}
	clf.Classes_ = make([]float64, 0, len(seen))
	for c := range seen {
		clf.Classes_ = append(clf.Classes_, c)
	}
	sort.Float64s(clf.Classes_)
	return nil
}

// Predict returns an n×1 matrix of majority-vote labels.
func (clf *KNNClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	probs, err := clf.PredictProba(X)
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
		out.Set(i, 0, clf.Classes_[best])
	}
	return out, nil
}

// PredictProba returns an n×len(Classes()) matrix of neighbor vote shares.
func (clf *KNNClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := clf.checkQuery("KNNClassifier", X)
	if err != nil {
		return nil, err
	}

	classIndex := make(map[float64]int, len(clf.Classes_))
	for i, c := range clf.Classes_ {
		classIndex[c] = i
	}

	probs := mat.NewDense(nSamples, len(clf.Classes_), nil)
	const threshold = 100
	parallel.ParallelizeWithThreshold(nSamples, threshold, func(start, end int) {
		for i := start; i < end; i++ {
			for _, nb := range clf.neighborsOf(X, i) {
				c := classIndex[clf.y[nb.index]]
				probs.Set(i, c, probs.At(i, c)+1)
			}
			for c := range clf.Classes_ {
				probs.Set(i, c, probs.At(i, c)/float64(clf.k))
			}
		}
	})
	return probs, nil
}

// Classes returns the sorted class labels seen during fit.
func (clf *KNNClassifier) Classes() []float64 {
	out := make([]float64, len(clf.Classes_))
	copy(out, clf.Classes_)
	return out
}

// Score returns the accuracy on the given data.
func (clf *KNNClassifier) Score(X, y mat.Matrix) (float64, error) {
	return accuracyScore(clf, X, y)
}

// GetParams reports the configuration in sklearn-style keys.
func (clf *KNNClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{"n_neighbors": clf.k}
}

// SetParams updates the configuration from sklearn-style keys.
func (clf *KNNClassifier) SetParams(params map[string]interface{}) error {
	return setNeighborParams("KNNClassifier.SetParams", &clf.knnBase, params)
}

// KNNRegressor predicts the mean label of the k nearest training points.
type KNNRegressor struct {
	knnBase
}

// NewKNNRegressor returns a regressor with the default of 5 neighbors.
func NewKNNRegressor(opts ...Option) *KNNRegressor {
	reg := &KNNRegressor{knnBase: knnBase{k: 5}}
	for _, opt := range opts {
		opt(&reg.knnBase)
	}
	return reg
}

// Fit stores the training data.
func (reg *KNNRegressor) Fit(X, y mat.Matrix) error {
	return reg.fit("KNNRegressor", X, y)
}

// Predict returns an n×1 matrix of neighbor-mean values.
func (reg *KNNRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := reg.checkQuery("KNNRegressor", X)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(nSamples, 1, nil)
	const threshold = 100
	parallel.ParallelizeWithThreshold(nSamples, threshold, func(start, end int) {
		for i := start; i < end; i++ {
			var sum float64
			for _, nb := range reg.neighborsOf(X, i) {
				sum += reg.y[nb.index]
			}
			out.Set(i, 0, sum/float64(reg.k))
		}
	})
	return out, nil
}

// Score returns the coefficient of determination on the given data.
func (reg *KNNRegressor) Score(X, y mat.Matrix) (float64, error) {
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
func (reg *KNNRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{"n_neighbors": reg.k}
}

// SetParams updates the configuration from sklearn-style keys.
func (reg *KNNRegressor) SetParams(params map[string]interface{}) error {
	return setNeighborParams("KNNRegressor.SetParams", &reg.knnBase, params)
}

func setNeighborParams(op string, b *knnBase, params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_neighbors":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError(op, "n_neighbors must be an int")
			}
			b.k = v
		default:
			return errors.NewValueError(op, "unknown parameter "+key)
		}
	}
	return nil
}

type predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

func accuracyScore(p predictor, X, y mat.Matrix) (float64, error) {
	yPred, err := p.Predict(X)
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
