package linear

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/core/model"
	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
)

// LogisticRegression is a binary classifier trained by full-batch gradient
// descent on the log loss with an optional L2 penalty. Labels may be any
// two distinct values; they are mapped onto {0, 1} in sorted order.
type LogisticRegression struct {
	model.BaseEstimator

	learningRate float64
	maxIter      int
	tol          float64
	l2           float64
	fitIntercept bool

	// Fitted attributes.
	Coef_      []float64
	Intercept_ float64
	Classes_   []float64
	NIter_     int
	NFeatures  int
}

// NewLogisticRegression returns a classifier with the default
// configuration: learning rate 0.1, 1000 iterations, tolerance 1e-6 and no
// regularization.
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	lr := &LogisticRegression{
		learningRate: 0.1,
		maxIter:      1000,
		tol:          1e-6,
		l2:           0,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit trains the classifier. y must be an n×1 matrix with exactly two
// distinct label values. A fit that uses all maxIter iterations without
// the gradient norm dropping below tol emits a ConvergenceWarning.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkTrainingPair("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}

	classes := distinctClasses(y)
	if len(classes) != 2 {
		return errors.NewValueError("LogisticRegression.Fit", "exactly two classes required")
	}
	lr.Classes_ = classes
	lr.NFeatures = nFeatures

	// Binary targets on {0, 1}: classes[1] is the positive class.
	target := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		if y.At(i, 0) == classes[1] {
			target[i] = 1
		}
	}

	weights := make([]float64, nFeatures)
	intercept := 0.0

	grad := make([]float64, nFeatures)
	converged := false
	iter := 0
	for ; iter < lr.maxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := errors.Sigmoid(z) - target[i]

			for j := 0; j < nFeatures; j++ {
				grad[j] += residual * X.At(i, j)
			}
			gradIntercept += residual
		}

		var gradNorm float64
		for j := 0; j < nFeatures; j++ {
			grad[j] = grad[j]/float64(nSamples) + lr.l2*weights[j]
			gradNorm += grad[j] * grad[j]
		}
		gradIntercept /= float64(nSamples)
		if lr.fitIntercept {
			gradNorm += gradIntercept * gradIntercept
		}

		if math.Sqrt(gradNorm) < lr.tol {
			converged = true
			break
		}

		for j := 0; j < nFeatures; j++ {
			weights[j] -= lr.learningRate * grad[j]
		}
		if lr.fitIntercept {
			intercept -= lr.learningRate * gradIntercept
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter,
			"gradient descent reached maxIter before the tolerance"))
	}

	lr.Coef_ = weights
	lr.Intercept_ = intercept
	lr.NIter_ = iter
	lr.SetFitted()

	log.GetLoggerWithName("linear").Debug("fitted logistic regression",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.IterationKey, iter,
	)
	return nil
}

// PredictProba returns an n×2 matrix of class probabilities, columns in
// Classes() order.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.NFeatures, nFeatures, 1)
	}

	probs := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		z := lr.Intercept_
		for j := 0; j < nFeatures; j++ {
			z += X.At(i, j) * lr.Coef_[j]
		}
		p := errors.Sigmoid(z)
		probs.Set(i, 0, 1-p)
		probs.Set(i, 1, p)
	}
	return probs, nil
}

// Predict returns an n×1 matrix of predicted class labels, thresholding
// the positive probability at 0.5.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	probs, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := probs.Dims()
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if probs.At(i, 1) >= 0.5 {
			out.Set(i, 0, lr.Classes_[1])
		} else {
			out.Set(i, 0, lr.Classes_[0])
		}
	}
	return out, nil
}

// Classes returns the sorted class labels seen during fit.
func (lr *LogisticRegression) Classes() []float64 {
	out := make([]float64, len(lr.Classes_))
	copy(out, lr.Classes_)
	return out
}

// Score returns the accuracy on the given data.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := lr.Predict(X)
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
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"learning_rate": lr.learningRate,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
		"l2":            lr.l2,
		"fit_intercept": lr.fitIntercept,
	}
}

// SetParams updates the configuration from sklearn-style keys.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "learning_rate":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValueError("LogisticRegression.SetParams", "learning_rate must be a float64")
			}
			lr.learningRate = v
		case "max_iter":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError("LogisticRegression.SetParams", "max_iter must be an int")
			}
			lr.maxIter = v
		case "tol":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValueError("LogisticRegression.SetParams", "tol must be a float64")
			}
			lr.tol = v
		case "l2":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValueError("LogisticRegression.SetParams", "l2 must be a float64")
			}
			lr.l2 = v
		case "fit_intercept":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValueError("LogisticRegression.SetParams", "fit_intercept must be a bool")
			}
			lr.fitIntercept = v
		default:
			return errors.NewValueError("LogisticRegression.SetParams", "unknown parameter "+key)
		}
	}
	return nil
}

// distinctClasses returns the sorted distinct values of an n×1 matrix.
func distinctClasses(y mat.Matrix) []float64 {
	rows, _ := y.Dims()
	seen := make(map[float64]struct{})
	for i := 0; i < rows; i++ {
		seen[y.At(i, 0)] = struct{}{}
	}
	classes := make([]float64, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Float64s(classes)
	return classes
}
