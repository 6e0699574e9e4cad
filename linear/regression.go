// Package linear provides linear models: ordinary least squares regression
// and logistic regression for binary classification.
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/core/model"
	"github.com/evalgo-ml/evalgo/core/parallel"
	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
)

// LinearRegression fits ordinary least squares via the normal equation.
// A singular Gram matrix falls back to a small ridge penalty on the
// diagonal.
type LinearRegression struct {
	model.BaseEstimator

	fitIntercept bool
	tol          float64

	// Fitted attributes.
	Coef_      []float64
	Intercept_ float64
	Rank_      int
	Singular_  []float64
	NFeatures  int
}

// NewLinearRegression returns a regressor with the default configuration:
// intercept fitting on and a rank tolerance of 1e-6.
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		fitIntercept: true,
		tol:          1e-6,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit estimates the coefficients from the training data. y must be an
// n×1 matrix aligned with the rows of X.
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkTrainingPair("LinearRegression.Fit", X, y)
	if err != nil {
		return err
	}
	lr.NFeatures = nFeatures

	XFit := X
	if lr.fitIntercept {
		XFit = withInterceptColumn(X)
	}

	_, cols := XFit.Dims()

	var xt mat.Dense
	xt.CloneFrom(XFit.T())

	var gram mat.Dense
	gram.Mul(&xt, XFit)

	var svd mat.SVD
	if ok := svd.Factorize(&gram, mat.SVDFull); !ok {
		return errors.NewValueError("LinearRegression.Fit", "SVD factorization failed")
	}
	lr.Singular_ = svd.Values(nil)
	lr.Rank_ = 0
	for _, s := range lr.Singular_ {
		if s > lr.tol {
			lr.Rank_++
		}
	}

	var gramInv mat.Dense
	if err := gramInv.Inverse(&gram); err != nil {
		// Ridge fallback for singular designs.
		for i := 0; i < cols; i++ {
			gram.Set(i, i, gram.At(i, i)+1e-10)
		}
		if err := gramInv.Inverse(&gram); err != nil {
			return errors.Wrap(errors.ErrSingularMatrix, "LinearRegression.Fit")
		}
	}

	var xty mat.Dense
	xty.Mul(&xt, y)

	var coef mat.Dense
	coef.Mul(&gramInv, &xty)

	if lr.fitIntercept {
		lr.Intercept_ = coef.At(0, 0)
		lr.Coef_ = make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			lr.Coef_[j] = coef.At(j+1, 0)
		}
	} else {
		lr.Intercept_ = 0
		lr.Coef_ = make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			lr.Coef_[j] = coef.At(j, 0)
		}
	}

	lr.SetFitted()
	log.GetLoggerWithName("linear").Debug("fitted linear regression",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
	)
	return nil
}

// Predict returns an n×1 matrix of predicted values.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	const threshold = 1000
	parallel.ParallelizeWithThreshold(nSamples, threshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := lr.Intercept_
			for j := 0; j < nFeatures; j++ {
				pred += X.At(i, j) * lr.Coef_[j]
			}
			predictions.Set(i, 0, pred)
		}
	})
	return predictions, nil
}

// Score returns the coefficient of determination on the given data.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return r2(y, yPred)
}

// GetParams reports the configuration in sklearn-style keys.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
		"tol":           lr.tol,
	}
}

// SetParams updates the configuration from sklearn-style keys. Unknown
// keys fail so search typos surface early.
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "fit_intercept":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValueError("LinearRegression.SetParams", "fit_intercept must be a bool")
			}
			lr.fitIntercept = v
		case "tol":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValueError("LinearRegression.SetParams", "tol must be a float64")
			}
			lr.tol = v
		default:
			return errors.NewValueError("LinearRegression.SetParams", "unknown parameter "+key)
		}
	}
	return nil
}

// withInterceptColumn prepends a column of ones.
func withInterceptColumn(X mat.Matrix) mat.Matrix {
	nSamples, nFeatures := X.Dims()
	out := mat.NewDense(nSamples, nFeatures+1, nil)
	const threshold = 1000
	parallel.ParallelizeWithThreshold(nSamples, threshold, func(start, end int) {
		for i := start; i < end; i++ {
			out.Set(i, 0, 1)
			for j := 0; j < nFeatures; j++ {
				out.Set(i, j+1, X.At(i, j))
			}
		}
	})
	return out
}

// checkTrainingPair validates an (X, y) pair for fitting.
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

func r2(y, yPred mat.Matrix) (float64, error) {
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
