package model

import "gonum.org/v1/gonum/mat"

// Fitter is the training half of the estimator contract.
type Fitter interface {
	// Fit trains the estimator on features X and labels y, mutating the
	// receiver in place.
	Fit(X, y mat.Matrix) error
}

// Predictor is the inference half of the estimator contract.
type Predictor interface {
	// Predict returns one prediction per input row. It fails with
	// NotFittedError before Fit.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator is the uniform two-operation contract shared by every model
// family. This uniformity is what keeps evaluation and hyperparameter
// search model-agnostic.
type Estimator interface {
	Fitter
	Predictor
}
