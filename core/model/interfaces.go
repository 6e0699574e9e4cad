// Package model provides the interfaces and base types shared by every
// estimator in the harness.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns a scalar quality measure of the prediction on X
	// against y (R² for regressors, accuracy for classifiers).
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Regressor combines the interfaces of regression models.
type Regressor interface {
	Estimator
	Scorer
}

// Classifier combines the interfaces of classification models.
type Classifier interface {
	Estimator
	Scorer

	// PredictProba returns probability estimates, one column per class in
	// the order reported by Classes.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique class labels seen during fitting.
	Classes() []float64
}

// ParameterGetter is the interface for models that expose their
// hyperparameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models whose hyperparameters can be
// set from a configuration, which is how search candidates are applied.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}
