package model

import "gonum.org/v1/gonum/mat"

// Transformer is the contract for fitted data transforms. Parameters are
// derived exclusively by Fit and frozen afterwards; Transform applies only
// those frozen parameters, so held-out data can never influence them.
type Transformer interface {
	// Fit learns the transform parameters from a training partition.
	Fit(X mat.Matrix) error

	// Transform maps data through the frozen parameters.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform runs Fit then Transform on the same data.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}
