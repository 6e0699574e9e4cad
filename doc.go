// Package evalgo provides a supervised-learning evaluation harness for Go:
// train/test splitting, leakage-safe preprocessing, a family of estimators
// sharing a uniform Fit/Predict contract, scalar evaluation metrics, and
// cross-validated hyperparameter search.
//
// # Quick Start
//
// Train a model and score it on a held-out partition:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/evalgo-ml/evalgo/linear"
//	    "github.com/evalgo-ml/evalgo/metrics"
//	    "github.com/evalgo-ml/evalgo/modelselection"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
//	    y := mat.NewDense(6, 1, []float64{2, 4, 6, 8, 10, 12})
//
//	    split, err := modelselection.TrainTestSplit(6, 0.33, 42, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    model := linear.NewLinearRegression()
//	    if err := model.Fit(split.TrainMatrix(X), split.TrainMatrix(y)); err != nil {
//	        log.Fatal(err)
//	    }
//	    pred, err := model.Predict(split.TestMatrix(X))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    report, err := metrics.RegressionReport(split.TestMatrix(y), pred)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(report)
//	}
//
// # Packages
//
//   - dataset: delimited-file loading and the in-memory Dataset type
//   - modelselection: splits, k-fold generators, cross-validation,
//     grid and randomized hyperparameter search
//   - preprocessing: scalers, categorical encoders, ColumnTransformer
//   - linear, neighbors, tree, ensemble: estimator families
//   - metrics: regression and classification metrics and reports
//   - core/model: estimator interfaces and base types
//   - core/parallel: parallel processing utilities
//
// Every estimator accepts gonum matrices and reports structural problems
// through the typed errors in pkg/errors. Fitted state is explicit: Predict
// and Transform fail with NotFittedError/UnfittedTransformError until Fit
// has succeeded, and fitted parameters are never mutated by later calls.
package evalgo
