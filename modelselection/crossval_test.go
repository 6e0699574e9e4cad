package modelselection

import (
	"math"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/linear"
)

func TestCrossValidateLinearModel(t *testing.T) {
	// y = 2x + 1 exactly, so every fold scores R^2 = 1.
	n := 12
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i)
		ys[i] = 2*float64(i) + 1
	}
	X := mat.NewDense(n, 1, xs)
	y := mat.NewDense(n, 1, ys)

	scorer, err := MakeScorer("r2")
	if err != nil {
		t.Fatalf("MakeScorer() error = %v", err)
	}

	result, err := CrossValidate(func() Estimator { return linear.NewLinearRegression() },
		X, y, NewKFold(3), scorer)
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}

	if len(result.TestScores) != 3 {
		t.Fatalf("TestScores = %d folds, want 3", len(result.TestScores))
	}
	if math.Abs(result.MeanScore()-1) > 1e-6 {
		t.Errorf("MeanScore() = %v, want 1", result.MeanScore())
	}
	if result.StdScore() > 1e-6 {
		t.Errorf("StdScore() = %v, want ~0", result.StdScore())
	}
}

func TestCrossValidateFitsOneEstimatorPerFold(t *testing.T) {
	X, y := zeroTarget(10)
	var fits int64

	result, err := CrossValidate(func() Estimator {
		return &constantEstimator{fits: &fits}
	}, X, y, NewKFold(5), mseScorer(t))
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}
	if got := atomic.LoadInt64(&fits); got != 5 {
		t.Errorf("fits = %d, want 5", got)
	}
	if len(result.TrainScores) != 5 {
		t.Errorf("TrainScores = %d folds, want 5", len(result.TrainScores))
	}
}

func TestCrossValidatePropagatesFitErrors(t *testing.T) {
	X, y := zeroTarget(6)
	var fits int64

	_, err := CrossValidate(func() Estimator {
		return &constantEstimator{fits: &fits, failFit: true}
	}, X, y, NewKFold(3), mseScorer(t))
	if err == nil {
		t.Error("CrossValidate() with failing fits expected an error")
	}
}

func TestCrossValidatePropagatesSplitterErrors(t *testing.T) {
	X, y := zeroTarget(3)
	var fits int64

	_, err := CrossValidate(func() Estimator {
		return &constantEstimator{fits: &fits}
	}, X, y, NewKFold(10), mseScorer(t))
	if err == nil {
		t.Error("CrossValidate() with an invalid splitter expected an error")
	}
}

func TestCVResultStatistics(t *testing.T) {
	cv := &CVResult{TestScores: []float64{2, 4, 6}}
	if cv.MeanScore() != 4 {
		t.Errorf("MeanScore() = %v, want 4", cv.MeanScore())
	}
	if math.Abs(cv.StdScore()-2) > 1e-9 {
		t.Errorf("StdScore() = %v, want 2", cv.StdScore())
	}

	empty := &CVResult{}
	if empty.MeanScore() != 0 || empty.StdScore() != 0 {
		t.Error("empty CVResult statistics should be 0")
	}
}
