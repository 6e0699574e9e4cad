package ensemble

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

func clusterData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(10, 1, []float64{0, 1, 2, 3, 4, 20, 21, 22, 23, 24})
	y := mat.NewDense(10, 1, []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1})
	return X, y
}

func TestRandomForestClassifierSeparatesClusters(t *testing.T) {
	X, y := clusterData()

	rf := NewRandomForestClassifier(WithTrees(15), WithForestSeed(42))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if rf.NumTrees() != 15 {
		t.Errorf("NumTrees() = %d, want 15", rf.NumTrees())
	}

	pred, err := rf.Predict(mat.NewDense(2, 1, []float64{2, 22}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if pred.At(0, 0) != 0 || pred.At(1, 0) != 1 {
		t.Errorf("Predict() = [%v %v], want [0 1]", pred.At(0, 0), pred.At(1, 0))
	}
}

func TestRandomForestClassifierDeterministicWithSeed(t *testing.T) {
	X, y := clusterData()
	query := mat.NewDense(3, 1, []float64{1, 12, 23})

	first := NewRandomForestClassifier(WithTrees(10), WithForestSeed(7))
	if err := first.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	second := NewRandomForestClassifier(WithTrees(10), WithForestSeed(7))
	if err := second.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	p1, err := first.PredictProba(query)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	p2, err := second.PredictProba(query)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	if !mat.Equal(p1, p2) {
		t.Error("same seed produced different probabilities")
	}
}

func TestRandomForestClassifierProbabilitiesSumToOne(t *testing.T) {
	X, y := clusterData()

	rf := NewRandomForestClassifier(WithTrees(5), WithForestSeed(1))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	probs, err := rf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	r, _ := probs.Dims()
	for i := 0; i < r; i++ {
		sum := probs.At(i, 0) + probs.At(i, 1)
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d probabilities sum to %v, want 1", i, sum)
		}
	}
}

func TestRandomForestClassifierUnfitted(t *testing.T) {
	rf := NewRandomForestClassifier()
	_, err := rf.Predict(mat.NewDense(1, 1, []float64{1}))

	var notFitted *errors.NotFittedError
	if !errors.As(err, &notFitted) {
		t.Fatalf("Predict() before Fit: error = %T, want *NotFittedError", err)
	}
}

func TestGradientBoostingRegressorFitsCurve(t *testing.T) {
	// y = x^2 on a small grid; enough stages drive training error down.
	n := 20
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i) / 2
		xs[i] = x
		ys[i] = x * x
	}
	X := mat.NewDense(n, 1, xs)
	y := mat.NewDense(n, 1, ys)

	gb := NewGradientBoostingRegressor(WithStages(200), WithLearningRate(0.1), WithBoostMaxDepth(2))
	if err := gb.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	score, err := gb.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score < 0.99 {
		t.Errorf("Score() = %v, want >= 0.99", score)
	}
}

func TestGradientBoostingRegressorMoreStagesFitTighter(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	y := mat.NewDense(8, 1, []float64{3, 1, 4, 1, 5, 9, 2, 6})

	small := NewGradientBoostingRegressor(WithStages(5), WithBoostMaxDepth(1))
	if err := small.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	large := NewGradientBoostingRegressor(WithStages(100), WithBoostMaxDepth(1))
	if err := large.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	smallScore, err := small.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	largeScore, err := large.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if largeScore <= smallScore {
		t.Errorf("training scores: %d stages = %v, %d stages = %v; want improvement",
			100, largeScore, 5, smallScore)
	}
}

func TestGradientBoostingClassifierSeparatesClusters(t *testing.T) {
	X, y := clusterData()

	gb := NewGradientBoostingClassifier(WithStages(50), WithBoostMaxDepth(2))
	if err := gb.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	acc, err := gb.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if acc != 1 {
		t.Errorf("Score() = %v, want 1", acc)
	}

	probs, err := gb.PredictProba(mat.NewDense(2, 1, []float64{2, 22}))
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	if probs.At(0, 1) >= 0.5 {
		t.Errorf("P(positive | cluster 0) = %v, want < 0.5", probs.At(0, 1))
	}
	if probs.At(1, 1) <= 0.5 {
		t.Errorf("P(positive | cluster 1) = %v, want > 0.5", probs.At(1, 1))
	}
}

func TestGradientBoostingClassifierRejectsMulticlass(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{0, 1, 2})

	if err := NewGradientBoostingClassifier().Fit(X, y); err == nil {
		t.Error("Fit() with three classes expected an error")
	}
}

func TestBoostingValidation(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewDense(2, 1, []float64{0, 1})

	tests := []struct {
		name string
		opts []BoostOption
	}{
		{name: "zero stages", opts: []BoostOption{WithStages(0)}},
		{name: "negative learning rate", opts: []BoostOption{WithLearningRate(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewGradientBoostingRegressor(tt.opts...).Fit(X, y); err == nil {
				t.Error("Fit() expected an error")
			}
		})
	}
}

func TestBoostingParams(t *testing.T) {
	gb := NewGradientBoostingRegressor()
	if err := gb.SetParams(map[string]interface{}{"n_estimators": 50, "learning_rate": 0.05}); err != nil {
		t.Fatalf("SetParams() error = %v", err)
	}
	params := gb.GetParams()
	if params["n_estimators"] != 50 {
		t.Errorf("n_estimators = %v, want 50", params["n_estimators"])
	}
	if params["learning_rate"] != 0.05 {
		t.Errorf("learning_rate = %v, want 0.05", params["learning_rate"])
	}
}
