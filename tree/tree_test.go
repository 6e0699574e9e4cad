package tree

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

func xorData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := mat.NewDense(4, 1, []float64{0, 1, 1, 0})
	return X, y
}

func TestDecisionTreeClassifierXOR(t *testing.T) {
	// XOR is not linearly separable but a depth-2 tree fits it exactly.
	X, y := xorData()

	clf := NewDecisionTreeClassifier()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		if pred.At(i, 0) != y.At(i, 0) {
			t.Errorf("Predict()[%d] = %v, want %v", i, pred.At(i, 0), y.At(i, 0))
		}
	}
	if d := clf.Depth(); d != 2 {
		t.Errorf("Depth() = %d, want 2", d)
	}
}

func TestDecisionTreeClassifierMaxDepth(t *testing.T) {
	X, y := xorData()

	clf := NewDecisionTreeClassifier(WithMaxDepth(1))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if d := clf.Depth(); d > 1 {
		t.Errorf("Depth() = %d, want <= 1", d)
	}
}

func TestDecisionTreeClassifierPureLeafProbabilities(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 10, 11, 12})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	clf := NewDecisionTreeClassifier()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	probs, err := clf.PredictProba(mat.NewDense(2, 1, []float64{2, 11}))
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	if probs.At(0, 0) != 1 || probs.At(0, 1) != 0 {
		t.Errorf("row 0 probs = [%v %v], want [1 0]", probs.At(0, 0), probs.At(0, 1))
	}
	if probs.At(1, 0) != 0 || probs.At(1, 1) != 1 {
		t.Errorf("row 1 probs = [%v %v], want [0 1]", probs.At(1, 0), probs.At(1, 1))
	}
}

func TestDecisionTreeClassifierMinSamplesLeaf(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	clf := NewDecisionTreeClassifier(WithMinSamplesLeaf(2))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	// Each leaf holds at least two samples, so at most two leaves here.
	if l := clf.NumLeaves(); l > 2 {
		t.Errorf("NumLeaves() = %d, want <= 2", l)
	}
}

func TestDecisionTreeClassifierConstantLabels(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{5, 5, 5})

	clf := NewDecisionTreeClassifier()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	pred, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if pred.At(i, 0) != 5 {
			t.Errorf("Predict()[%d] = %v, want 5", i, pred.At(i, 0))
		}
	}
	if l := clf.NumLeaves(); l != 1 {
		t.Errorf("NumLeaves() = %d, want 1", l)
	}
}

func TestDecisionTreeClassifierUnfitted(t *testing.T) {
	clf := NewDecisionTreeClassifier()
	_, err := clf.Predict(mat.NewDense(1, 1, []float64{1}))

	var notFitted *errors.NotFittedError
	if !errors.As(err, &notFitted) {
		t.Fatalf("Predict() before Fit: error = %T, want *NotFittedError", err)
	}
}

func TestDecisionTreeRegressorStepFunction(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 10, 11, 12})
	y := mat.NewDense(6, 1, []float64{1, 1, 1, 9, 9, 9})

	reg := NewDecisionTreeRegressor()
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := reg.Predict(mat.NewDense(2, 1, []float64{2, 11}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(pred.At(0, 0)-1) > 1e-9 {
		t.Errorf("Predict()[0] = %v, want 1", pred.At(0, 0))
	}
	if math.Abs(pred.At(1, 0)-9) > 1e-9 {
		t.Errorf("Predict()[1] = %v, want 9", pred.At(1, 0))
	}
}

func TestDecisionTreeRegressorDepthLimitAverages(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{10, 20, 30, 40})

	reg := NewDecisionTreeRegressor(WithMaxDepth(0), WithMinSamplesSplit(5))
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	// min_samples_split blocks every split, so the root leaf predicts the
	// global mean.
	pred, err := reg.Predict(mat.NewDense(1, 1, []float64{99}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(pred.At(0, 0)-25) > 1e-9 {
		t.Errorf("Predict() = %v, want 25", pred.At(0, 0))
	}
}

func TestDecisionTreeParams(t *testing.T) {
	clf := NewDecisionTreeClassifier()
	if err := clf.SetParams(map[string]interface{}{"max_depth": 3, "min_samples_leaf": 2}); err != nil {
		t.Fatalf("SetParams() error = %v", err)
	}
	params := clf.GetParams()
	if params["max_depth"] != 3 {
		t.Errorf("max_depth = %v, want 3", params["max_depth"])
	}
	if params["min_samples_leaf"] != 2 {
		t.Errorf("min_samples_leaf = %v, want 2", params["min_samples_leaf"])
	}
	if err := clf.SetParams(map[string]interface{}{"criterion": 1}); err == nil {
		t.Error("SetParams() with unknown key expected an error")
	}
}
