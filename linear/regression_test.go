package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

const tol = 1e-6

func TestLinearRegressionExactLine(t *testing.T) {
	// y = 2x + 1.
	X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	y := mat.NewDense(5, 1, []float64{3, 5, 7, 9, 11})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(lr.Coef_[0]-2) > tol {
		t.Errorf("Coef_[0] = %v, want 2", lr.Coef_[0])
	}
	if math.Abs(lr.Intercept_-1) > tol {
		t.Errorf("Intercept_ = %v, want 1", lr.Intercept_)
	}

	pred, err := lr.Predict(mat.NewDense(2, 1, []float64{6, 7}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	want := []float64{13, 15}
	for i, w := range want {
		if math.Abs(pred.At(i, 0)-w) > tol {
			t.Errorf("Predict()[%d] = %v, want %v", i, pred.At(i, 0), w)
		}
	}
}

func TestLinearRegressionMultipleFeatures(t *testing.T) {
	// y = 1*x1 + 2*x2 + 3.
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 1,
		1, 2,
		3, 3,
	})
	y := mat.NewDense(4, 1, []float64{6, 7, 8, 12})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if math.Abs(lr.Coef_[0]-1) > 1e-4 || math.Abs(lr.Coef_[1]-2) > 1e-4 {
		t.Errorf("Coef_ = %v, want [1 2]", lr.Coef_)
	}
	if math.Abs(lr.Intercept_-3) > 1e-4 {
		t.Errorf("Intercept_ = %v, want 3", lr.Intercept_)
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if math.Abs(score-1) > tol {
		t.Errorf("Score() = %v, want 1", score)
	}
}

func TestLinearRegressionWithoutIntercept(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{2, 4, 6})

	lr := NewLinearRegression(WithFitIntercept(false))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if math.Abs(lr.Coef_[0]-2) > tol {
		t.Errorf("Coef_[0] = %v, want 2", lr.Coef_[0])
	}
	if lr.Intercept_ != 0 {
		t.Errorf("Intercept_ = %v, want 0", lr.Intercept_)
	}
}

func TestLinearRegressionDuplicateFeature(t *testing.T) {
	// A duplicated column makes the Gram matrix singular; the ridge
	// fallback must still produce predictions on the training line.
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := lr.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		if math.Abs(pred.At(i, 0)-y.At(i, 0)) > 1e-3 {
			t.Errorf("Predict()[%d] = %v, want %v", i, pred.At(i, 0), y.At(i, 0))
		}
	}
}

func TestLinearRegressionErrors(t *testing.T) {
	tests := []struct {
		name string
		X    *mat.Dense
		y    *mat.Dense
	}{
		{
			name: "length mismatch",
			X:    mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:    mat.NewDense(2, 1, []float64{1, 2}),
		},
		{
			name: "y not a column",
			X:    mat.NewDense(2, 1, []float64{1, 2}),
			y:    mat.NewDense(2, 2, nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewLinearRegression().Fit(tt.X, tt.y); err == nil {
				t.Error("Fit() expected an error")
			}
		})
	}
}

func TestLinearRegressionUnfitted(t *testing.T) {
	lr := NewLinearRegression()
	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))

	var notFitted *errors.NotFittedError
	if !errors.As(err, &notFitted) {
		t.Fatalf("Predict() before Fit: error = %T, want *NotFittedError", err)
	}
}

func TestLinearRegressionParamsRoundTrip(t *testing.T) {
	lr := NewLinearRegression()
	if err := lr.SetParams(map[string]interface{}{"fit_intercept": false, "tol": 1e-4}); err != nil {
		t.Fatalf("SetParams() error = %v", err)
	}
	params := lr.GetParams()
	if params["fit_intercept"] != false {
		t.Errorf("fit_intercept = %v, want false", params["fit_intercept"])
	}
	if params["tol"] != 1e-4 {
		t.Errorf("tol = %v, want 1e-4", params["tol"])
	}

	if err := lr.SetParams(map[string]interface{}{"bogus": 1}); err == nil {
		t.Error("SetParams() with unknown key expected an error")
	}
}
