package preprocessing

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

func TestOneHotEncoderTransform(t *testing.T) {
	cols := [][]string{
		{"red", "blue", "red", "green"},
	}

	enc := NewOneHotEncoder()
	out, err := enc.FitTransform(cols)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	// Categories are sorted: blue, green, red.
	want := mat.NewDense(4, 3, []float64{
		0, 0, 1,
		1, 0, 0,
		0, 0, 1,
		0, 1, 0,
	})
	if !mat.Equal(out, want) {
		t.Errorf("encoded matrix = %v, want %v", mat.Formatted(out), mat.Formatted(want))
	}

	names := enc.FeatureNames([]string{"color"})
	wantNames := []string{"color=blue", "color=green", "color=red"}
	for i, n := range wantNames {
		if names[i] != n {
			t.Errorf("FeatureNames()[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestOneHotEncoderUnknownCategory(t *testing.T) {
	enc := NewOneHotEncoder()
	if err := enc.Fit([][]string{{"a", "b"}}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	out, err := enc.Transform([][]string{{"c"}})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	// Unknown category encodes as the all-zeros block.
	for j := 0; j < 2; j++ {
		if out.At(0, j) != 0 {
			t.Errorf("unknown category column %d = %v, want 0", j, out.At(0, j))
		}
	}
}

func TestOneHotEncoderUnfitted(t *testing.T) {
	enc := NewOneHotEncoder()
	_, err := enc.Transform([][]string{{"a"}})

	var unfitted *errors.UnfittedTransformError
	if !errors.As(err, &unfitted) {
		t.Fatalf("Transform() before Fit: error = %T, want *UnfittedTransformError", err)
	}
}

func TestOneHotEncoderMultipleColumns(t *testing.T) {
	cols := [][]string{
		{"a", "b", "a"},
		{"x", "x", "y"},
	}
	enc := NewOneHotEncoder()
	out, err := enc.FitTransform(cols)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if enc.NumOutputFeatures() != 4 {
		t.Errorf("NumOutputFeatures() = %d, want 4", enc.NumOutputFeatures())
	}
	_, c := out.Dims()
	if c != 4 {
		t.Errorf("output width = %d, want 4", c)
	}
	// Row 2: a -> [1 0], y -> [0 1].
	wantRow := []float64{1, 0, 0, 1}
	for j, w := range wantRow {
		if out.At(2, j) != w {
			t.Errorf("row 2 col %d = %v, want %v", j, out.At(2, j), w)
		}
	}
}

func TestOrdinalEncoderTransform(t *testing.T) {
	cols := [][]string{
		{"small", "large", "medium", "small"},
	}

	enc := NewOrdinalEncoder()
	out, err := enc.FitTransform(cols)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	// Sorted order: large=0, medium=1, small=2.
	want := []float64{2, 0, 1, 2}
	for i, w := range want {
		if out.At(i, 0) != w {
			t.Errorf("encoded[%d] = %v, want %v", i, out.At(i, 0), w)
		}
	}
}

func TestOrdinalEncoderUnknownCategory(t *testing.T) {
	enc := NewOrdinalEncoder()
	if err := enc.Fit([][]string{{"a", "b"}}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	out, err := enc.Transform([][]string{{"z"}})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if out.At(0, 0) != -1 {
		t.Errorf("unknown category code = %v, want -1", out.At(0, 0))
	}
}

func TestEncoderFitErrors(t *testing.T) {
	tests := []struct {
		name string
		cols [][]string
	}{
		{name: "no columns", cols: nil},
		{name: "empty column", cols: [][]string{{}}},
		{name: "ragged columns", cols: [][]string{{"a", "b"}, {"x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewOneHotEncoder().Fit(tt.cols); err == nil {
				t.Error("OneHotEncoder.Fit() expected an error")
			}
			if err := NewOrdinalEncoder().Fit(tt.cols); err == nil {
				t.Error("OrdinalEncoder.Fit() expected an error")
			}
		})
	}
}
