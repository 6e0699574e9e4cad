package preprocessing

import (
	"math"
	"testing"

	"github.com/evalgo-ml/evalgo/dataset"
	"github.com/evalgo-ml/evalgo/pkg/errors"
)

func buildMixedDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.New([]dataset.Column{
		{Name: "age", Kind: dataset.Numeric, Numeric: []float64{20, 30, 40, 50}},
		{Name: "city", Kind: dataset.Categorical, Values: []string{"ny", "la", "ny", "la"}},
	}, []float64{0, 1, 0, 1})
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	return d
}

func TestColumnTransformerMixedColumns(t *testing.T) {
	d := buildMixedDataset(t)

	ct := NewColumnTransformer()
	X, err := ct.FitTransform(d)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	r, c := X.Dims()
	if r != 4 || c != 3 {
		t.Fatalf("output dims = %dx%d, want 4x3", r, c)
	}

	// Numeric block is standardized: column mean 0.
	sum := 0.0
	for i := 0; i < r; i++ {
		sum += X.At(i, 0)
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("standardized column sum = %v, want 0", sum)
	}

	// One-hot block: categories sorted (la, ny); row 0 is ny.
	if X.At(0, 1) != 0 || X.At(0, 2) != 1 {
		t.Errorf("row 0 one-hot block = [%v %v], want [0 1]", X.At(0, 1), X.At(0, 2))
	}

	names := ct.FeatureNames()
	want := []string{"age", "city=la", "city=ny"}
	if len(names) != len(want) {
		t.Fatalf("FeatureNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("FeatureNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestColumnTransformerNoLeakage(t *testing.T) {
	train := buildMixedDataset(t)

	ct := NewColumnTransformer()
	if err := ct.Fit(train); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// A test partition with wildly different values must be mapped through
	// the training statistics, and transforming it must not change them.
	test, err := dataset.New([]dataset.Column{
		{Name: "age", Kind: dataset.Numeric, Numeric: []float64{1000}},
		{Name: "city", Kind: dataset.Categorical, Values: []string{"tokyo"}},
	}, []float64{0})
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}

	first, err := ct.Transform(test)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if _, err := ct.Transform(train); err != nil {
		t.Fatalf("Transform(train) error = %v", err)
	}
	second, err := ct.Transform(test)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if first.At(0, 0) != second.At(0, 0) {
		t.Error("transforming other data changed the fitted parameters")
	}
	// Unknown city encodes as zeros.
	if first.At(0, 1) != 0 || first.At(0, 2) != 0 {
		t.Error("unknown category should encode as the all-zeros block")
	}
}

func TestColumnTransformerUnfitted(t *testing.T) {
	ct := NewColumnTransformer()
	_, err := ct.Transform(buildMixedDataset(t))

	var unfitted *errors.UnfittedTransformError
	if !errors.As(err, &unfitted) {
		t.Fatalf("Transform() before Fit: error = %T, want *UnfittedTransformError", err)
	}
}

func TestColumnTransformerSchemaMismatch(t *testing.T) {
	ct := NewColumnTransformer()
	if err := ct.Fit(buildMixedDataset(t)); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	other, err := dataset.New([]dataset.Column{
		{Name: "age", Kind: dataset.Numeric, Numeric: []float64{1}},
	}, []float64{0})
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	if _, err := ct.Transform(other); err == nil {
		t.Error("Transform() with a narrower schema expected an error")
	}
}

func TestColumnTransformerWithoutScaler(t *testing.T) {
	d := buildMixedDataset(t)

	ct := NewColumnTransformer(WithNumericScaler(nil))
	X, err := ct.FitTransform(d)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if X.At(0, 0) != 20 {
		t.Errorf("unscaled numeric value = %v, want 20", X.At(0, 0))
	}
}
