package modelselection

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

func TestTrainTestSplitSizes(t *testing.T) {
	split, err := TrainTestSplit(6, 0.33, 42, nil)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	if len(split.TestIndices) != 2 {
		t.Errorf("test size = %d, want 2", len(split.TestIndices))
	}
	if len(split.TrainIndices) != 4 {
		t.Errorf("train size = %d, want 4", len(split.TrainIndices))
	}
}

func TestTrainTestSplitDisjointAndExhaustive(t *testing.T) {
	split, err := TrainTestSplit(10, 0.3, 1, nil)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	seen := make(map[int]int)
	for _, i := range split.TrainIndices {
		seen[i]++
	}
	for _, i := range split.TestIndices {
		seen[i]++
	}
	if len(seen) != 10 {
		t.Errorf("covered %d indices, want 10", len(seen))
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("index %d appears %d times, want 1", idx, count)
		}
	}
}

func TestTrainTestSplitDeterministicWithSeed(t *testing.T) {
	first, err := TrainTestSplit(50, 0.2, 7, nil)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	second, err := TrainTestSplit(50, 0.2, 7, nil)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	for i := range first.TestIndices {
		if first.TestIndices[i] != second.TestIndices[i] {
			t.Fatal("same seed produced different splits")
		}
	}

	other, err := TrainTestSplit(50, 0.2, 8, nil)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	same := len(other.TestIndices) == len(first.TestIndices)
	if same {
		for i := range first.TestIndices {
			if first.TestIndices[i] != other.TestIndices[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical splits")
	}
}

func TestTrainTestSplitStratified(t *testing.T) {
	// 100 records, two balanced classes, fraction 0.2: 20 test records,
	// 10 per class.
	labels := make([]float64, 100)
	for i := 50; i < 100; i++ {
		labels[i] = 1
	}

	split, err := TrainTestSplit(100, 0.2, 42, labels)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	if len(split.TestIndices) != 20 {
		t.Fatalf("test size = %d, want 20", len(split.TestIndices))
	}

	perClass := map[float64]int{}
	for _, idx := range split.TestIndices {
		perClass[labels[idx]]++
	}
	if perClass[0] != 10 || perClass[1] != 10 {
		t.Errorf("test class counts = %v, want 10 per class", perClass)
	}
}

func TestTrainTestSplitStratifiedSingletonClass(t *testing.T) {
	labels := []float64{0, 0, 0, 0, 1}

	_, err := TrainTestSplit(5, 0.2, 1, labels)
	var strat *errors.StratificationError
	if !errors.As(err, &strat) {
		t.Fatalf("error = %T, want *StratificationError", err)
	}
	if strat.Label != 1 {
		t.Errorf("Label = %v, want 1", strat.Label)
	}
}

func TestTrainTestSplitInvalidFraction(t *testing.T) {
	for _, fraction := range []float64{0, 1, -0.5, 1.5} {
		_, err := TrainTestSplit(10, fraction, 1, nil)
		var invalid *errors.InvalidFractionError
		if !errors.As(err, &invalid) {
			t.Errorf("fraction %v: error = %T, want *InvalidFractionError", fraction, err)
		}
	}
}

func TestTrainTestSplitEmpty(t *testing.T) {
	_, err := TrainTestSplit(0, 0.2, 1, nil)
	var empty *errors.EmptyDatasetError
	if !errors.As(err, &empty) {
		t.Fatalf("error = %T, want *EmptyDatasetError", err)
	}
}

func TestTrainTestSplitLabelLengthMismatch(t *testing.T) {
	_, err := TrainTestSplit(5, 0.2, 1, []float64{0, 1})
	var mismatch *errors.LengthMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %T, want *LengthMismatchError", err)
	}
}

func TestSplitMatrixSelection(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})
	split := &Split{TrainIndices: []int{0, 2}, TestIndices: []int{1, 3}}

	train := split.TrainMatrix(X)
	r, c := train.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("train dims = %dx%d, want 2x2", r, c)
	}
	if train.At(0, 0) != 1 || train.At(1, 1) != 30 {
		t.Errorf("train rows = %v, want rows 0 and 2", mat.Formatted(train))
	}

	test := split.TestMatrix(X)
	if test.At(0, 0) != 2 || test.At(1, 0) != 4 {
		t.Errorf("test rows = %v, want rows 1 and 3", mat.Formatted(test))
	}
}
