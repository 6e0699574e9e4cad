// Package modelselection provides train/test splitting, k-fold cross
// validation and hyperparameter search over the estimator packages.
package modelselection

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/dataset"
	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
)

// Split holds the row indices of a train/test partition, both sorted
// ascending.
type Split struct {
	TrainIndices []int
	TestIndices  []int
}

// TrainTestSplit partitions n row indices by seeded permutation and cut.
// testFraction must lie strictly between 0 and 1; the test partition gets
// round(n*testFraction) rows, at least 1 and at most n-1.
//
// When stratifyLabels is non-nil it must hold one label per row; the cut
// then happens per class so each class keeps the same train/test
// proportion. A class with fewer than 2 members cannot appear on both
// sides and fails with a StratificationError.
func TrainTestSplit(n int, testFraction float64, seed int64, stratifyLabels []float64) (*Split, error) {
	const op = "TrainTestSplit"
	if n <= 0 {
		return nil, errors.NewEmptyDatasetError(op)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, errors.NewInvalidFractionError(op, testFraction)
	}
	if n < 2 {
		return nil, errors.NewValueError(op, "need at least 2 records to split")
	}

	rng := rand.New(rand.NewSource(seed))

	var split *Split
	if stratifyLabels == nil {
		split = plainSplit(n, testFraction, rng)
	} else {
		if len(stratifyLabels) != n {
			return nil, errors.NewLengthMismatchError(op, n, len(stratifyLabels))
		}
		var err error
		split, err = stratifiedSplit(stratifyLabels, testFraction, rng)
		if err != nil {
			return nil, err
		}
	}

	sort.Ints(split.TrainIndices)
	sort.Ints(split.TestIndices)

	log.GetLoggerWithName("modelselection").Debug("split data",
		log.SamplesKey, n,
		"train", len(split.TrainIndices),
		"test", len(split.TestIndices),
	)
	return split, nil
}

func testCount(n int, fraction float64) int {
	count := int(math.Round(float64(n) * fraction))
	if count < 1 {
		count = 1
	}
	if count > n-1 {
		count = n - 1
	}
	return count
}

func plainSplit(n int, fraction float64, rng *rand.Rand) *Split {
	perm := rng.Perm(n)
	cut := testCount(n, fraction)
	return &Split{
		TestIndices:  append([]int(nil), perm[:cut]...),
		TrainIndices: append([]int(nil), perm[cut:]...),
	}
}

func stratifiedSplit(labels []float64, fraction float64, rng *rand.Rand) (*Split, error) {
	const op = "TrainTestSplit"

	byClass := make(map[float64][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	// Iterate classes in sorted order so the permutation consumption is
	// deterministic for a given seed.
	classes := make([]float64, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Float64s(classes)

	split := &Split{}
	for _, c := range classes {
		indices := byClass[c]
		if len(indices) < 2 {
			return nil, errors.NewStratificationError(op, c, len(indices))
		}
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		cut := testCount(len(indices), fraction)
		split.TestIndices = append(split.TestIndices, indices[:cut]...)
		split.TrainIndices = append(split.TrainIndices, indices[cut:]...)
	}
	return split, nil
}

// TrainMatrix returns the training rows of m.
func (s *Split) TrainMatrix(m mat.Matrix) mat.Matrix {
	return selectRows(m, s.TrainIndices)
}

// TestMatrix returns the test rows of m.
func (s *Split) TestMatrix(m mat.Matrix) mat.Matrix {
	return selectRows(m, s.TestIndices)
}

// TrainDataset returns the training partition of d.
func (s *Split) TrainDataset(d *dataset.Dataset) *dataset.Dataset {
	return d.Select(s.TrainIndices)
}

// TestDataset returns the test partition of d.
func (s *Split) TestDataset(d *dataset.Dataset) *dataset.Dataset {
	return d.Select(s.TestIndices)
}

func selectRows(m mat.Matrix, indices []int) mat.Matrix {
	_, cols := m.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			out.Set(i, j, m.At(idx, j))
		}
	}
	return out
}
