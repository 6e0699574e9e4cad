package modelselection

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

// Fold is one train/test index pair of a cross-validation split.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// Splitter generates cross-validation folds over an (X, y) pair.
type Splitter interface {
	Split(X, y mat.Matrix) ([]Fold, error)
	NumSplits() int
}

// KFold splits rows into k contiguous folds, optionally shuffling first.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// NewKFold returns a k-fold splitter without shuffling.
func NewKFold(nSplits int) *KFold {
	return &KFold{NSplits: nSplits}
}

// NumSplits returns k.
func (kf *KFold) NumSplits() int {
	return kf.NSplits
}

// Split generates the folds. Fold sizes differ by at most one row. k must
// be at least 2 and at most the number of rows.
func (kf *KFold) Split(X, _ mat.Matrix) ([]Fold, error) {
	const op = "KFold.Split"
	nSamples, _ := X.Dims()
	if err := checkFoldCount(op, kf.NSplits, nSamples); err != nil {
		return nil, err
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		rng := rand.New(rand.NewSource(kf.Seed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	start := 0
	for i := range folds {
		size := foldSize
		if i < remainder {
			size++
		}
		test := append([]int(nil), indices[start:start+size]...)
		train := make([]int, 0, nSamples-size)
		train = append(train, indices[:start]...)
		train = append(train, indices[start+size:]...)

		sort.Ints(test)
		sort.Ints(train)
		folds[i] = Fold{TrainIndices: train, TestIndices: test}
		start += size
	}
	return folds, nil
}

// StratifiedKFold distributes each class across the k folds so every fold
// keeps roughly the overall class proportions. y supplies the labels.
type StratifiedKFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// NewStratifiedKFold returns a stratified k-fold splitter without
// shuffling.
func NewStratifiedKFold(nSplits int) *StratifiedKFold {
	return &StratifiedKFold{NSplits: nSplits}
}

// NumSplits returns k.
func (skf *StratifiedKFold) NumSplits() int {
	return skf.NSplits
}

// Split generates the folds. Every class must have at least k members.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) ([]Fold, error) {
	const op = "StratifiedKFold.Split"
	nSamples, _ := X.Dims()
	if err := checkFoldCount(op, skf.NSplits, nSamples); err != nil {
		return nil, err
	}
	yRows, _ := y.Dims()
	if yRows != nSamples {
		return nil, errors.NewLengthMismatchError(op, nSamples, yRows)
	}

	byClass := make(map[float64][]int)
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]float64, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Float64s(classes)

	var rng *rand.Rand
	if skf.Shuffle {
		rng = rand.New(rand.NewSource(skf.Seed))
	}

	folds := make([]Fold, skf.NSplits)
	for _, c := range classes {
		indices := byClass[c]
		if len(indices) < skf.NSplits {
			return nil, errors.NewStratificationError(op, c, len(indices))
		}
		if rng != nil {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		foldSize := len(indices) / skf.NSplits
		remainder := len(indices) % skf.NSplits
		start := 0
		for i := range folds {
			size := foldSize
			if i < remainder {
				size++
			}
			folds[i].TestIndices = append(folds[i].TestIndices, indices[start:start+size]...)
			start += size
		}
	}

	// Train sets are the complements.
	for i := range folds {
		inTest := make(map[int]struct{}, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			inTest[idx] = struct{}{}
		}
		train := make([]int, 0, nSamples-len(folds[i].TestIndices))
		for j := 0; j < nSamples; j++ {
			if _, ok := inTest[j]; !ok {
				train = append(train, j)
			}
		}
		sort.Ints(folds[i].TestIndices)
		folds[i].TrainIndices = train
	}
	return folds, nil
}

func checkFoldCount(op string, k, nSamples int) error {
	if nSamples == 0 {
		return errors.NewEmptyDatasetError(op)
	}
	if k < 2 {
		return errors.NewValueError(op, "folds must be at least 2")
	}
	if k > nSamples {
		return errors.NewValueError(op, "folds exceed the number of records")
	}
	return nil
}
