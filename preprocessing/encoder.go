package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/core/model"
	"github.com/evalgo-ml/evalgo/pkg/errors"
)

// OneHotEncoder encodes categorical string columns as one-hot blocks. Fit
// builds a sorted category table per column from the training partition; a
// category unseen during Fit encodes as the all-zeros block.
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories holds the sorted category table per input column.
	Categories [][]string

	index []map[string]int
}

// NewOneHotEncoder creates an unfitted OneHotEncoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit builds the category tables. columns is column-major: one string slice
// per categorical column, all of equal length.
func (e *OneHotEncoder) Fit(columns [][]string) error {
	if len(columns) == 0 || len(columns[0]) == 0 {
		return errors.NewEmptyDatasetError("OneHotEncoder.Fit")
	}
	n := len(columns[0])
	for _, col := range columns {
		if len(col) != n {
			return errors.NewLengthMismatchError("OneHotEncoder.Fit", n, len(col))
		}
	}

	e.Categories = make([][]string, len(columns))
	e.index = make([]map[string]int, len(columns))
	for j, col := range columns {
		seen := make(map[string]struct{})
		for _, v := range col {
			seen[v] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)

		e.Categories[j] = cats
		e.index[j] = make(map[string]int, len(cats))
		for i, v := range cats {
			e.index[j][v] = i
		}
	}

	e.SetFitted()
	return nil
}

// NumOutputFeatures returns the width of the encoded block: the sum of
// category counts across columns.
func (e *OneHotEncoder) NumOutputFeatures() int {
	total := 0
	for _, cats := range e.Categories {
		total += len(cats)
	}
	return total
}

// FeatureNames returns one name per output column, "name=category", given
// the input column names.
func (e *OneHotEncoder) FeatureNames(columnNames []string) []string {
	var names []string
	for j, cats := range e.Categories {
		prefix := ""
		if j < len(columnNames) {
			prefix = columnNames[j]
		}
		for _, cat := range cats {
			names = append(names, prefix+"="+cat)
		}
	}
	return names
}

// Transform encodes the columns through the frozen category tables.
func (e *OneHotEncoder) Transform(columns [][]string) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewUnfittedTransformError("OneHotEncoder", "Transform")
	}
	if len(columns) != len(e.Categories) {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", len(e.Categories), len(columns), 1)
	}
	if len(columns) == 0 {
		return nil, errors.NewEmptyDatasetError("OneHotEncoder.Transform")
	}
	n := len(columns[0])
	for _, col := range columns {
		if len(col) != n {
			return nil, errors.NewLengthMismatchError("OneHotEncoder.Transform", n, len(col))
		}
	}

	out := mat.NewDense(n, e.NumOutputFeatures(), nil)
	offset := 0
	for j, col := range columns {
		for i, v := range col {
			if k, ok := e.index[j][v]; ok {
				out.Set(i, offset+k, 1)
			}
			// Unknown categories leave the block at zero.
		}
		offset += len(e.Categories[j])
	}
	return out, nil
}

// FitTransform fits on the columns and transforms them in one call.
func (e *OneHotEncoder) FitTransform(columns [][]string) (*mat.Dense, error) {
	if err := e.Fit(columns); err != nil {
		return nil, err
	}
	return e.Transform(columns)
}

// OrdinalEncoder encodes categorical string columns as integer codes in
// sorted category order. A category unseen during Fit encodes as -1.
type OrdinalEncoder struct {
	model.BaseEstimator

	// Categories holds the sorted category table per input column.
	Categories [][]string

	index []map[string]int
}

// NewOrdinalEncoder creates an unfitted OrdinalEncoder.
func NewOrdinalEncoder() *OrdinalEncoder {
	return &OrdinalEncoder{}
}

// Fit builds the category tables from the training partition.
func (e *OrdinalEncoder) Fit(columns [][]string) error {
	if len(columns) == 0 || len(columns[0]) == 0 {
		return errors.NewEmptyDatasetError("OrdinalEncoder.Fit")
	}
	n := len(columns[0])
	for _, col := range columns {
		if len(col) != n {
			return errors.NewLengthMismatchError("OrdinalEncoder.Fit", n, len(col))
		}
	}

	e.Categories = make([][]string, len(columns))
	e.index = make([]map[string]int, len(columns))
	for j, col := range columns {
		seen := make(map[string]struct{})
		for _, v := range col {
			seen[v] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)

		e.Categories[j] = cats
		e.index[j] = make(map[string]int, len(cats))
		for i, v := range cats {
			e.index[j][v] = i
		}
	}

	e.SetFitted()
	return nil
}

// Transform encodes the columns through the frozen category tables.
func (e *OrdinalEncoder) Transform(columns [][]string) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewUnfittedTransformError("OrdinalEncoder", "Transform")
	}
	if len(columns) != len(e.Categories) {
		return nil, errors.NewDimensionError("OrdinalEncoder.Transform", len(e.Categories), len(columns), 1)
	}
	if len(columns) == 0 {
		return nil, errors.NewEmptyDatasetError("OrdinalEncoder.Transform")
	}
	n := len(columns[0])
	for _, col := range columns {
		if len(col) != n {
			return nil, errors.NewLengthMismatchError("OrdinalEncoder.Transform", n, len(col))
		}
	}

	out := mat.NewDense(n, len(columns), nil)
	for j, col := range columns {
		for i, v := range col {
			if k, ok := e.index[j][v]; ok {
				out.Set(i, j, float64(k))
			} else {
				out.Set(i, j, -1)
			}
		}
	}
	return out, nil
}

// FitTransform fits on the columns and transforms them in one call.
func (e *OrdinalEncoder) FitTransform(columns [][]string) (*mat.Dense, error) {
	if err := e.Fit(columns); err != nil {
		return nil, err
	}
	return e.Transform(columns)
}
