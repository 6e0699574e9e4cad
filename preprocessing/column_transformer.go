package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/core/model"
	"github.com/evalgo-ml/evalgo/dataset"
	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
)

// ColumnTransformer turns a Dataset partition into the numeric matrix
// estimators consume: numeric columns go through a scaler, categorical
// columns through a one-hot encoder, and the results are concatenated
// (scaled numeric block first). Fit learns all parameters from the supplied
// partition only; Transform applies them frozen to any partition with the
// same schema.
type ColumnTransformer struct {
	model.BaseEstimator

	scaler  model.Transformer
	encoder *OneHotEncoder

	numericIdx     []int
	categoricalIdx []int
	kinds          []dataset.FeatureKind
	names          []string
}

// ColumnTransformerOption configures a ColumnTransformer.
type ColumnTransformerOption func(*ColumnTransformer)

// WithNumericScaler sets the scaler applied to numeric columns. Pass nil to
// forward numeric columns unscaled.
func WithNumericScaler(s model.Transformer) ColumnTransformerOption {
	return func(t *ColumnTransformer) {
		t.scaler = s
	}
}

// NewColumnTransformer creates a ColumnTransformer. The default numeric
// scaler is a StandardScaler with centering and scaling enabled.
func NewColumnTransformer(opts ...ColumnTransformerOption) *ColumnTransformer {
	t := &ColumnTransformer{
		scaler: NewStandardScalerDefault(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fit learns the transform parameters from a training partition.
func (t *ColumnTransformer) Fit(d *dataset.Dataset) error {
	if d == nil || d.NumRecords() == 0 {
		return errors.NewEmptyDatasetError("ColumnTransformer.Fit")
	}

	t.numericIdx = t.numericIdx[:0]
	t.categoricalIdx = t.categoricalIdx[:0]
	t.kinds = make([]dataset.FeatureKind, d.NumFeatures())
	t.names = d.FeatureNames()
	for j := 0; j < d.NumFeatures(); j++ {
		t.kinds[j] = d.Kind(j)
		if d.Kind(j) == dataset.Categorical {
			t.categoricalIdx = append(t.categoricalIdx, j)
		} else {
			t.numericIdx = append(t.numericIdx, j)
		}
	}

	if len(t.numericIdx) > 0 && t.scaler != nil {
		if err := t.scaler.Fit(t.numericBlock(d)); err != nil {
			return err
		}
	}
	if len(t.categoricalIdx) > 0 {
		t.encoder = NewOneHotEncoder()
		if err := t.encoder.Fit(t.categoricalColumns(d)); err != nil {
			return err
		}
	}

	log.GetLoggerWithName("preprocessing").Debug("column transformer fitted",
		log.OperationKey, "fit",
		log.SamplesKey, d.NumRecords(),
		"numeric_columns", len(t.numericIdx),
		"categorical_columns", len(t.categoricalIdx),
	)

	t.SetFitted()
	return nil
}

// Transform maps a partition through the frozen parameters, leaving labels
// untouched. The partition must share the training schema.
func (t *ColumnTransformer) Transform(d *dataset.Dataset) (*mat.Dense, error) {
	if !t.IsFitted() {
		return nil, errors.NewUnfittedTransformError("ColumnTransformer", "Transform")
	}
	if d == nil || d.NumRecords() == 0 {
		return nil, errors.NewEmptyDatasetError("ColumnTransformer.Transform")
	}
	if d.NumFeatures() != len(t.kinds) {
		return nil, errors.NewDimensionError("ColumnTransformer.Transform", len(t.kinds), d.NumFeatures(), 1)
	}
	for j, kind := range t.kinds {
		if d.Kind(j) != kind {
			return nil, errors.NewValueError("ColumnTransformer.Transform",
				"column '"+t.names[j]+"' is "+d.Kind(j).String()+", fitted schema expects "+kind.String())
		}
	}

	n := d.NumRecords()
	var blocks []mat.Matrix

	if len(t.numericIdx) > 0 {
		numeric := mat.Matrix(t.numericBlock(d))
		if t.scaler != nil {
			scaled, err := t.scaler.Transform(numeric)
			if err != nil {
				return nil, err
			}
			numeric = scaled
		}
		blocks = append(blocks, numeric)
	}
	if len(t.categoricalIdx) > 0 {
		encoded, err := t.encoder.Transform(t.categoricalColumns(d))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, encoded)
	}

	width := 0
	for _, b := range blocks {
		_, c := b.Dims()
		width += c
	}
	out := mat.NewDense(n, width, nil)
	offset := 0
	for _, b := range blocks {
		_, c := b.Dims()
		for i := 0; i < n; i++ {
			for j := 0; j < c; j++ {
				out.Set(i, offset+j, b.At(i, j))
			}
		}
		offset += c
	}
	return out, nil
}

// FitTransform fits on the partition and transforms it in one call.
func (t *ColumnTransformer) FitTransform(d *dataset.Dataset) (*mat.Dense, error) {
	if err := t.Fit(d); err != nil {
		return nil, err
	}
	return t.Transform(d)
}

// FeatureNames returns the output column names: numeric names in schema
// order, then one "name=category" entry per one-hot column.
func (t *ColumnTransformer) FeatureNames() []string {
	var names []string
	for _, j := range t.numericIdx {
		names = append(names, t.names[j])
	}
	if t.encoder != nil {
		catNames := make([]string, len(t.categoricalIdx))
		for i, j := range t.categoricalIdx {
			catNames[i] = t.names[j]
		}
		names = append(names, t.encoder.FeatureNames(catNames)...)
	}
	return names
}

func (t *ColumnTransformer) numericBlock(d *dataset.Dataset) *mat.Dense {
	n := d.NumRecords()
	out := mat.NewDense(n, len(t.numericIdx), nil)
	for k, j := range t.numericIdx {
		col := d.Column(j)
		for i := 0; i < n; i++ {
			out.Set(i, k, col.Numeric[i])
		}
	}
	return out
}

func (t *ColumnTransformer) categoricalColumns(d *dataset.Dataset) [][]string {
	cols := make([][]string, len(t.categoricalIdx))
	for k, j := range t.categoricalIdx {
		cols[k] = d.Column(j).Values
	}
	return cols
}
