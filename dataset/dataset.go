// Package dataset provides the in-memory tabular Dataset type and loading
// from delimited files. A Dataset is an ordered sequence of records sharing
// one feature schema (numeric and categorical columns) plus one label per
// record.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

// FeatureKind distinguishes numeric from categorical feature columns.
type FeatureKind int

const (
	// Numeric columns hold float64 values.
	Numeric FeatureKind = iota
	// Categorical columns hold string categories and must be encoded
	// before reaching an estimator.
	Categorical
)

// String returns the kind's name.
func (k FeatureKind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

// Column is a single feature column. Exactly one of Numeric or Values is
// populated, matching Kind.
type Column struct {
	Name    string
	Kind    FeatureKind
	Numeric []float64 // set when Kind == Numeric
	Values  []string  // set when Kind == Categorical
}

func (c *Column) length() int {
	if c.Kind == Categorical {
		return len(c.Values)
	}
	return len(c.Numeric)
}

// Dataset holds feature columns and labels. Labels are always float64:
// regression targets directly, classification classes as codes (see
// ClassNames for the decoding table of string-labeled data).
type Dataset struct {
	cols       []Column
	labels     []float64
	labelName  string
	classNames []string // class code -> original label, nil for numeric labels
}

// New builds a Dataset from columns and labels. All columns and the label
// slice must have the same length.
func New(cols []Column, labels []float64) (*Dataset, error) {
	if len(labels) == 0 {
		return nil, errors.NewEmptyDatasetError("dataset.New")
	}
	for i := range cols {
		if cols[i].length() != len(labels) {
			return nil, errors.NewLengthMismatchError("dataset.New", len(labels), cols[i].length())
		}
	}
	return &Dataset{cols: cols, labels: labels}, nil
}

// NumRecords returns the number of records.
func (d *Dataset) NumRecords() int {
	return len(d.labels)
}

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int {
	return len(d.cols)
}

// FeatureNames returns the feature column names in schema order.
func (d *Dataset) FeatureNames() []string {
	names := make([]string, len(d.cols))
	for i := range d.cols {
		names[i] = d.cols[i].Name
	}
	return names
}

// Kind returns the kind of feature column j.
func (d *Dataset) Kind(j int) FeatureKind {
	return d.cols[j].Kind
}

// Column returns feature column j.
func (d *Dataset) Column(j int) Column {
	return d.cols[j]
}

// LabelName returns the name of the label column, when loaded from a file.
func (d *Dataset) LabelName() string {
	return d.labelName
}

// Labels returns a copy of the label values.
func (d *Dataset) Labels() []float64 {
	out := make([]float64, len(d.labels))
	copy(out, d.labels)
	return out
}

// LabelMatrix returns the labels as an n×1 matrix, the shape estimators
// take.
func (d *Dataset) LabelMatrix() *mat.Dense {
	return mat.NewDense(len(d.labels), 1, d.Labels())
}

// ClassNames returns the class decoding table for string-labeled datasets:
// class code i corresponds to ClassNames()[i]. Nil when the label column
// was numeric.
func (d *Dataset) ClassNames() []string {
	return d.classNames
}

// Select returns a new Dataset holding copies of the records at the given
// indices, in the given order. The copy shares nothing with the receiver,
// so partitions handed to concurrent workers are independent.
func (d *Dataset) Select(indices []int) *Dataset {
	cols := make([]Column, len(d.cols))
	for j := range d.cols {
		cols[j] = Column{Name: d.cols[j].Name, Kind: d.cols[j].Kind}
		if d.cols[j].Kind == Categorical {
			cols[j].Values = make([]string, len(indices))
			for i, idx := range indices {
				cols[j].Values[i] = d.cols[j].Values[idx]
			}
		} else {
			cols[j].Numeric = make([]float64, len(indices))
			for i, idx := range indices {
				cols[j].Numeric[i] = d.cols[j].Numeric[idx]
			}
		}
	}
	labels := make([]float64, len(indices))
	for i, idx := range indices {
		labels[i] = d.labels[idx]
	}
	return &Dataset{
		cols:       cols,
		labels:     labels,
		labelName:  d.labelName,
		classNames: d.classNames,
	}
}

// NumericMatrix returns the features as an n×p matrix. It fails with a
// ValueError if any column is categorical; encode those first (see the
// preprocessing package).
func (d *Dataset) NumericMatrix() (*mat.Dense, error) {
	n := d.NumRecords()
	p := d.NumFeatures()
	out := mat.NewDense(n, p, nil)
	for j := range d.cols {
		if d.cols[j].Kind == Categorical {
			return nil, errors.NewValueError("Dataset.NumericMatrix",
				"column '"+d.cols[j].Name+"' is categorical and must be encoded first")
		}
		for i := 0; i < n; i++ {
			out.Set(i, j, d.cols[j].Numeric[i])
		}
	}
	return out, nil
}
