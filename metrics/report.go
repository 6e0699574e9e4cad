package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Report maps metric names to values while remembering insertion order, so
// formatted output is stable across runs.
type Report struct {
	names  []string
	values map[string]float64
}

// NewReport returns an empty Report.
func NewReport() *Report {
	return &Report{values: make(map[string]float64)}
}

// Set records a metric value, appending the name on first use.
func (r *Report) Set(name string, value float64) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns the value for name and whether it was recorded.
func (r *Report) Get(name string) (float64, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns the metric names in insertion order.
func (r *Report) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// String renders one "name: value" line per metric.
func (r *Report) String() string {
	var b strings.Builder
	for _, name := range r.names {
		fmt.Fprintf(&b, "%s: %.6f\n", name, r.values[name])
	}
	return b.String()
}

// RegressionReport computes the standard regression metrics for a pair of
// n×1 label matrices.
func RegressionReport(yTrue, yPred mat.Matrix) (*Report, error) {
	trueVec, err := columnVec("RegressionReport", yTrue)
	if err != nil {
		return nil, err
	}
	predVec, err := columnVec("RegressionReport", yPred)
	if err != nil {
		return nil, err
	}

	report := NewReport()
	for _, m := range []struct {
		name string
		fn   func(a, b *mat.VecDense) (float64, error)
	}{
		{"mse", MSE},
		{"rmse", RMSE},
		{"mae", MAE},
		{"r2", R2Score},
	} {
		v, err := m.fn(trueVec, predVec)
		if err != nil {
			return nil, err
		}
		report.Set(m.name, v)
	}
	return report, nil
}

// ClassificationReport computes accuracy and the per-positive-class
// precision, recall and F1 for binary labels. When yScore is non-nil the
// ROC AUC and log loss over the scores are included as well.
func ClassificationReport(yTrue, yPred, yScore mat.Matrix) (*Report, error) {
	trueVec, err := columnVec("ClassificationReport", yTrue)
	if err != nil {
		return nil, err
	}
	predVec, err := columnVec("ClassificationReport", yPred)
	if err != nil {
		return nil, err
	}

	report := NewReport()
	acc, err := Accuracy(trueVec, predVec)
	if err != nil {
		return nil, err
	}
	report.Set("accuracy", acc)

	for _, positive := range distinctLabels(trueVec) {
		p, err := Precision(trueVec, predVec, positive)
		if err != nil {
			return nil, err
		}
		r, err := Recall(trueVec, predVec, positive)
		if err != nil {
			return nil, err
		}
		f1, err := F1Score(trueVec, predVec, positive)
		if err != nil {
			return nil, err
		}
		label := formatLabel(positive)
		report.Set("precision_"+label, p)
		report.Set("recall_"+label, r)
		report.Set("f1_"+label, f1)
	}

	if yScore != nil {
		scoreVec, err := columnVec("ClassificationReport", yScore)
		if err != nil {
			return nil, err
		}
		auc, err := AUC(trueVec, scoreVec)
		if err != nil {
			return nil, err
		}
		report.Set("roc_auc", auc)

		logLoss, err := BinaryLogLoss(trueVec, scoreVec)
		if err != nil {
			return nil, err
		}
		report.Set("log_loss", logLoss)
	}
	return report, nil
}

func distinctLabels(y *mat.VecDense) []float64 {
	seen := make(map[float64]struct{})
	for i := 0; i < y.Len(); i++ {
		seen[y.AtVec(i)] = struct{}{}
	}
	labels := make([]float64, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Float64s(labels)
	return labels
}

func formatLabel(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e9 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
