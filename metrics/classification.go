package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

// Accuracy computes the fraction of exactly matching labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError computes 1 - accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// Precision computes tp / (tp + fp) for the given positive class.
// With no predicted positives the metric is ill-defined and reported as 0,
// with an UndefinedMetricWarning.
func Precision(yTrue, yPred *mat.VecDense, positive float64) (float64, error) {
	n, err := checkPair("Precision", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	tp, fp := 0, 0
	for i := 0; i < n; i++ {
		if yPred.AtVec(i) == positive {
			if yTrue.AtVec(i) == positive {
				tp++
			} else {
				fp++
			}
		}
	}
	if tp+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted samples of the positive class", 0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fp), nil
}

// Recall computes tp / (tp + fn) for the given positive class.
// With no true positives present the metric is ill-defined and reported as
// 0, with an UndefinedMetricWarning.
func Recall(yTrue, yPred *mat.VecDense, positive float64) (float64, error) {
	n, err := checkPair("Recall", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	tp, fn := 0, 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == positive {
			if yPred.AtVec(i) == positive {
				tp++
			} else {
				fn++
			}
		}
	}
	if tp+fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true samples of the positive class", 0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fn), nil
}

// F1Score computes the harmonic mean of precision and recall for the given
// positive class, 0 when both are 0.
func F1Score(yTrue, yPred *mat.VecDense, positive float64) (float64, error) {
	p, err := Precision(yTrue, yPred, positive)
	if err != nil {
		return 0, err
	}
	r, err := Recall(yTrue, yPred, positive)
	if err != nil {
		return 0, err
	}
	if p+r == 0 {
		return 0, nil
	}
	return 2 * p * r / (p + r), nil
}

// AUC computes the area under the ROC curve from binary labels and
// probability scores, using the rank statistic with average ranks for tied
// scores. With only one class present the value is undefined and reported
// as 0.5, with an UndefinedMetricWarning.
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	nPos := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("roc_auc", "only one class present in yTrue", 0.5))
		return 0.5, nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return yScore.AtVec(idx[a]) < yScore.AtVec(idx[b])
	})

	// Average ranks within tied score groups, then the Mann-Whitney
	// statistic over positive ranks.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && yScore.AtVec(idx[j]) == yScore.AtVec(idx[i]) {
			j++
		}
		avgRank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[idx[k]] = avgRank
		}
		i = j
	}

	var sumRanksPos float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			sumRanksPos += ranks[i]
		}
	}
	return (sumRanksPos - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg)), nil
}

// AUCMatrix computes AUC over the first column of matrix inputs.
func AUCMatrix(yTrue, yScore mat.Matrix) (float64, error) {
	trueVec, err := columnVec("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	scoreVec, err := columnVec("AUCMatrix", yScore)
	if err != nil {
		return 0, err
	}
	return AUC(trueVec, scoreVec)
}

// BinaryLogLoss computes the negative mean log likelihood of binary labels
// under predicted probabilities. Probabilities are clipped away from 0 and
// 1 to keep the logarithm finite.
func BinaryLogLoss(yTrue, yProb *mat.VecDense) (float64, error) {
	n, err := checkPair("BinaryLogLoss", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	const eps = 1e-15
	var loss float64
	for i := 0; i < n; i++ {
		p := errors.ClipValue(yProb.AtVec(i), eps, 1-eps)
		if yTrue.AtVec(i) == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	return loss / float64(n), nil
}

// ConfusionMatrix computes the count matrix over the sorted distinct labels
// of yTrue and yPred: entry (i, j) counts records with true class i and
// predicted class j. The class order is returned alongside.
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (*mat.Dense, []float64, error) {
	n, err := checkPair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[float64]struct{})
	for i := 0; i < n; i++ {
		seen[yTrue.AtVec(i)] = struct{}{}
		seen[yPred.AtVec(i)] = struct{}{}
	}
	classes := make([]float64, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Float64s(classes)

	index := make(map[float64]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	counts := mat.NewDense(len(classes), len(classes), nil)
	for i := 0; i < n; i++ {
		r := index[yTrue.AtVec(i)]
		c := index[yPred.AtVec(i)]
		counts.Set(r, c, counts.At(r, c)+1)
	}
	return counts, classes, nil
}

// checkBinary fails unless every label is 0 or 1.
func checkBinary(op string, y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError(op, "labels must be binary (0 or 1)")
		}
	}
	return nil
}
