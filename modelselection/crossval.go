package modelselection

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
)

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// CVResult holds the per-fold scores of one cross-validated evaluation.
type CVResult struct {
	TestScores  []float64
	TrainScores []float64
}

// MeanScore returns the mean test score.
func (cv *CVResult) MeanScore() float64 {
	if len(cv.TestScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range cv.TestScores {
		sum += s
	}
	return sum / float64(len(cv.TestScores))
}

// StdScore returns the sample standard deviation of the test scores.
func (cv *CVResult) StdScore() float64 {
	if len(cv.TestScores) <= 1 {
		return 0
	}
	mean := cv.MeanScore()
	sumSq := 0.0
	for _, s := range cv.TestScores {
		sumSq += (s - mean) * (s - mean)
	}
	return math.Sqrt(sumSq / float64(len(cv.TestScores)-1))
}

// CrossValidate evaluates the estimators produced by newEstimator with
// k-fold cross validation: one fresh estimator per fold, fitted on the
// fold's training rows and scored on both sides. Folds run concurrently;
// they only read X and y.
func CrossValidate(newEstimator func() Estimator, X, y mat.Matrix,
	splitter Splitter, scorer *Scorer) (*CVResult, error) {

	folds, err := splitter.Split(X, y)
	if err != nil {
		return nil, err
	}
	nFolds := len(folds)

	result := &CVResult{
		TestScores:  make([]float64, nFolds),
		TrainScores: make([]float64, nFolds),
	}
	errs := make([]error, nFolds)

	var wg sync.WaitGroup
	for foldIdx := range folds {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			fold := folds[idx]

			trainX := selectRows(X, fold.TrainIndices)
			trainY := selectRows(y, fold.TrainIndices)
			testX := selectRows(X, fold.TestIndices)
			testY := selectRows(y, fold.TestIndices)

			est := newEstimator()
			if err := est.Fit(trainX, trainY); err != nil {
				errs[idx] = errors.Wrapf(err, "fold %d fit", idx)
				return
			}

			trainScore, err := scorer.Score(est, trainX, trainY)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "fold %d train score", idx)
				return
			}
			testScore, err := scorer.Score(est, testX, testY)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "fold %d test score", idx)
				return
			}

			result.TrainScores[idx] = trainScore
			result.TestScores[idx] = testScore
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	log.GetLoggerWithName("modelselection").Debug("cross validation finished",
		log.FoldsKey, nFolds,
		log.ScoringKey, scorer.Name(),
		log.ScoreKey, result.MeanScore(),
	)
	return result, nil
}
