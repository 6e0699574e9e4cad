package modelselection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/metrics"
	"github.com/evalgo-ml/evalgo/pkg/errors"
)

// Estimator is the minimal contract cross validation and search need.
type Estimator interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// ProbabilityEstimator is implemented by classifiers that expose class
// probabilities; probability-based scorers require it.
type ProbabilityEstimator interface {
	Estimator
	PredictProba(X mat.Matrix) (mat.Matrix, error)
	Classes() []float64
}

// SearchEstimator adds the parameter surface hyperparameter search drives.
type SearchEstimator interface {
	Estimator
	SetParams(params map[string]interface{}) error
	GetParams() map[string]interface{}
}

// Scorer evaluates a fitted estimator on held-out data. GreaterIsBetter
// tells the search which direction to optimize.
type Scorer struct {
	name    string
	greater bool
	score   func(est Estimator, X, y mat.Matrix) (float64, error)
}

// Name returns the metric name the scorer was built from.
func (s *Scorer) Name() string {
	return s.name
}

// GreaterIsBetter reports whether larger scores are better.
func (s *Scorer) GreaterIsBetter() bool {
	return s.greater
}

// Score fits nothing; it evaluates the already-fitted estimator.
func (s *Scorer) Score(est Estimator, X, y mat.Matrix) (float64, error) {
	return s.score(est, X, y)
}

// WorstScore returns the sentinel recorded for failed candidates,
// infinitely bad in the scorer's direction.
func (s *Scorer) WorstScore() float64 {
	if s.greater {
		return negInf
	}
	return posInf
}

// Better reports whether a improves on b under this scorer.
func (s *Scorer) Better(a, b float64) bool {
	if s.greater {
		return a > b
	}
	return a < b
}

// MakeScorer builds a Scorer from a metric name. Regression names: "mse",
// "rmse", "mae", "r2". Classification names: "accuracy", "precision",
// "recall", "f1" (positive class 1), "roc_auc" and "log_loss" (these two
// need a ProbabilityEstimator).
func MakeScorer(name string) (*Scorer, error) {
	switch name {
	case "mse":
		return predictionScorer(name, false, metrics.MSE), nil
	case "rmse":
		return predictionScorer(name, false, metrics.RMSE), nil
	case "mae":
		return predictionScorer(name, false, metrics.MAE), nil
	case "r2":
		return predictionScorer(name, true, metrics.R2Score), nil
	case "accuracy":
		return predictionScorer(name, true, metrics.Accuracy), nil
	case "precision":
		return predictionScorer(name, true, func(yTrue, yPred *mat.VecDense) (float64, error) {
			return metrics.Precision(yTrue, yPred, 1)
		}), nil
	case "recall":
		return predictionScorer(name, true, func(yTrue, yPred *mat.VecDense) (float64, error) {
			return metrics.Recall(yTrue, yPred, 1)
		}), nil
	case "f1":
		return predictionScorer(name, true, func(yTrue, yPred *mat.VecDense) (float64, error) {
			return metrics.F1Score(yTrue, yPred, 1)
		}), nil
	case "roc_auc":
		return probabilityScorer(name, true, metrics.AUC), nil
	case "log_loss":
		return probabilityScorer(name, false, metrics.BinaryLogLoss), nil
	default:
		return nil, errors.NewValueError("MakeScorer", "unknown metric "+name)
	}
}

func predictionScorer(name string, greater bool, metric func(yTrue, yPred *mat.VecDense) (float64, error)) *Scorer {
	return &Scorer{
		name:    name,
		greater: greater,
		score: func(est Estimator, X, y mat.Matrix) (float64, error) {
			yPred, err := est.Predict(X)
			if err != nil {
				return 0, err
			}
			return metric(firstColumn(y), firstColumn(yPred))
		},
	}
}

// probabilityScorer scores the probability column of the largest class
// label, the conventional positive class.
func probabilityScorer(name string, greater bool, metric func(yTrue, yScore *mat.VecDense) (float64, error)) *Scorer {
	return &Scorer{
		name:    name,
		greater: greater,
		score: func(est Estimator, X, y mat.Matrix) (float64, error) {
			clf, ok := est.(ProbabilityEstimator)
			if !ok {
				return 0, errors.NewValueError("Scorer."+name, "estimator does not expose probabilities")
			}
			probs, err := clf.PredictProba(X)
			if err != nil {
				return 0, err
			}
			classes := clf.Classes()
			positive := len(classes) - 1

			nSamples, _ := probs.Dims()
			score := mat.NewVecDense(nSamples, nil)
			target := mat.NewVecDense(nSamples, nil)
			for i := 0; i < nSamples; i++ {
				score.SetVec(i, probs.At(i, positive))
				if y.At(i, 0) == classes[positive] {
					target.SetVec(i, 1)
				}
			}
			return metric(target, score)
		},
	}
}

func firstColumn(m mat.Matrix) *mat.VecDense {
	rows, _ := m.Dims()
	v := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
