package modelselection

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/core/parallel"
	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
)

// ParamGrid maps hyperparameter names to the values to try. The Cartesian
// product of the value lists is the candidate space.
type ParamGrid map[string][]interface{}

// Enumerate expands the grid into candidate parameter sets. Keys iterate
// in sorted order and the last key varies fastest, so the enumeration
// order is deterministic.
func (g ParamGrid) Enumerate() []map[string]interface{} {
	if len(g) == 0 {
		return nil
	}
	keys := make([]string, 0, len(g))
	for k := range g {
		if len(g[k]) == 0 {
			return nil
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := 1
	for _, k := range keys {
		total *= len(g[k])
	}

	candidates := make([]map[string]interface{}, 0, total)
	odometer := make([]int, len(keys))
	for {
		candidate := make(map[string]interface{}, len(keys))
		for i, k := range keys {
			candidate[k] = g[k][odometer[i]]
		}
		candidates = append(candidates, candidate)

		pos := len(keys) - 1
		for pos >= 0 {
			odometer[pos]++
			if odometer[pos] < len(g[keys[pos]]) {
				break
			}
			odometer[pos] = 0
			pos--
		}
		if pos < 0 {
			return candidates
		}
	}
}

// Sampler draws one hyperparameter value.
type Sampler interface {
	Sample(rng *rand.Rand) interface{}
}

// Choice samples uniformly from a fixed value list.
type Choice []interface{}

// Sample implements Sampler.
func (c Choice) Sample(rng *rand.Rand) interface{} {
	return c[rng.Intn(len(c))]
}

// Uniform samples a float64 uniformly from [Low, High).
type Uniform struct {
	Low, High float64
}

// Sample implements Sampler.
func (u Uniform) Sample(rng *rand.Rand) interface{} {
	return u.Low + rng.Float64()*(u.High-u.Low)
}

// IntRange samples an int uniformly from [Low, High] inclusive.
type IntRange struct {
	Low, High int
}

// Sample implements Sampler.
func (r IntRange) Sample(rng *rand.Rand) interface{} {
	return r.Low + rng.Intn(r.High-r.Low+1)
}

// ParamDistributions maps hyperparameter names to samplers for randomized
// search.
type ParamDistributions map[string]Sampler

// sample draws one candidate, keys in sorted order so a fixed seed yields
// a fixed candidate sequence.
func (d ParamDistributions) sample(rng *rand.Rand) map[string]interface{} {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	candidate := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		candidate[k] = d[k].Sample(rng)
	}
	return candidate
}

// CandidateResult records one evaluated configuration. A failed candidate
// carries the error and the scorer's worst-possible sentinel as its mean.
type CandidateResult struct {
	Params    map[string]interface{}
	Scores    []float64
	MeanScore float64
	StdScore  float64
	Err       error
}

// SearchResult is the outcome of a hyperparameter search.
type SearchResult struct {
	BestParams map[string]interface{}
	BestScore  float64
	BestIndex  int
	BestModel  Estimator
	Candidates []CandidateResult
	Scoring    string
}

// GridSearchCV evaluates every grid candidate with cross validation and
// refits the best configuration on all of X, y. newEstimator must return
// a fresh estimator each call; candidates configure it through SetParams.
//
// Candidates are evaluated in parallel over read-only data. Ties on the
// mean score go to the earlier candidate in enumeration order, so the
// winner does not depend on scheduling. A candidate whose fit fails (error
// or panic) is recorded with the worst-possible score and the search
// continues; the search fails only when every candidate does.
func GridSearchCV(newEstimator func() SearchEstimator, grid ParamGrid,
	X, y mat.Matrix, splitter Splitter, scorer *Scorer) (*SearchResult, error) {

	candidates := grid.Enumerate()
	if len(candidates) == 0 {
		return nil, errors.NewEmptyConfigSpaceError("GridSearchCV")
	}
	return runSearch("GridSearchCV", newEstimator, candidates, X, y, splitter, scorer)
}

// RandomizedSearchCV draws nIter candidates from the distributions
// (duplicates allowed) and evaluates them like GridSearchCV.
func RandomizedSearchCV(newEstimator func() SearchEstimator, dists ParamDistributions,
	nIter int, seed int64, X, y mat.Matrix, splitter Splitter, scorer *Scorer) (*SearchResult, error) {

	if len(dists) == 0 || nIter <= 0 {
		return nil, errors.NewEmptyConfigSpaceError("RandomizedSearchCV")
	}

	rng := rand.New(rand.NewSource(seed))
	candidates := make([]map[string]interface{}, nIter)
	for i := range candidates {
		candidates[i] = dists.sample(rng)
	}
	return runSearch("RandomizedSearchCV", newEstimator, candidates, X, y, splitter, scorer)
}

func runSearch(op string, newEstimator func() SearchEstimator,
	candidates []map[string]interface{}, X, y mat.Matrix,
	splitter Splitter, scorer *Scorer) (*SearchResult, error) {

	// Folds are computed once so every candidate sees the same partitions.
	folds, err := splitter.Split(X, y)
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("modelselection")
	logger.Info("starting search",
		log.OperationKey, op,
		log.CandidatesKey, len(candidates),
		log.FoldsKey, len(folds),
		log.ScoringKey, scorer.Name(),
	)

	results := make([]CandidateResult, len(candidates))
	parallel.ParallelizeWorkers(len(candidates), 0, func(start, end int) {
		for c := start; c < end; c++ {
			results[c] = evaluateCandidate(newEstimator, candidates[c], folds, X, y, scorer)
		}
	})

	// Sequential argmax over candidate-indexed results: completion order
	// cannot change the winner.
	best := -1
	for c := range results {
		if results[c].Err != nil {
			logger.Warn("candidate failed",
				log.CandidateKey, c,
				"error", results[c].Err,
			)
			continue
		}
		if best < 0 || scorer.Better(results[c].MeanScore, results[best].MeanScore) {
			best = c
		}
	}
	if best < 0 {
		return nil, errors.Wrapf(results[0].Err, "%s: all candidates failed", op)
	}

	// Refit the winner on the full data.
	bestModel := newEstimator()
	if err := bestModel.SetParams(results[best].Params); err != nil {
		return nil, errors.Wrapf(err, "%s: refit", op)
	}
	if err := bestModel.Fit(X, y); err != nil {
		return nil, errors.Wrapf(err, "%s: refit", op)
	}

	logger.Info("search finished",
		log.OperationKey, op,
		log.CandidateKey, best,
		log.BestScoreKey, results[best].MeanScore,
	)
	return &SearchResult{
		BestParams: results[best].Params,
		BestScore:  results[best].MeanScore,
		BestIndex:  best,
		BestModel:  bestModel,
		Candidates: results,
		Scoring:    scorer.Name(),
	}, nil
}

// evaluateCandidate cross-validates one parameter set. Panics inside an
// estimator are contained and surface as the candidate's error.
func evaluateCandidate(newEstimator func() SearchEstimator, params map[string]interface{},
	folds []Fold, X, y mat.Matrix, scorer *Scorer) CandidateResult {

	result := CandidateResult{Params: params}

	err := errors.SafeExecute("evaluate candidate", func() error {
		scores := make([]float64, len(folds))
		for i, fold := range folds {
			est := newEstimator()
			if err := est.SetParams(params); err != nil {
				return err
			}

			trainX := selectRows(X, fold.TrainIndices)
			trainY := selectRows(y, fold.TrainIndices)
			if err := est.Fit(trainX, trainY); err != nil {
				return errors.Wrapf(err, "fold %d fit", i)
			}

			score, err := scorer.Score(est, selectRows(X, fold.TestIndices), selectRows(y, fold.TestIndices))
			if err != nil {
				return errors.Wrapf(err, "fold %d score", i)
			}
			scores[i] = score
		}
		result.Scores = scores
		return nil
	})
	if err != nil {
		result.Err = err
		result.MeanScore = scorer.WorstScore()
		return result
	}

	cv := CVResult{TestScores: result.Scores}
	result.MeanScore = cv.MeanScore()
	result.StdScore = cv.StdScore()
	return result
}
