package ensemble

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/evalgo-ml/evalgo/core/model"
	"github.com/evalgo-ml/evalgo/pkg/errors"
	"github.com/evalgo-ml/evalgo/pkg/log"
	"github.com/evalgo-ml/evalgo/tree"
)

// boostConfig carries the shared boosting hyperparameters.
type boostConfig struct {
	nStages      int
	learningRate float64
	maxDepth     int
}

// BoostOption configures a gradient boosting machine.
type BoostOption func(*boostConfig)

// WithStages sets the number of boosting stages.
func WithStages(n int) BoostOption {
	return func(c *boostConfig) {
		c.nStages = n
	}
}

// WithLearningRate sets the shrinkage applied to each stage.
func WithLearningRate(rate float64) BoostOption {
	return func(c *boostConfig) {
		c.learningRate = rate
	}
}

// WithBoostMaxDepth limits the depth of each stage tree.
func WithBoostMaxDepth(depth int) BoostOption {
	return func(c *boostConfig) {
		c.maxDepth = depth
	}
}

func defaultBoostConfig() boostConfig {
	return boostConfig{nStages: 100, learningRate: 0.1, maxDepth: 3}
}

func (c boostConfig) validate(op string) error {
	if c.nStages <= 0 {
		return errors.NewValueError(op, "stages must be positive")
	}
	if c.learningRate <= 0 {
		return errors.NewValueError(op, "learning rate must be positive")
	}
	return nil
}

// GradientBoostingRegressor fits shallow regression trees to the residuals
// of the running prediction, shrunk by the learning rate. Stages are
// sequential because each consumes the previous stage's residuals.
type GradientBoostingRegressor struct {
	model.BaseEstimator

	cfg boostConfig

	init      float64
	stages    []*tree.DecisionTreeRegressor
	NFeatures int
}

// NewGradientBoostingRegressor returns a GBM with 100 stages, learning
// rate 0.1 and depth-3 trees.
func NewGradientBoostingRegressor(opts ...BoostOption) *GradientBoostingRegressor {
	gb := &GradientBoostingRegressor{cfg: defaultBoostConfig()}
	for _, opt := range opts {
		opt(&gb.cfg)
	}
	return gb
}

// Fit trains the boosting stages on the training data.
func (gb *GradientBoostingRegressor) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewEmptyDatasetError("GradientBoostingRegressor.Fit")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewValueError("GradientBoostingRegressor.Fit", "y must be a column vector")
	}
	if yRows != nSamples {
		return errors.NewLengthMismatchError("GradientBoostingRegressor.Fit", nSamples, yRows)
	}
	if err := gb.cfg.validate("GradientBoostingRegressor.Fit"); err != nil {
		return err
	}
	gb.NFeatures = nFeatures

	// Stage zero is the label mean.
	var init float64
	for i := 0; i < nSamples; i++ {
		init += y.At(i, 0)
	}
	gb.init = init / float64(nSamples)

	current := make([]float64, nSamples)
	for i := range current {
		current[i] = gb.init
	}

	gb.stages = make([]*tree.DecisionTreeRegressor, 0, gb.cfg.nStages)
	residuals := mat.NewDense(nSamples, 1, nil)
	for stage := 0; stage < gb.cfg.nStages; stage++ {
		for i := 0; i < nSamples; i++ {
			residuals.Set(i, 0, y.At(i, 0)-current[i])
		}

		stump := tree.NewDecisionTreeRegressor(tree.WithMaxDepth(gb.cfg.maxDepth))
		if err := stump.Fit(X, residuals); err != nil {
			return errors.Wrap(err, "GradientBoostingRegressor.Fit")
		}
		gb.stages = append(gb.stages, stump)

		update, err := stump.Predict(X)
		if err != nil {
			return errors.Wrap(err, "GradientBoostingRegressor.Fit")
		}
		for i := 0; i < nSamples; i++ {
			current[i] += gb.cfg.learningRate * update.At(i, 0)
		}
	}

	gb.SetFitted()
	log.GetLoggerWithName("ensemble").Debug("fitted gradient boosting regressor",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
	)
	return nil
}

// Predict returns an n×1 matrix summing the shrunk stage predictions on
// top of the initial mean.
func (gb *GradientBoostingRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gb.IsFitted() {
		return nil, errors.NewNotFittedError("GradientBoostingRegressor", "Predict")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != gb.NFeatures {
		return nil, errors.NewDimensionError("GradientBoostingRegressor.Predict", gb.NFeatures, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		out.Set(i, 0, gb.init)
	}
	for _, stage := range gb.stages {
		update, err := stage.Predict(X)
		if err != nil {
			return nil, err
		}
		for i := 0; i < nSamples; i++ {
			out.Set(i, 0, out.At(i, 0)+gb.cfg.learningRate*update.At(i, 0))
		}
	}
	return out, nil
}

// Score returns the coefficient of determination on the given data.
func (gb *GradientBoostingRegressor) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := gb.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := y.Dims()

	var yMean float64
	for i := 0; i < nSamples; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(nSamples)

	var rss, tss float64
	for i := 0; i < nSamples; i++ {
		yTrue := y.At(i, 0)
		rss += (yTrue - yPred.At(i, 0)) * (yTrue - yPred.At(i, 0))
		tss += (yTrue - yMean) * (yTrue - yMean)
	}
	if tss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("r2", "zero variance in y", 0))
		return 0, nil
	}
	return 1 - rss/tss, nil
}

// GetParams reports the configuration in sklearn-style keys.
func (gb *GradientBoostingRegressor) GetParams() map[string]interface{} {
	return gb.cfg.getParams()
}

// SetParams updates the configuration from sklearn-style keys.
func (gb *GradientBoostingRegressor) SetParams(params map[string]interface{}) error {
	return gb.cfg.setParams("GradientBoostingRegressor.SetParams", params)
}

// GradientBoostingClassifier boosts regression trees on the logistic loss
// gradient for binary labels, predicting through the sigmoid of the
// accumulated raw score.
type GradientBoostingClassifier struct {
	model.BaseEstimator

	cfg boostConfig

	init      float64 // log-odds of the positive class
	stages    []*tree.DecisionTreeRegressor
	Classes_  []float64
	NFeatures int
}

// NewGradientBoostingClassifier returns a GBM with 100 stages, learning
// rate 0.1 and depth-3 trees.
func NewGradientBoostingClassifier(opts ...BoostOption) *GradientBoostingClassifier {
	gb := &GradientBoostingClassifier{cfg: defaultBoostConfig()}
	for _, opt := range opts {
		opt(&gb.cfg)
	}
	return gb
}

// Fit trains the boosting stages. y must contain exactly two distinct
// label values; they are mapped onto {0, 1} in sorted order.
func (gb *GradientBoostingClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewEmptyDatasetError("GradientBoostingClassifier.Fit")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewValueError("GradientBoostingClassifier.Fit", "y must be a column vector")
	}
	if yRows != nSamples {
		return errors.NewLengthMismatchError("GradientBoostingClassifier.Fit", nSamples, yRows)
	}
	if err := gb.cfg.validate("GradientBoostingClassifier.Fit"); err != nil {
		return err
	}
	gb.NFeatures = nFeatures

	seen := make(map[float64]struct{})
	for i := 0; i < nSamples; i++ {
		seen[y.At(i, 0)] = struct{}{}
	}
	if len(seen) != 2 {
		return errors.NewValueError("GradientBoostingClassifier.Fit", "exactly two classes required")
	}
	gb.Classes_ = make([]float64, 0, 2)
	for c := range seen {
		gb.Classes_ = append(gb.Classes_, c)
	}
	sort.Float64s(gb.Classes_)

	target := make([]float64, nSamples)
	nPos := 0
	for i := 0; i < nSamples; i++ {
		if y.At(i, 0) == gb.Classes_[1] {
			target[i] = 1
			nPos++
		}
	}

	// Stage zero is the stabilized log-odds of the base rate.
	base := float64(nPos) / float64(nSamples)
	gb.init = errors.StabilizeLog(base) - errors.StabilizeLog(1-base)

	raw := make([]float64, nSamples)
	for i := range raw {
		raw[i] = gb.init
	}

	gb.stages = make([]*tree.DecisionTreeRegressor, 0, gb.cfg.nStages)
	gradient := mat.NewDense(nSamples, 1, nil)
	for stage := 0; stage < gb.cfg.nStages; stage++ {
		for i := 0; i < nSamples; i++ {
			gradient.Set(i, 0, target[i]-errors.Sigmoid(raw[i]))
		}

		stump := tree.NewDecisionTreeRegressor(tree.WithMaxDepth(gb.cfg.maxDepth))
		if err := stump.Fit(X, gradient); err != nil {
			return errors.Wrap(err, "GradientBoostingClassifier.Fit")
		}
		gb.stages = append(gb.stages, stump)

		update, err := stump.Predict(X)
		if err != nil {
			return errors.Wrap(err, "GradientBoostingClassifier.Fit")
		}
		for i := 0; i < nSamples; i++ {
			raw[i] += gb.cfg.learningRate * update.At(i, 0)
		}
	}

	gb.SetFitted()
	log.GetLoggerWithName("ensemble").Debug("fitted gradient boosting classifier",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
	)
	return nil
}

func (gb *GradientBoostingClassifier) rawScores(X mat.Matrix) ([]float64, error) {
	nSamples, _ := X.Dims()
	raw := make([]float64, nSamples)
	for i := range raw {
		raw[i] = gb.init
	}
	for _, stage := range gb.stages {
		update, err := stage.Predict(X)
		if err != nil {
			return nil, err
		}
		for i := 0; i < nSamples; i++ {
			raw[i] += gb.cfg.learningRate * update.At(i, 0)
		}
	}
	return raw, nil
}

// PredictProba returns an n×2 matrix of class probabilities, columns in
// Classes() order.
func (gb *GradientBoostingClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !gb.IsFitted() {
		return nil, errors.NewNotFittedError("GradientBoostingClassifier", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != gb.NFeatures {
		return nil, errors.NewDimensionError("GradientBoostingClassifier.PredictProba", gb.NFeatures, nFeatures, 1)
	}

	raw, err := gb.rawScores(X)
	if err != nil {
		return nil, err
	}
	probs := mat.NewDense(nSamples, 2, nil)
	for i, z := range raw {
		p := errors.Sigmoid(z)
		probs.Set(i, 0, 1-p)
		probs.Set(i, 1, p)
	}
	return probs, nil
}

// Predict returns an n×1 matrix of predicted class labels.
func (gb *GradientBoostingClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	probs, err := gb.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := probs.Dims()
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if probs.At(i, 1) >= 0.5 {
			out.Set(i, 0, gb.Classes_[1])
		} else {
			out.Set(i, 0, gb.Classes_[0])
		}
	}
	return out, nil
}

// Classes returns the sorted class labels seen during fit.
func (gb *GradientBoostingClassifier) Classes() []float64 {
	out := make([]float64, len(gb.Classes_))
	copy(out, gb.Classes_)
	return out
}

// Score returns the accuracy on the given data.
func (gb *GradientBoostingClassifier) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := gb.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := y.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if y.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// GetParams reports the configuration in sklearn-style keys.
func (gb *GradientBoostingClassifier) GetParams() map[string]interface{} {
	return gb.cfg.getParams()
}

// SetParams updates the configuration from sklearn-style keys.
func (gb *GradientBoostingClassifier) SetParams(params map[string]interface{}) error {
	return gb.cfg.setParams("GradientBoostingClassifier.SetParams", params)
}

func (c boostConfig) getParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":  c.nStages,
		"learning_rate": c.learningRate,
		"max_depth":     c.maxDepth,
	}
}

func (c *boostConfig) setParams(op string, params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError(op, "n_estimators must be an int")
			}
			c.nStages = v
		case "learning_rate":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValueError(op, "learning_rate must be a float64")
			}
			c.learningRate = v
		case "max_depth":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError(op, "max_depth must be an int")
			}
			c.maxDepth = v
		default:
			return errors.NewValueError(op, "unknown parameter "+key)
		}
	}
	return nil
}
