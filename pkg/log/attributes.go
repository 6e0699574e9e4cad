package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator or transformer type.
	// Examples: "LinearRegression", "StandardScaler", "RandomForestClassifier"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score", "search"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "linear", "preprocessing", "modelselection"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of records (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns) being processed.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct label classes.
	ClassesKey = "data.classes"
)

// Cross-validation and search context.
const (
	// FoldKey is the index of the current cross-validation fold.
	FoldKey = "cv.fold"

	// FoldsKey is the total number of folds.
	FoldsKey = "cv.folds"

	// CandidateKey is the index of a candidate configuration in
	// enumeration order.
	CandidateKey = "search.candidate"

	// CandidatesKey is the total number of candidate configurations.
	CandidatesKey = "search.candidates"

	// BestScoreKey is the best mean cross-validated score seen so far.
	BestScoreKey = "search.best_score"

	// ScoringKey names the metric a search optimizes.
	ScoringKey = "search.scoring"
)

// Performance and results.
const (
	// DurationMsKey is the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ScoreKey records a scalar evaluation score.
	ScoreKey = "metrics.score"

	// IterationKey is the current iteration of an iterative optimizer.
	IterationKey = "training.iteration"
)
