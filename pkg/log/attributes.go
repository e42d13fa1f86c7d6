// Standard attribute keys for pipeline logging. Keys follow a hierarchical naming
// convention (e.g. "model.name", "data.samples") so logs can be filtered by prefix.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "Ridge", "StandardScaler".
	ModelNameKey = "model.name"

	// ModelTypeKey is the model tag chosen by configuration: linear, polynomial, ridge, lasso.
	ModelTypeKey = "model.type"

	// OperationKey is the operation being performed: fit, predict, transform, score.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the record.
	ComponentKey = "ml.component"

	// PhaseKey is the lifecycle phase: training, validation, testing, preprocessing.
	PhaseKey = "ml.phase"

	// ExperimentKey names the experiment being run.
	ExperimentKey = "experiment.name"

	// RunIDKey identifies one pipeline or experiment run.
	RunIDKey = "run.id"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	PathKey     = "data.path"

	// TrainSamplesKey and TestSamplesKey describe a train/test split.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"

	// OutliersKey is the number of rows removed by outlier filtering.
	OutliersKey = "data.outliers_removed"
)

// Performance and metrics.
const (
	DurationMsKey = "perf.duration_ms"
	R2ScoreKey    = "metrics.r2_score"
	RMSEKey       = "metrics.rmse"
	MAEKey        = "metrics.mae"
	IterationKey  = "training.iteration"
	FoldKey       = "cv.fold"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters and configuration.
const (
	HyperParamsKey    = "model.hyperparams"
	RegularizationKey = "hyperparams.regularization"
	DegreeKey         = "hyperparams.degree"
	RandomSeedKey     = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit   = "fit"
	OperationScore = "score"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseTesting       = "testing"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorUndefinedMetric   = "UNDEFINED_METRIC"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorConfiguration     = "CONFIGURATION"
	ErrorDataFormat        = "DATA_FORMAT"
	ErrorUnsupportedModel  = "UNSUPPORTED_MODEL"
	ErrorFitFailed         = "FIT_FAILED"
)
