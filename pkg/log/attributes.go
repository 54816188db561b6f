// Package log defines standard attribute keys for pipeline operations.
//
// The keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model or transformer.
	// Examples: "LogisticRegression", "StandardScaler", "SMOTE"
	ModelNameKey = "model.name"

	// RunIDKey identifies one pipeline run; it is also stored in the model artifact.
	RunIDKey = "run.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which stage is logging.
	// Examples: "source", "preprocessing", "training", "evaluation", "persistence"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the run.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// ColumnKey names a single column of the record table.
	ColumnKey = "data.column"

	// PositivesKey counts rows of the positive (defaulted) class.
	PositivesKey = "data.positives"

	// TableKey names the source table.
	TableKey = "data.table"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records accuracy at the configured threshold.
	AccuracyKey = "metrics.accuracy"

	// AUCKey records the area under the ROC curve.
	AUCKey = "metrics.roc_auc"

	// LossKey records loss value during training or evaluation.
	LossKey = "metrics.loss"

	// IterationKey records the number of optimizer iterations.
	IterationKey = "training.iteration"
)

// Prediction and Output Context
const (
	// ThresholdKey records the decision threshold used for classification.
	ThresholdKey = "preds.threshold"

	// PathKey records a filesystem path written by the run.
	PathKey = "output.path"
)

// Error and Warning Context
const (
	// ErrorKey carries the error value itself.
	ErrorKey = "error"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters and Configuration
const (
	// RegularizationKey records the inverse regularization strength C.
	RegularizationKey = "hyperparams.C"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// RebalanceKey records whether SMOTE rebalancing was applied.
	RebalanceKey = "config.rebalance"
)

// Standard attribute value constants.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
	OperationLoad      = "load"
	OperationSave      = "save"

	PhaseExtract       = "extract"
	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseEvaluation    = "evaluation"
	PhasePersistence   = "persistence"
)
