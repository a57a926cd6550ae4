// Package log defines standard attribute keys for diagnostics operations.
//
// Keys follow a hierarchical naming convention (e.g. "diag.analyzer",
// "data.features") so records from all analyzers can be filtered the same way.

package log

// Analyzer context
const (
	// AnalyzerKey identifies which analyzer produced the record.
	// Standard values are the Analyzer* constants below.
	AnalyzerKey = "diag.analyzer"

	// ComponentKey identifies the package emitting the record.
	ComponentKey = "diag.component"

	// ThresholdKey records the threshold used for flagging.
	ThresholdKey = "diag.threshold"

	// FlaggedKey records how many items were flagged (removal candidates or
	// collinear pairs).
	FlaggedKey = "diag.flagged"

	// MetricKey names the metric being summarized, e.g. "MicroAccuracy".
	MetricKey = "diag.metric"

	// FeatureKey names a single feature.
	FeatureKey = "diag.feature"
)

// Data shape
const (
	// SamplesKey indicates the number of rows or folds.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// FoldsKey indicates the number of cross-validation folds.
	FoldsKey = "data.folds"

	// EntriesKey indicates the number of raw permutation-importance entries.
	EntriesKey = "data.entries"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// WorkersKey records the number of goroutines used.
	WorkersKey = "perf.workers"
)

// Error context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey names the warning or error type, e.g. "SingleFoldWarning".
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	AnalyzerCrossValidation = "crossval"
	AnalyzerImportance      = "importance"
	AnalyzerCorrelation     = "correlation"

	ErrorInsufficientData   = "INSUFFICIENT_DATA"
	ErrorDegenerateVariance = "DEGENERATE_VARIANCE"
	ErrorMalformedInput     = "MALFORMED_INPUT"
	ErrorPanic              = "PANIC"
)
