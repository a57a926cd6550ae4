// Package modeldiag reports whether a trained model and its feature set can
// be trusted or simplified. It runs three independent diagnostics over data
// that a training collaborator has already produced:
//
//   - cross-validation summary: mean, sample standard deviation and 95%
//     confidence half-width of each metric across folds
//   - permutation importance: encoded inputs ("Sex.male", "Sex.female") are
//     folded back into their source feature, ranked, and low-impact features
//     are flagged as removal candidates
//   - correlation: the Pearson matrix of the numeric features, banded for
//     display, with highly correlated pairs flagged
//
// Nothing here trains a model or reads files. Every analyzer is a pure,
// synchronous function of its input and is safe for concurrent use.
//
// # Quick Start
//
//	suite := diagnostics.NewSuite()
//	report, err := suite.Run(ctx, diagnostics.Input{
//	    Folds:      folds,      // []map[string]float64 from metrics.EvaluateMulticlass
//	    Importance: pfi,        // map[string]importance.Statistics
//	    Table:      &table,     // dataset.FeatureTable
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report.Render(os.Stdout)
//
// # Packages
//
//   - crossval: per-metric fold summaries
//   - importance: permutation importance aggregation and ranking
//   - correlation: correlation matrix, bands, flagged pairs, heatmap
//   - report: fixed-width console tables
//   - diagnostics: runs the analyzers together with failure isolation
//   - metrics: multiclass and regression metrics per fold
//   - dataset: schema, feature tables and feature keys
//   - preprocessing: StandardScaler and OneHotEncoder
//   - core/parallel: parallel loops for wide tables
//   - pkg/errors, pkg/log: error types and structured logging
//
// # Errors
//
// Failures are typed and matched with errors.Is against
// errors.ErrInsufficientData, errors.ErrDegenerateVariance and
// errors.ErrMalformedInput from pkg/errors. No analyzer returns a partial
// result together with an error.
package modeldiag
