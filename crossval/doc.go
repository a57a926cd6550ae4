// Package crossval summarizes cross-validation metrics across folds.
//
// For every metric it reports the mean, the sample standard deviation (n-1
// denominator) and the half-width of a 95% normal-approximation confidence
// interval, 1.96 * stddev / sqrt(n):
//
//	summaries, err := crossval.SummarizeFolds(foldMetrics, metrics.MulticlassMetricNames)
//
// A metric with a single fold is reported with stddev and ci95 of 0 and
// Degenerate set. A metric with no folds is an InsufficientData error.
package crossval
