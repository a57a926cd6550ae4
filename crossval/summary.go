package crossval

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/YuminosukeSato/modeldiag/pkg/errors"
	"github.com/YuminosukeSato/modeldiag/pkg/log"
)

// CI95Multiplier is the z-score used for the confidence half-width.
const CI95Multiplier = 1.96

// MetricSample is one fold's value for a named metric.
type MetricSample struct {
	Metric string
	Fold   int
	Value  float64
}

// FoldSummary aggregates one metric across folds.
type FoldSummary struct {
	Metric string
	N      int
	Mean   float64
	StdDev float64
	// CI95 is the half-width: the interval is Mean ± CI95.
	CI95 float64
	Min  float64
	Max  float64
	// Degenerate is set when N == 1 and StdDev/CI95 are reported as 0.
	Degenerate bool
}

// Option configures a summarization call.
type Option func(*config)

type config struct {
	logger log.Logger
}

// WithLogger sets the logger used for debug output and warnings.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("crossval")
	}
	return c
}

// Summarize computes the FoldSummary of values, one value per fold.
func Summarize(metric string, values []float64, opts ...Option) (FoldSummary, error) {
	const op = "crossval.Summarize"
	cfg := newConfig(opts)

	n := len(values)
	if n == 0 {
		return FoldSummary{}, errors.Wrapf(errors.NewInsufficientDataError(op, 1, 0), "metric %q", metric)
	}
	if err := errors.CheckFinite(op, values); err != nil {
		return FoldSummary{}, errors.Wrapf(err, "metric %q", metric)
	}

	data := stats.Float64Data(values)
	mean, err := stats.Mean(data)
	if err != nil {
		return FoldSummary{}, errors.Wrapf(err, "metric %q", metric)
	}
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)

	s := FoldSummary{
		Metric: metric,
		N:      n,
		Mean:   mean,
		Min:    lo,
		Max:    hi,
	}

	if n == 1 {
		s.Degenerate = true
		log.Warning(cfg.logger, &errors.SingleFoldWarning{Metric: metric},
			log.AnalyzerKey, log.AnalyzerCrossValidation,
			log.MetricKey, metric,
		)
		cfg.logger.Debug("Single fold summarized", log.MetricKey, metric, log.FoldsKey, n)
		return s, nil
	}

	std, err := stats.StandardDeviationSample(data)
	if err != nil {
		return FoldSummary{}, errors.Wrapf(err, "metric %q", metric)
	}
	s.StdDev = std
	s.CI95 = CI95Multiplier * std / math.Sqrt(float64(n))

	cfg.logger.Debug("Metric summarized",
		log.MetricKey, metric,
		log.FoldsKey, n,
		"mean", s.Mean,
		"ci95", s.CI95,
	)
	return s, nil
}

// SummarizeSamples groups samples by metric and summarizes each group.
// Output order follows the first appearance of each metric; values inside a
// metric are ordered by Fold. A fold index repeated within a metric is a
// MalformedInput error.
func SummarizeSamples(samples []MetricSample, opts ...Option) ([]FoldSummary, error) {
	const op = "crossval.SummarizeSamples"
	if len(samples) == 0 {
		return nil, errors.NewInsufficientDataError(op, 1, 0)
	}

	var order []string
	groups := make(map[string][]MetricSample)
	for _, s := range samples {
		if s.Metric == "" {
			return nil, errors.NewMalformedInputError(op, "sample without metric name", s)
		}
		if _, ok := groups[s.Metric]; !ok {
			order = append(order, s.Metric)
		}
		groups[s.Metric] = append(groups[s.Metric], s)
	}

	out := make([]FoldSummary, 0, len(order))
	for _, metric := range order {
		group := groups[metric]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Fold < group[j].Fold })

		values := make([]float64, len(group))
		for i, s := range group {
			if i > 0 && group[i-1].Fold == s.Fold {
				return nil, errors.NewMalformedInputError(op, "duplicate fold for metric "+metric, s.Fold)
			}
			values[i] = s.Value
		}

		summary, err := Summarize(metric, values, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

// SummarizeFolds summarizes per-fold metric maps such as those returned by
// metrics.EvaluateMulticlass. Without explicit metric names the keys of the
// first fold are used in sorted order. Every fold must contain every metric.
func SummarizeFolds(folds []map[string]float64, metrics []string, opts ...Option) ([]FoldSummary, error) {
	const op = "crossval.SummarizeFolds"
	if len(folds) == 0 {
		return nil, errors.NewInsufficientDataError(op, 1, 0)
	}
	if len(metrics) == 0 {
		metrics = make([]string, 0, len(folds[0]))
		for name := range folds[0] {
			metrics = append(metrics, name)
		}
		sort.Strings(metrics)
	}

	samples := make([]MetricSample, 0, len(folds)*len(metrics))
	for _, metric := range metrics {
		for i, fold := range folds {
			v, ok := fold[metric]
			if !ok {
				return nil, errors.NewMalformedInputError(op, "fold is missing metric "+metric, i)
			}
			samples = append(samples, MetricSample{Metric: metric, Fold: i, Value: v})
		}
	}
	return SummarizeSamples(samples, opts...)
}
