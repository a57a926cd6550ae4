// Package importance aggregates permutation feature importance results.
//
// Permutation importance is computed per model input. Encoded inputs such as
// one-hot levels ("Pclass.1", "Pclass.2") are collapsed under their source
// column by summing both the mean metric change and the standard error.
// The aggregated features are ranked by ascending mean, and features whose
// absolute mean falls below a threshold are flagged as removal candidates.
package importance

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/modeldiag/dataset"
	"github.com/YuminosukeSato/modeldiag/pkg/errors"
	"github.com/YuminosukeSato/modeldiag/pkg/log"
)

const (
	// IntervalMultiplier scales the summed standard error into the reported
	// interval half-width. It is 1.95, not the 1.96 used by crossval.
	IntervalMultiplier = 1.95

	// DefaultThreshold is the removal-candidate threshold on |mean|.
	DefaultThreshold = 0.01
)

// Statistics is the permutation result of one model input.
type Statistics struct {
	Mean          float64
	StandardError float64
}

// Entry is a permutation result keyed by an explicit feature key.
type Entry struct {
	Key dataset.FeatureKey
	Statistics
}

// Aggregated is the importance of one source feature.
type Aggregated struct {
	// Rank is 1-based, ascending by Mean.
	Rank    int
	Feature string
	// Mean and StandardError are sums over all variants of Feature.
	Mean          float64
	StandardError float64
	// Interval is IntervalMultiplier * StandardError.
	Interval float64
	// Variants is the number of entries folded into this feature.
	Variants         int
	RemovalCandidate bool
}

// Option configures Aggregate.
type Option func(*config)

type config struct {
	threshold float64
	logger    log.Logger
}

// WithThreshold sets the removal-candidate threshold. It must be >= 0.
func WithThreshold(threshold float64) Option {
	return func(c *config) {
		c.threshold = threshold
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) (*config, error) {
	c := &config{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(c)
	}
	if err := errors.CheckScalar("importance.Aggregate", c.threshold); err != nil {
		return nil, err
	}
	if c.threshold < 0 {
		return nil, errors.NewMalformedInputError("importance.Aggregate", "threshold must be >= 0", c.threshold)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("importance")
	}
	return c, nil
}

// Aggregate groups entries by Key.Base, sums their statistics, ranks the
// groups by ascending mean and flags removal candidates. Entries are summed
// in the order given.
func Aggregate(entries []Entry, opts ...Option) ([]Aggregated, error) {
	const op = "importance.Aggregate"
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var groups []Aggregated
	for _, e := range entries {
		if e.Key.Base == "" {
			return nil, errors.NewMalformedInputError(op, "entry has no base feature", e.Key.String())
		}
		if err := errors.CheckFinite(op+"."+e.Key.String(), []float64{e.Mean, e.StandardError}); err != nil {
			return nil, err
		}

		i, ok := index[e.Key.Base]
		if !ok {
			i = len(groups)
			index[e.Key.Base] = i
			groups = append(groups, Aggregated{Feature: e.Key.Base})
		}
		groups[i].Mean += e.Mean
		groups[i].StandardError += e.StandardError
		groups[i].Variants++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Mean != groups[j].Mean {
			return groups[i].Mean < groups[j].Mean
		}
		return groups[i].Feature < groups[j].Feature
	})

	flagged := 0
	for i := range groups {
		g := &groups[i]
		g.Rank = i + 1
		g.Interval = IntervalMultiplier * g.StandardError
		if math.Abs(g.Mean) < cfg.threshold {
			g.RemovalCandidate = true
			flagged++
		}
	}

	cfg.logger.Info("Permutation importance aggregated",
		log.AnalyzerKey, log.AnalyzerImportance,
		log.EntriesKey, len(entries),
		log.FeaturesKey, len(groups),
		log.ThresholdKey, cfg.threshold,
		log.FlaggedKey, flagged,
	)
	return groups, nil
}

// AggregateRaw parses dot-qualified keys ("Pclass.1") and aggregates them.
// Keys are processed in sorted order so repeated calls on the same map give
// bit-identical sums.
func AggregateRaw(raw map[string]Statistics, opts ...Option) ([]Aggregated, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		key, err := dataset.ParseFeatureKey(k)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Statistics: raw[k]})
	}
	return Aggregate(entries, opts...)
}

// Candidates returns the features flagged as removal candidates, in rank order.
func Candidates(ranked []Aggregated) []string {
	var out []string
	for _, a := range ranked {
		if a.RemovalCandidate {
			out = append(out, a.Feature)
		}
	}
	return out
}
