// Package diagnostics runs the cross-validation, permutation-importance and
// correlation analyzers over one set of inputs and collects their results.
//
// The analyzers are independent. Suite.Run starts each one whose input is
// present, optionally concurrently, and isolates failures: an error or panic
// in one analyzer is recorded in Report.Errors while the others complete.
package diagnostics

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/modeldiag/correlation"
	"github.com/YuminosukeSato/modeldiag/crossval"
	"github.com/YuminosukeSato/modeldiag/dataset"
	"github.com/YuminosukeSato/modeldiag/importance"
	"github.com/YuminosukeSato/modeldiag/pkg/errors"
	"github.com/YuminosukeSato/modeldiag/pkg/log"
)

// Analyzer names used as keys of Report.Errors.
const (
	CrossValidation = log.AnalyzerCrossValidation
	Importance      = log.AnalyzerImportance
	Correlation     = log.AnalyzerCorrelation
)

// Input holds the data for each analyzer. A nil or empty field skips the
// corresponding analyzer.
type Input struct {
	// Folds is one metric map per cross-validation fold.
	Folds []map[string]float64
	// Metrics orders the summarized metrics. Empty means the sorted keys
	// of the first fold.
	Metrics []string

	// Importance maps dot-qualified feature keys to permutation results.
	Importance map[string]importance.Statistics

	// Table is the numeric feature table for correlation analysis.
	Table *dataset.FeatureTable
}

// Option configures a Suite.
type Option func(*Suite)

// WithFailFast makes Run return the first analyzer error instead of
// recording it in Report.Errors.
func WithFailFast(failFast bool) Option {
	return func(s *Suite) {
		s.failFast = failFast
	}
}

// WithConcurrency limits the number of analyzers running at once.
// n <= 0 runs all of them concurrently; 1 runs them in order.
func WithConcurrency(n int) Option {
	return func(s *Suite) {
		s.concurrency = n
	}
}

// WithLogger sets the logger for the suite and every analyzer.
func WithLogger(l log.Logger) Option {
	return func(s *Suite) {
		s.logger = l
	}
}

// WithImportanceThreshold sets the removal-candidate threshold.
func WithImportanceThreshold(t float64) Option {
	return func(s *Suite) {
		s.importanceThreshold = t
	}
}

// WithCorrelationOptions passes options through to correlation.Analyze.
func WithCorrelationOptions(opts ...correlation.Option) Option {
	return func(s *Suite) {
		s.correlationOpts = append(s.correlationOpts, opts...)
	}
}

// Suite runs the analyzers. It holds configuration only and is safe for
// concurrent use.
type Suite struct {
	failFast            bool
	concurrency         int
	logger              log.Logger
	importanceThreshold float64
	correlationOpts     []correlation.Option
}

// NewSuite returns a Suite with the given options.
func NewSuite(opts ...Option) *Suite {
	s := &Suite{importanceThreshold: importance.DefaultThreshold}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("diagnostics")
	}
	return s
}

type task struct {
	name string
	run  func(r *Report) error
}

func (s *Suite) tasks(in Input) []task {
	var tasks []task
	if len(in.Folds) > 0 {
		tasks = append(tasks, task{name: CrossValidation, run: func(r *Report) error {
			summaries, err := crossval.SummarizeFolds(in.Folds, in.Metrics,
				crossval.WithLogger(s.logger.With(log.AnalyzerKey, CrossValidation)))
			r.CrossValidation = summaries
			return err
		}})
	}
	if len(in.Importance) > 0 {
		tasks = append(tasks, task{name: Importance, run: func(r *Report) error {
			ranked, err := importance.AggregateRaw(in.Importance,
				importance.WithThreshold(s.importanceThreshold),
				importance.WithLogger(s.logger.With(log.AnalyzerKey, Importance)))
			r.Importance = ranked
			r.ImportanceThreshold = s.importanceThreshold
			return err
		}})
	}
	if in.Table != nil {
		tasks = append(tasks, task{name: Correlation, run: func(r *Report) error {
			opts := append([]correlation.Option{
				correlation.WithLogger(s.logger.With(log.AnalyzerKey, Correlation)),
			}, s.correlationOpts...)
			res, err := correlation.Analyze(*in.Table, opts...)
			r.Correlation = res
			return err
		}})
	}
	return tasks
}

// Run executes every analyzer that has input. Without WithFailFast the
// returned error is nil unless ctx was cancelled before any analyzer ran;
// analyzer failures are in Report.Errors. Analyzers not yet started when ctx
// is cancelled are recorded with ctx.Err().
func (s *Suite) Run(ctx context.Context, in Input) (*Report, error) {
	tasks := s.tasks(in)
	if len(tasks) == 0 {
		return nil, errors.NewMalformedInputError("diagnostics.Run", "no analyzer has input", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "diagnostics.Run")
	}
	return s.run(ctx, tasks)
}

func (s *Suite) run(ctx context.Context, tasks []task) (*Report, error) {
	start := time.Now()

	report := &Report{Errors: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for _, t := range tasks {
		g.Go(func() error {
			logger := s.logger.With(log.AnalyzerKey, t.name)
			if err := gctx.Err(); err != nil {
				mu.Lock()
				report.Errors[t.name] = err
				mu.Unlock()
				return nil
			}

			taskStart := time.Now()
			logger.Debug("Analyzer started")

			// Each analyzer writes into its own Report and the result is
			// merged under the lock.
			var part Report
			err := errors.SafeExecute(t.name, func() error {
				return t.run(&part)
			})

			if err != nil {
				logger.Error("Analyzer failed", err,
					log.ErrorCodeKey, errorCode(err),
					log.DurationMsKey, time.Since(taskStart).Milliseconds(),
				)
				if s.failFast {
					return errors.Wrapf(err, "analyzer %s", t.name)
				}
				mu.Lock()
				report.Errors[t.name] = err
				mu.Unlock()
				return nil
			}

			mu.Lock()
			report.merge(&part)
			mu.Unlock()
			logger.Debug("Analyzer finished", log.DurationMsKey, time.Since(taskStart).Milliseconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("Diagnostics finished",
		"analyzers", len(tasks),
		"failed", len(report.Errors),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return report, nil
}

func errorCode(err error) string {
	var p *errors.PanicError
	switch {
	case errors.As(err, &p):
		return log.ErrorPanic
	case errors.Is(err, errors.ErrInsufficientData):
		return log.ErrorInsufficientData
	case errors.Is(err, errors.ErrDegenerateVariance):
		return log.ErrorDegenerateVariance
	case errors.Is(err, errors.ErrMalformedInput):
		return log.ErrorMalformedInput
	}
	return "UNKNOWN"
}

// Failed returns the names of failed analyzers in sorted order.
func (r *Report) Failed() []string {
	names := make([]string, 0, len(r.Errors))
	for name := range r.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
