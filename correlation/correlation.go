// Package correlation computes the Pearson correlation matrix of a feature
// table and reports highly correlated feature pairs.
//
// Columns are standardized with preprocessing.StandardScaler and the matrix
// is formed as Zᵀ·Z/(n-1). The result is symmetric with a unit diagonal and
// every entry in [-1, 1]. A column with zero variance has no defined
// correlation; its entries against every other column are set to 0 and the
// column is listed in Result.Degenerate.
package correlation

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeldiag/core/parallel"
	"github.com/YuminosukeSato/modeldiag/dataset"
	"github.com/YuminosukeSato/modeldiag/pkg/errors"
	"github.com/YuminosukeSato/modeldiag/pkg/log"
	"github.com/YuminosukeSato/modeldiag/preprocessing"
)

const (
	// DefaultThreshold is the |correlation| above which a pair is flagged.
	DefaultThreshold = 0.9

	// DefaultParallelThreshold is the column count above which the pair
	// scan is split across goroutines.
	DefaultParallelThreshold = 64

	// DegenerateFallback is the correlation reported against a
	// zero-variance column.
	DegenerateFallback = 0.0
)

// Matrix is a symmetric correlation matrix with named rows and columns.
type Matrix struct {
	header []string
	sym    *mat.SymDense
}

// NewMatrix wraps a symmetric matrix. len(header) must equal its size.
func NewMatrix(header []string, sym *mat.SymDense) (*Matrix, error) {
	if sym == nil {
		return nil, errors.NewMalformedInputError("correlation.NewMatrix", "nil matrix", nil)
	}
	if n := sym.SymmetricDim(); n != len(header) {
		return nil, errors.NewDimensionError("correlation.NewMatrix", len(header), n, 1)
	}
	return &Matrix{header: append([]string(nil), header...), sym: sym}, nil
}

// Size returns the number of features.
func (m *Matrix) Size() int { return len(m.header) }

// At returns the correlation between features i and j.
func (m *Matrix) At(i, j int) float64 { return m.sym.At(i, j) }

// Header returns a copy of the feature names.
func (m *Matrix) Header() []string { return append([]string(nil), m.header...) }

// Name returns the name of feature i.
func (m *Matrix) Name(i int) string { return m.header[i] }

// SymDense returns a copy of the underlying gonum matrix.
func (m *Matrix) SymDense() *mat.SymDense {
	c := mat.NewSymDense(m.sym.SymmetricDim(), nil)
	c.CopySym(m.sym)
	return c
}

// Pair is an upper-triangle cell whose |Correlation| exceeded the threshold.
type Pair struct {
	I, J        int
	FeatureI    string
	FeatureJ    string
	Correlation float64
}

// Result is the outcome of Compute or Analyze.
type Result struct {
	Matrix *Matrix
	// Pairs is in row-major upper-triangle order. Compute leaves it nil.
	Pairs []Pair
	// Degenerate lists zero-variance columns in header order.
	Degenerate []string
	Threshold  float64
}

// Option configures Compute and Analyze.
type Option func(*config)

type config struct {
	threshold         float64
	parallelThreshold int
	workers           int
	strict            bool
	logger            log.Logger
}

// WithThreshold sets the flagging threshold. It must be in [0, 1].
func WithThreshold(t float64) Option {
	return func(c *config) {
		c.threshold = t
	}
}

// WithParallelThreshold sets the column count above which the pair scan
// runs on several goroutines.
func WithParallelThreshold(columns int) Option {
	return func(c *config) {
		c.parallelThreshold = columns
	}
}

// WithWorkers limits the pair scan to n goroutines. n <= 0 means NumCPU.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithStrictVariance makes a zero-variance column an error
// (ErrDegenerateVariance) instead of a warning.
func WithStrictVariance(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		threshold:         DefaultThreshold,
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	if math.IsNaN(c.threshold) || c.threshold < 0 || c.threshold > 1 {
		return nil, errors.NewMalformedInputError("correlation", "threshold must be in [0, 1]", c.threshold)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("correlation")
	}
	return c, nil
}

// Compute returns the Pearson correlation matrix of table.
func Compute(table dataset.FeatureTable, opts ...Option) (*Result, error) {
	const op = "correlation.Compute"
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	n, c := table.Rows(), table.NumColumns()
	if c == 0 {
		return nil, errors.NewInsufficientDataError(op, 1, 0)
	}
	if n < 2 {
		return nil, errors.NewInsufficientDataError(op, 2, n)
	}

	scaler := preprocessing.NewStandardScaler()
	z, err := scaler.FitTransform(table.Dense())
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	var degenerate []string
	for j, d := range scaler.Degenerate {
		if !d {
			continue
		}
		if cfg.strict {
			return nil, errors.NewDegenerateVarianceError(op, table.Header[j])
		}
		degenerate = append(degenerate, table.Header[j])
		log.Warning(cfg.logger, errors.NewDegenerateVarianceWarning(op, table.Header[j], DegenerateFallback),
			log.AnalyzerKey, log.AnalyzerCorrelation,
			log.FeatureKey, table.Header[j],
			log.ErrorCodeKey, log.ErrorDegenerateVariance,
		)
	}

	sym := mat.NewSymDense(c, nil)
	sym.SymOuterK(1/float64(n-1), z.T())
	for i := 0; i < c; i++ {
		sym.SetSym(i, i, 1)
		for j := i + 1; j < c; j++ {
			v := errors.ClipValue(sym.At(i, j), -1, 1)
			if scaler.Degenerate[i] || scaler.Degenerate[j] {
				v = DegenerateFallback
			}
			sym.SetSym(i, j, v)
		}
	}

	m, err := NewMatrix(table.Header, sym)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("Correlation matrix computed",
		log.AnalyzerKey, log.AnalyzerCorrelation,
		log.SamplesKey, n,
		log.FeaturesKey, c,
	)
	return &Result{Matrix: m, Degenerate: degenerate, Threshold: cfg.threshold}, nil
}

// Analyze computes the correlation matrix and collects every upper-triangle
// pair (j > i) whose absolute correlation is strictly above the threshold.
func Analyze(table dataset.FeatureTable, opts ...Option) (*Result, error) {
	start := time.Now()
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	res, err := Compute(table, opts...)
	if err != nil {
		return nil, err
	}

	res.Pairs = FlaggedPairs(res.Matrix, cfg.threshold, cfg.parallelThreshold, cfg.workers)
	cfg.logger.Info("Correlation analysis finished",
		log.AnalyzerKey, log.AnalyzerCorrelation,
		log.FeaturesKey, res.Matrix.Size(),
		log.ThresholdKey, cfg.threshold,
		log.FlaggedKey, len(res.Pairs),
		log.WorkersKey, parallel.Workers(res.Matrix.Size(), cfg.workers),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// FlaggedPairs scans the upper triangle of m for |v| > threshold. Matrices
// wider than parallelThreshold columns are scanned by up to workers
// goroutines; the output order is row-major either way.
func FlaggedPairs(m *Matrix, threshold float64, parallelThreshold, workers int) []Pair {
	size := m.Size()
	rows := make([][]Pair, size)
	parallel.ParallelizeWithThreshold(size, parallelThreshold, workers, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i + 1; j < size; j++ {
				v := m.At(i, j)
				if math.Abs(v) > threshold {
					rows[i] = append(rows[i], Pair{
						I:           i,
						J:           j,
						FeatureI:    m.header[i],
						FeatureJ:    m.header[j],
						Correlation: v,
					})
				}
			}
		}
	})

	var pairs []Pair
	for _, r := range rows {
		pairs = append(pairs, r...)
	}
	return pairs
}
