package correlation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/modeldiag/dataset"
	"github.com/YuminosukeSato/modeldiag/pkg/errors"
	"github.com/YuminosukeSato/modeldiag/pkg/log"
)

func quietLogger() log.Logger {
	l := log.NewTestLogger(log.LevelError)
	return l
}

func mustTable(t *testing.T, header []string, columns ...[]float64) dataset.FeatureTable {
	t.Helper()
	table, err := dataset.NewFeatureTable(header, columns)
	require.NoError(t, err)
	return table
}

func randomTable(t *testing.T, rows, cols int, seed uint64) dataset.FeatureTable {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed+1))
	header := make([]string, cols)
	columns := make([][]float64, cols)
	for j := range columns {
		header[j] = string(rune('A'+j%26)) + string(rune('a'+j/26))
		columns[j] = make([]float64, rows)
		for i := range columns[j] {
			columns[j][i] = rng.NormFloat64()
			if j > 0 {
				// correlate with the previous column
				columns[j][i] += 0.5 * columns[j-1][i]
			}
		}
	}
	return mustTable(t, header, columns...)
}

func TestComputeMatchesStat(t *testing.T) {
	table := randomTable(t, 50, 6, 1)

	res, err := Compute(table, WithLogger(quietLogger()))
	require.NoError(t, err)

	m := res.Matrix
	require.Equal(t, 6, m.Size())
	for i := 0; i < m.Size(); i++ {
		for j := 0; j < m.Size(); j++ {
			want := stat.Correlation(table.Columns[i], table.Columns[j], nil)
			assert.InDelta(t, want, m.At(i, j), 1e-10, "cell (%d,%d)", i, j)
		}
	}
}

func TestComputeInvariants(t *testing.T) {
	res, err := Compute(randomTable(t, 30, 8, 7), WithLogger(quietLogger()))
	require.NoError(t, err)

	m := res.Matrix
	for i := 0; i < m.Size(); i++ {
		assert.Equal(t, 1.0, m.At(i, i))
		for j := 0; j < m.Size(); j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i), "symmetry (%d,%d)", i, j)
			assert.LessOrEqual(t, math.Abs(m.At(i, j)), 1.0)
		}
	}
	assert.Nil(t, res.Pairs)
	assert.Empty(t, res.Degenerate)
}

func TestAnalyzePerfectCorrelation(t *testing.T) {
	table := mustTable(t, []string{"x", "y"},
		[]float64{1, 2, 3, 4},
		[]float64{2, 4, 6, 8},
	)

	res, err := Analyze(table, WithThreshold(0.9), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Matrix.At(0, 1), 1e-12)
	require.Len(t, res.Pairs, 1)
	p := res.Pairs[0]
	assert.Equal(t, 0, p.I)
	assert.Equal(t, 1, p.J)
	assert.Equal(t, "x", p.FeatureI)
	assert.Equal(t, "y", p.FeatureJ)
	assert.Equal(t, 0.9, res.Threshold)
}

func TestAnalyzeNegativeCorrelationIsFlagged(t *testing.T) {
	table := mustTable(t, []string{"x", "y", "z"},
		[]float64{1, 2, 3, 4, 5},
		[]float64{10, 8, 6, 4, 2},
		[]float64{3, 1, 4, 1, 5},
	)

	res, err := Analyze(table, WithLogger(quietLogger()))
	require.NoError(t, err)

	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "x", res.Pairs[0].FeatureI)
	assert.Equal(t, "y", res.Pairs[0].FeatureJ)
	assert.InDelta(t, -1.0, res.Pairs[0].Correlation, 1e-12)
}

func TestAnalyzeThresholdIsStrict(t *testing.T) {
	table := mustTable(t, []string{"x", "y"},
		[]float64{1, 2, 3, 4},
		[]float64{2, 4, 6, 8},
	)

	res, err := Analyze(table, WithThreshold(1), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
}

func TestAnalyzeParallelMatchesSequential(t *testing.T) {
	table := randomTable(t, 40, 30, 3)

	seq, err := Analyze(table, WithThreshold(0.3), WithLogger(quietLogger()))
	require.NoError(t, err)
	par, err := Analyze(table,
		WithThreshold(0.3),
		WithParallelThreshold(0),
		WithWorkers(4),
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)

	require.NotEmpty(t, seq.Pairs)
	assert.Equal(t, seq.Pairs, par.Pairs)
	for k := 1; k < len(par.Pairs); k++ {
		prev, cur := par.Pairs[k-1], par.Pairs[k]
		assert.True(t, prev.I < cur.I || (prev.I == cur.I && prev.J < cur.J), "row-major order")
	}
}

func TestComputeDegenerateColumn(t *testing.T) {
	var handled []error
	errors.SetWarningHandler(func(w error) { handled = append(handled, w) })
	defer errors.SetWarningHandler(nil)

	table := mustTable(t, []string{"x", "const", "y"},
		[]float64{1, 2, 3, 4},
		[]float64{5, 5, 5, 5},
		[]float64{4, 3, 2, 2},
	)

	logger := log.NewTestLogger(log.LevelWarn)
	res, err := Compute(table, WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, []string{"const"}, res.Degenerate)
	assert.Equal(t, 1.0, res.Matrix.At(1, 1))
	assert.Equal(t, DegenerateFallback, res.Matrix.At(0, 1))
	assert.Equal(t, DegenerateFallback, res.Matrix.At(1, 2))
	assert.False(t, math.IsNaN(res.Matrix.At(0, 2)))

	records := logger.Records()
	require.Len(t, records, 1)
	assert.Equal(t, log.LevelWarn, records[0].Level)
	assert.True(t, logger.ContainsField(log.ErrorTypeKey, "DegenerateVarianceWarning"))
	assert.True(t, logger.ContainsField(log.FeatureKey, "const"))

	require.Len(t, handled, 1)
	var w *errors.DegenerateVarianceWarning
	require.True(t, errors.As(handled[0], &w))
	assert.Equal(t, "const", w.Feature)
}

func TestComputeIsScaleInvariant(t *testing.T) {
	table := mustTable(t, []string{"tiny", "x", "huge"},
		[]float64{1e-13, 2e-13, 3e-13, 4e-13},
		[]float64{1, 2, 3, 4},
		[]float64{1e13, 2e13, 3e13, 5e13},
	)

	res, err := Analyze(table, WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Empty(t, res.Degenerate)
	assert.InDelta(t, 1.0, res.Matrix.At(0, 1), 1e-9)
	want := stat.Correlation(table.Columns[0], table.Columns[2], nil)
	assert.InDelta(t, want, res.Matrix.At(0, 2), 1e-9)
	assert.InDelta(t, res.Matrix.At(1, 2), res.Matrix.At(0, 2), 1e-9)
	require.NotEmpty(t, res.Pairs)
	assert.Equal(t, Pair{I: 0, J: 1, FeatureI: "tiny", FeatureJ: "x", Correlation: res.Matrix.At(0, 1)}, res.Pairs[0])
}

func TestComputeStrictVariance(t *testing.T) {
	table := mustTable(t, []string{"x", "const"},
		[]float64{1, 2, 3},
		[]float64{0, 0, 0},
	)

	_, err := Compute(table, WithStrictVariance(true), WithLogger(quietLogger()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDegenerateVariance))
}

func TestComputeErrors(t *testing.T) {
	tests := []struct {
		name   string
		table  dataset.FeatureTable
		opts   []Option
		target error
	}{
		{
			name:   "single row",
			table:  dataset.FeatureTable{Header: []string{"x", "y"}, Columns: [][]float64{{1}, {2}}},
			target: errors.ErrInsufficientData,
		},
		{
			name:   "no columns",
			table:  dataset.FeatureTable{},
			target: errors.ErrInsufficientData,
		},
		{
			name:   "header mismatch",
			table:  dataset.FeatureTable{Header: []string{"x"}, Columns: [][]float64{{1, 2}, {3, 4}}},
			target: errors.ErrMalformedInput,
		},
		{
			name:   "ragged columns",
			table:  dataset.FeatureTable{Header: []string{"x", "y"}, Columns: [][]float64{{1, 2, 3}, {3, 4}}},
			target: errors.ErrMalformedInput,
		},
		{
			name:   "threshold above one",
			table:  dataset.FeatureTable{Header: []string{"x"}, Columns: [][]float64{{1, 2}}},
			opts:   []Option{WithThreshold(1.5)},
			target: errors.ErrMalformedInput,
		},
		{
			name:   "negative threshold",
			table:  dataset.FeatureTable{Header: []string{"x"}, Columns: [][]float64{{1, 2}}},
			opts:   []Option{WithThreshold(-0.1)},
			target: errors.ErrMalformedInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{WithLogger(quietLogger())}, tt.opts...)
			_, err := Analyze(tt.table, opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestNewMatrixDimensionMismatch(t *testing.T) {
	res, err := Compute(randomTable(t, 10, 3, 9), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = NewMatrix([]string{"a", "b"}, res.Matrix.SymDense())
	assert.True(t, errors.Is(err, errors.ErrMalformedInput))
}
