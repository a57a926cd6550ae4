package correlation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/modeldiag/dataset"
)

func TestBandOf(t *testing.T) {
	tests := []struct {
		v    float64
		want Band
	}{
		{-1, 0},
		{-0.95, 0},
		{-0.8, 1},
		{-0.61, 1},
		{-0.6, 2},
		{-0.4, 3},
		{-0.2, 4},
		{-0.0001, 4},
		{0, 5},
		{0.19, 5},
		{0.2, 6},
		{0.4, 7},
		{0.6, 8},
		{0.8, 9},
		{0.99, 9},
		{1, 9},
		{1.5, 9},
		{-3, 0},
		{math.NaN(), BandUndefined},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BandOf(tt.v), "BandOf(%v)", tt.v)
	}
}

func TestBandBounds(t *testing.T) {
	for b := Band(0); b < NumBands; b++ {
		lo, hi := b.Bounds()
		assert.InDelta(t, BandWidth, hi-lo, 1e-12, "band %d", b)
		assert.Equal(t, b, BandOf(lo), "lower bound of band %d", b)
	}

	lo, hi := BandDiagonal.Bounds()
	assert.True(t, math.IsNaN(lo))
	assert.True(t, math.IsNaN(hi))
}

func TestBandString(t *testing.T) {
	assert.Equal(t, "[-1.0, -0.8)", Band(0).String())
	assert.Equal(t, "[0.8, 1.0)", Band(9).String())
	assert.Equal(t, "diagonal", BandDiagonal.String())
	assert.Equal(t, "undefined", BandUndefined.String())
}

func TestClassify(t *testing.T) {
	table, err := dataset.NewFeatureTable([]string{"x", "y"}, [][]float64{
		{1, 2, 3, 4},
		{2, 4, 6, 8},
	})
	require.NoError(t, err)
	res, err := Compute(table, WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, BandDiagonal, Classify(res.Matrix, 0, 0))
	assert.Equal(t, BandDiagonal, Classify(res.Matrix, 1, 1))
	assert.Equal(t, Band(9), Classify(res.Matrix, 0, 1))
}

func TestBandStyles(t *testing.T) {
	assert.Equal(t, TermStyle{Foreground: ansiRed}, Band(0).Term())
	assert.Equal(t, TermStyle{Foreground: ansiRed, Background: ansiDarkRed}, Band(9).Term())
	assert.Equal(t, diagonalTermStyle, BandDiagonal.Term())
	assert.Equal(t, paletteColors[NumBands], BandDiagonal.RGBA())
	assert.NotEqual(t, Band(0).RGBA(), Band(9).RGBA())
}
