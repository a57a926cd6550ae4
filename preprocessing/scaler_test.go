package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})

	scaler := NewStandardScaler()
	Z, err := scaler.FitTransform(X)
	require.NoError(t, err)
	assert.True(t, scaler.IsFitted())

	assert.InDelta(t, 2.5, scaler.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), scaler.Scale[0], 1e-12)
	assert.Equal(t, []bool{false, true}, scaler.Degenerate)
	assert.Equal(t, 1.0, scaler.Scale[1])

	col := mat.Col(nil, 0, Z)
	mean, std := stat.MeanStdDev(col, nil)
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)

	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, Z.At(i, 1), "degenerate column must be zero-filled")
	}
}

func TestStandardScalerErrors(t *testing.T) {
	scaler := NewStandardScaler()

	_, err := scaler.Transform(mat.NewDense(2, 1, []float64{1, 2}))
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	err = scaler.Fit(mat.NewDense(1, 2, []float64{1, 2}))
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))

	require.NoError(t, scaler.Fit(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 7})))
	_, err = scaler.Transform(mat.NewDense(3, 3, nil))
	assert.True(t, errors.Is(err, errors.ErrMalformedInput))
}

func TestStandardScalerSmallScaleColumn(t *testing.T) {
	X := mat.NewDense(4, 3, []float64{
		1e-13, 1, 7,
		2e-13, 2, 7,
		3e-13, 3, 7,
		4e-13, 4, 7,
	})

	scaler := NewStandardScaler()
	Z, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, []bool{false, false, true}, scaler.Degenerate)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, Z.At(i, 1), Z.At(i, 0), 1e-9)
	}
}
