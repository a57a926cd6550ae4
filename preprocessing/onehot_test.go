package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/modeldiag/dataset"
	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

func TestOneHotEncoder(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit(
		[]string{"Pclass", "Sex"},
		[][]string{{"3", "1", "3", "2"}, {"male", "female", "female", "male"}},
	))

	keys, cols, err := enc.Transform([][]string{{"1", "3", "4"}, {"female", "male", "male"}})
	require.NoError(t, err)

	wantKeys := []dataset.FeatureKey{
		{Base: "Pclass", Variant: "1"},
		{Base: "Pclass", Variant: "2"},
		{Base: "Pclass", Variant: "3"},
		{Base: "Sex", Variant: "female"},
		{Base: "Sex", Variant: "male"},
	}
	assert.Equal(t, wantKeys, keys)
	require.Len(t, cols, 5)
	assert.Equal(t, []float64{1, 0, 0}, cols[0])
	assert.Equal(t, []float64{0, 0, 0}, cols[1])
	assert.Equal(t, []float64{0, 1, 0}, cols[2], "unseen level 4 encodes as zeros")
	assert.Equal(t, []float64{1, 0, 0}, cols[3])
	assert.Equal(t, []float64{0, 1, 1}, cols[4])

	assert.Equal(t, "Pclass.1", keys[0].String())
}

func TestOneHotEncoderErrors(t *testing.T) {
	enc := NewOneHotEncoder()
	_, _, err := enc.Transform([][]string{{"a"}})
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	assert.Error(t, enc.Fit([]string{"a", "b"}, [][]string{{"x"}}))

	require.NoError(t, enc.Fit([]string{"a", "b"}, [][]string{{"x"}, {"y"}}))
	_, _, err = enc.Transform([][]string{{"x", "x"}, {"y"}})
	assert.True(t, errors.Is(err, errors.ErrMalformedInput))
}

func TestOneHotEncoderUnseenLevels(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit(
		[]string{"Pclass", "Sex"},
		[][]string{{"1", "2", "3"}, {"male", "female", "male"}},
	))

	keys, cols, err := enc.Transform([][]string{{"2", "9"}, {"male", "unknown"}})
	require.NoError(t, err)
	require.Len(t, cols, len(keys))

	for j, col := range cols {
		assert.Equal(t, 0.0, col[1], "row with unseen levels, column %s", keys[j])
	}
	var first []float64
	for _, col := range cols {
		first = append(first, col[0])
	}
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, first)
}
