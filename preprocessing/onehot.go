package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/modeldiag/dataset"
	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// OneHotEncoder expands categorical columns into one indicator column per
// level. Every output column carries an explicit dataset.FeatureKey so that
// downstream consumers (permutation importance) can group variants under
// their source column without parsing names.
type OneHotEncoder struct {
	names  []string
	levels [][]string
	fitted bool
}

// NewOneHotEncoder creates an unfitted encoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit learns the sorted distinct levels of each named column.
func (e *OneHotEncoder) Fit(names []string, columns [][]string) error {
	if len(names) != len(columns) {
		return errors.NewDimensionError("OneHotEncoder.Fit", len(names), len(columns), 1)
	}
	e.names = append([]string(nil), names...)
	e.levels = make([][]string, len(columns))
	for j, col := range columns {
		if names[j] == "" {
			return errors.NewMalformedInputError("OneHotEncoder.Fit", "empty column name", nil)
		}
		seen := make(map[string]struct{})
		for _, v := range col {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				e.levels[j] = append(e.levels[j], v)
			}
		}
		sort.Strings(e.levels[j])
	}
	e.fitted = true
	return nil
}

// FeatureKeys returns the keys of the output columns in output order.
func (e *OneHotEncoder) FeatureKeys() []dataset.FeatureKey {
	var keys []dataset.FeatureKey
	for j, name := range e.names {
		for _, level := range e.levels[j] {
			keys = append(keys, dataset.FeatureKey{Base: name, Variant: level})
		}
	}
	return keys
}

// Transform encodes columns (same order as Fit). Levels not seen during Fit
// produce an all-zero row for that column.
func (e *OneHotEncoder) Transform(columns [][]string) ([]dataset.FeatureKey, [][]float64, error) {
	if !e.fitted {
		return nil, nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(columns) != len(e.names) {
		return nil, nil, errors.NewDimensionError("OneHotEncoder.Transform", len(e.names), len(columns), 1)
	}

	rows := -1
	var out [][]float64
	for j, col := range columns {
		if rows >= 0 && len(col) != rows {
			return nil, nil, errors.NewDimensionError("OneHotEncoder.Transform", rows, len(col), 0)
		}
		rows = len(col)

		index := make(map[string]int, len(e.levels[j]))
		block := make([][]float64, len(e.levels[j]))
		for k, level := range e.levels[j] {
			index[level] = k
			block[k] = make([]float64, len(col))
		}
		for i, v := range col {
			if k, ok := index[v]; ok {
				block[k][i] = 1
			}
		}
		out = append(out, block...)
	}
	return e.FeatureKeys(), out, nil
}
