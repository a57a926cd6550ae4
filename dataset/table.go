package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// FeatureTable is a column-major table of numeric features.
//
// Invariants: len(Header) == len(Columns) and every column has the same
// length. Use NewFeatureTable or FromRows to get a validated table.
type FeatureTable struct {
	Header  []string
	Columns [][]float64
}

// NewFeatureTable validates and copies header and columns.
func NewFeatureTable(header []string, columns [][]float64) (FeatureTable, error) {
	t := FeatureTable{
		Header:  append([]string(nil), header...),
		Columns: make([][]float64, len(columns)),
	}
	for i, col := range columns {
		t.Columns[i] = append([]float64(nil), col...)
	}
	if err := t.Validate(); err != nil {
		return FeatureTable{}, err
	}
	return t, nil
}

// Validate checks the table invariants.
func (t FeatureTable) Validate() error {
	const op = "dataset.FeatureTable"
	if len(t.Header) != len(t.Columns) {
		return errors.NewDimensionError(op, len(t.Header), len(t.Columns), 1)
	}
	if len(t.Columns) == 0 {
		return nil
	}
	rows := len(t.Columns[0])
	for i, col := range t.Columns {
		if len(col) != rows {
			return errors.NewMalformedInputError(op,
				fmt.Sprintf("column %q has %d rows, expected %d", t.Header[i], len(col), rows), nil)
		}
		if err := errors.CheckFinite(op+"."+t.Header[i], col); err != nil {
			return err
		}
	}
	return nil
}

// NumColumns returns the number of feature columns.
func (t FeatureTable) NumColumns() int {
	return len(t.Columns)
}

// Rows returns the number of rows.
func (t FeatureTable) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0])
}

// Dense returns the table as a rows × columns gonum matrix.
func (t FeatureTable) Dense() *mat.Dense {
	r, c := t.Rows(), t.NumColumns()
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(r, c, nil)
	for j, col := range t.Columns {
		d.SetCol(j, col)
	}
	return d
}

// FromRows builds a FeatureTable from row-oriented records using schema to
// select the Numeric columns. Accepted numeric values are float64, float32,
// int, int32 and int64; anything else in a Numeric column is rejected, as are
// values outside single-precision range.
func FromRows(schema Schema, rows [][]any) (FeatureTable, error) {
	const op = "dataset.FromRows"
	if err := schema.Validate(); err != nil {
		return FeatureTable{}, err
	}

	var idx []int
	var header []string
	for i, c := range schema {
		if c.Kind == Numeric {
			idx = append(idx, i)
			header = append(header, c.Name)
		}
	}

	columns := make([][]float64, len(idx))
	for j := range columns {
		columns[j] = make([]float64, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(schema) {
			return FeatureTable{}, errors.NewDimensionError(op, len(schema), len(row), 1)
		}
		for j, i := range idx {
			v, err := toFloat(row[i])
			if err != nil {
				return FeatureTable{}, errors.Wrapf(err, "row %d column %q", r, schema[i].Name)
			}
			if err := errors.CheckFloat32Range(op, v); err != nil {
				return FeatureTable{}, errors.Wrapf(err, "row %d column %q", r, schema[i].Name)
			}
			columns[j][r] = v
		}
	}

	t := FeatureTable{Header: header, Columns: columns}
	if err := t.Validate(); err != nil {
		return FeatureTable{}, err
	}
	return t, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, errors.NewMalformedInputError("dataset.FromRows", "non-numeric value in numeric column", v)
	}
}
