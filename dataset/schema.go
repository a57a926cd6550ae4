// Package dataset holds the typed inputs shared by the analyzers: an explicit
// column schema and the numeric FeatureTable built from it.
package dataset

import (
	"fmt"

	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// Kind is the value kind of a column.
type Kind int

const (
	// Numeric columns hold single-precision-range numbers and are the only
	// ones that enter a FeatureTable.
	Numeric Kind = iota
	// Categorical columns hold discrete levels (usually strings).
	Categorical
	// Text columns hold free text.
	Text
	// Label is the prediction target.
	Label
	// Ignored columns are dropped before analysis.
	Ignored
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Text:
		return "text"
	case Label:
		return "label"
	case Ignored:
		return "ignored"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column names one column and its kind.
type Column struct {
	Name string
	Kind Kind
}

// Schema is the ordered column list of a row-oriented dataset.
type Schema []Column

// Validate rejects empty or duplicate column names.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, c := range s {
		if c.Name == "" {
			return errors.NewMalformedInputError("dataset.Schema", "empty column name", nil)
		}
		if _, dup := seen[c.Name]; dup {
			return errors.NewMalformedInputError("dataset.Schema", "duplicate column name", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Numeric returns the names of the Numeric columns in schema order.
func (s Schema) Numeric() []string {
	var names []string
	for _, c := range s {
		if c.Kind == Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// Retype returns a copy of s with the named column set to kind.
func (s Schema) Retype(name string, kind Kind) (Schema, error) {
	i := s.Index(name)
	if i < 0 {
		return nil, errors.NewMalformedInputError("dataset.Schema.Retype", "unknown column", name)
	}
	out := make(Schema, len(s))
	copy(out, s)
	out[i].Kind = kind
	return out, nil
}
