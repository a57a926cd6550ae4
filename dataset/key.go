package dataset

import (
	"strings"

	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// FeatureKey identifies a model input as a source column plus an optional
// encoded variant, e.g. {Base: "Pclass", Variant: "1"} for the one-hot level
// "1" of the Pclass column.
type FeatureKey struct {
	Base    string
	Variant string
}

// String joins the key as "Base.Variant", or just "Base" without a variant.
func (k FeatureKey) String() string {
	if k.Variant == "" {
		return k.Base
	}
	return k.Base + "." + k.Variant
}

// ParseFeatureKey splits a dot-qualified key at its first dot. The base must
// be non-empty; everything after the first dot is the variant.
func ParseFeatureKey(raw string) (FeatureKey, error) {
	base, variant, _ := strings.Cut(raw, ".")
	if base == "" {
		return FeatureKey{}, errors.NewMalformedInputError("dataset.ParseFeatureKey", "key has no base feature segment", raw)
	}
	return FeatureKey{Base: base, Variant: variant}, nil
}
