package errors

import (
	"math"
	"strconv"
)

// CheckFinite returns a MalformedInputError naming the first NaN or Inf
// found in values. Index is the position of the offending value.
func CheckFinite(op string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewMalformedInputError(op, "non-finite value at index "+strconv.Itoa(i), v)
		}
	}
	return nil
}

// CheckScalar checks a single scalar value.
func CheckScalar(op string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewMalformedInputError(op, "non-finite value", value)
	}
	return nil
}

// CheckFloat32Range reports values that cannot be represented in single precision.
func CheckFloat32Range(op string, value float64) error {
	if math.Abs(value) > math.MaxFloat32 {
		return NewMalformedInputError(op, "value outside single-precision range", value)
	}
	return nil
}

// SafeDivide performs division with protection against division by zero.
// Returns fallback if denominator is zero or close to zero.
func SafeDivide(numerator, denominator, fallback float64) float64 {
	if math.Abs(denominator) < 1e-12 {
		return fallback
	}
	return numerator / denominator
}

// ClipValue clips a value to the range [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// StabilizeLog computes log with protection against log(0).
func StabilizeLog(value float64) float64 {
	const epsilon = 1e-15
	if value < epsilon {
		return math.Log(epsilon)
	}
	return math.Log(value)
}
