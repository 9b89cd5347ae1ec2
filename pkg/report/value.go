package report

import (
	"encoding/json"
	"strconv"
)

// NoValue is how a missing statistic is displayed.
const NoValue = "N/A"

// Value is a statistic that may be undefined for the input, e.g. the
// standard deviation of a single row.
type Value struct {
	Val   float64
	Valid bool
}

// Some wraps a defined statistic.
func Some(v float64) Value {
	return Value{Val: v, Valid: true}
}

// None is the "no value" sentinel.
func None() Value {
	return Value{}
}

// String formats the value with two decimals, or [NoValue].
func (v Value) String() string {
	if !v.Valid {
		return NoValue
	}

	return strconv.FormatFloat(v.Val, 'f', 2, 64)
}

// MarshalJSON encodes an undefined value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}

	return json.Marshal(v.Val)
}

// MarshalYAML encodes an undefined value as null.
func (v Value) MarshalYAML() (any, error) {
	if !v.Valid {
		return nil, nil
	}

	return v.Val, nil
}
