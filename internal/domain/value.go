package domain

import (
	"encoding/json"
	"math"
)

// epsilon below which a denominator is treated as zero.
const epsilon = 1e-12

// Value is an optional float64. A Value is either defined (carrying a finite
// number) or undefined. Undefined is the typed replacement for NaN/Inf: it
// serializes as JSON null and never leaks into comparisons or rankings as a
// number.
type Value struct {
	val   float64
	valid bool
}

// Some returns a defined Value. NaN and Inf inputs collapse to Undefined so
// a special float can never smuggle itself into a defined Value.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined()
	}
	return Value{val: v, valid: true}
}

// Undefined returns the undefined Value.
func Undefined() Value {
	return Value{}
}

// Valid reports whether the value is defined.
func (v Value) Valid() bool {
	return v.valid
}

// Float returns the numeric value and whether it is defined.
func (v Value) Float() (float64, bool) {
	return v.val, v.valid
}

// Or returns the numeric value, or fallback when undefined.
func (v Value) Or(fallback float64) float64 {
	if !v.valid {
		return fallback
	}
	return v.val
}

// Mul returns v*x, undefined if v is undefined.
func (v Value) Mul(x float64) Value {
	if !v.valid {
		return Undefined()
	}
	return Some(v.val * x)
}

// Div returns numerator/denominator, undefined on a zero or near-zero
// denominator. All division in the engine goes through here or through
// Value.DivBy so "no value" is a typed state rather than an Inf.
func Div(numerator, denominator float64) Value {
	if math.Abs(denominator) < epsilon {
		return Undefined()
	}
	return Some(numerator / denominator)
}

// DivBy returns v/denominator, undefined if v is undefined or the
// denominator is zero/near-zero.
func (v Value) DivBy(denominator float64) Value {
	if !v.valid {
		return Undefined()
	}
	return Div(v.val, denominator)
}

// MarshalJSON serializes a defined Value as a number and an undefined Value
// as null. The output contract forbids NaN-as-zero or string placeholders.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.val)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Undefined()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}
