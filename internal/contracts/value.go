package contracts

import (
	"encoding/json"
	"math"
)

// Value is an optional metric or score.
// ⭐ SSOT: 결측값은 0이 아니라 Valid=false 로만 표현
type Value struct {
	V     float64
	Valid bool
}

// Present returns a present value. NaN and ±Inf are treated as absent.
func Present(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{V: v, Valid: true}
}

// Absent returns the explicit "unavailable" marker
func Absent() Value {
	return Value{}
}

// FromPtr converts a nullable float (DB scan, JSON decode) into a Value
func FromPtr(p *float64) Value {
	if p == nil {
		return Absent()
	}
	return Present(*p)
}

// Ptr returns nil for absent values
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.V
	return &f
}

// Get returns the value and whether it is present
func (v Value) Get() (float64, bool) {
	return v.V, v.Valid
}

// MarshalJSON encodes absent values as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON decodes null as absent
func (v *Value) UnmarshalJSON(data []byte) error {
	var p *float64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = FromPtr(p)
	return nil
}
