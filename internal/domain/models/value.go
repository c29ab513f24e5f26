package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a yield reading that is either present or explicitly absent.
// The zero Value is absent.
type Value struct {
	v  float64
	ok bool
}

// Present wraps an observed number.
func Present(v float64) Value { return Value{v: v, ok: true} }

// Absent returns the "no data" marker.
func Absent() Value { return Value{} }

// Get returns the number and whether it is present.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

// IsPresent reports whether the value carries a number.
func (v Value) IsPresent() bool { return v.ok }

// String renders the number in its shortest form, or "" when absent.
func (v Value) String() string {
	if !v.ok {
		return ""
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = Absent()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Present(f)
	return nil
}
