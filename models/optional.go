package models

import (
	"bytes"
	"encoding/json"
)

// Optional marks a field of a partial update. Set is true only when the key
// was present in the request with a non-null value.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a set Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it was set
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// ApplyTo overwrites *dst when the value is set and reports whether it did
func (o Optional[T]) ApplyTo(dst *T) bool {
	if !o.Set {
		return false
	}
	*dst = o.Value
	return true
}

// UnmarshalJSON treats an explicit null the same as an absent key
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value, o.Set = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}

// MarshalJSON writes the value, or null when unset
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ValidationValue exposes the wrapped value to struct validation. Unset
// fields validate as absent; set fields are passed by pointer so omitempty
// still runs the remaining rules against a zero value.
func (o Optional[T]) ValidationValue() interface{} {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}
