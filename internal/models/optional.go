package models

import (
	"encoding/json"
	"fmt"
)

// Optional wraps a JSON field and records whether it was present.
//
// A present field that cannot be decoded into T does not fail the whole
// request decode; the failure is kept in Err so callers can decide when to
// report it.
type Optional[T any] struct {
	Value   T
	Present bool
	Null    bool
	err     error
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

// Null returns a present Optional that was explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

// Set reports whether the field was present with a decodable, non-null value.
func (o Optional[T]) Set() bool {
	return o.Present && !o.Null && o.err == nil
}

// Err returns the decode error for a present field, if any.
func (o Optional[T]) Err() error {
	return o.err
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		o.err = fmt.Errorf("decode %s: %w", data, err)
	}
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
