package model

import (
	"bytes"
	"encoding/json"
)

// Patch is an optional field of a partial update. Present reports whether the
// key appeared in the payload; Value is nil when it was explicitly null.
type Patch[T any] struct {
	Present bool
	Value   *T
}

func Set[T any](v T) Patch[T] {
	return Patch[T]{Present: true, Value: &v}
}

func Null[T any]() Patch[T] {
	return Patch[T]{Present: true}
}

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if !p.Present || p.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.Value)
}
