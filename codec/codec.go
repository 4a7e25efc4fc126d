// Package codec turns cached values into the bytes a provider.Store keeps.
// Stores are byte-transparent, so any codec works with any store.
package codec

import "encoding/json"

// Codec encodes V for storage and decodes it back.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// JSON is the default codec. The zero value is ready to use.
type JSON[V any] struct{}

var _ Codec[map[string]any] = JSON[map[string]any]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

// Bytes stores []byte values as-is.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String stores strings as their UTF-8 bytes, without validation.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
