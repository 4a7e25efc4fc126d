package codec

import (
	"errors"
	"fmt"
)

var ErrTooLarge = errors.New("codec: payload too large")

// Limit caps payload sizes around another codec. Encoded values over
// MaxEncode are refused before they reach the store, and stored payloads
// over MaxDecode are refused before Inner sees them. A limit <= 0 is off.
type Limit[V any] struct {
	Inner     Codec[V]
	MaxEncode int
	MaxDecode int
}

func (l Limit[V]) Encode(v V) ([]byte, error) {
	b, err := l.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if l.MaxEncode > 0 && len(b) > l.MaxEncode {
		return nil, fmt.Errorf("%w: encoded %d > %d bytes", ErrTooLarge, len(b), l.MaxEncode)
	}
	return b, nil
}

func (l Limit[V]) Decode(b []byte) (V, error) {
	if l.MaxDecode > 0 && len(b) > l.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: stored %d > %d bytes", ErrTooLarge, len(b), l.MaxDecode)
	}
	return l.Inner.Decode(b)
}
