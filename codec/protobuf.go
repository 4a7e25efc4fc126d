package codec

import "google.golang.org/protobuf/proto"

// Protobuf encodes generated messages. ctor allocates the message Decode
// fills, e.g. func() *pb.User { return new(pb.User) }.
type Protobuf[M proto.Message] struct {
	ctor func() M
}

func NewProtobuf[M proto.Message](ctor func() M) Protobuf[M] {
	return Protobuf[M]{ctor: ctor}
}

func (p Protobuf[M]) Encode(m M) ([]byte, error) { return proto.Marshal(m) }

func (p Protobuf[M]) Decode(b []byte) (M, error) {
	m := p.ctor()
	if err := proto.Unmarshal(b, m); err != nil {
		var zero M
		return zero, err
	}
	return m, nil
}
