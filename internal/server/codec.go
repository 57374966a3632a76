package server

import (
	"github.com/nuclio/errors"
	"github.com/vmihailenco/msgpack/v4"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype under which piston messages travel
const CodecName = "msgpack"

// msgpackCodec carries piston messages over gRPC without generated protobuf
// types. It is selected per call with grpc.CallContentSubtype(CodecName)
type msgpackCodec struct{}

func (msgpackCodec) Marshal(v interface{}) ([]byte, error) {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to marshal %T", v)
	}
	return raw, nil
}

func (msgpackCodec) Unmarshal(data []byte, v interface{}) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "Failed to unmarshal %T", v)
	}
	return nil
}

func (msgpackCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(msgpackCodec{})
}
