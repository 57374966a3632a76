package piston

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v4"
)

// Symbol represents one byte of input.  Every byte value is a valid Symbol.
type Symbol byte

// NumSymbols is the size of the largest possible alphabet.
const NumSymbols = 256

// EncodeMsgpack fulfills msgpack.CustomEncoder.
func (sym Symbol) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeUint(uint64(sym))
}

// DecodeMsgpack fulfills msgpack.CustomDecoder.  Values outside 0..255 are an
// InvalidArgument error rather than being truncated to a byte.
func (sym *Symbol) DecodeMsgpack(dec *msgpack.Decoder) error {
	value, err := dec.DecodeUint64()
	if err != nil {
		return err
	}
	if value >= NumSymbols {
		return newError(KindInvalidArgument, fmt.Sprintf("symbol %d is outside the byte alphabet", value))
	}
	*sym = Symbol(value)
	return nil
}

var (
	_ msgpack.CustomEncoder = Symbol(0)
	_ msgpack.CustomDecoder = (*Symbol)(nil)
)
