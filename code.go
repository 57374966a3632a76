package piston

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chronos-tachyon/assert"
	"github.com/nuclio/errors"
	"github.com/vmihailenco/msgpack/v4"
)

// Code represents the bit path from the root of a Huffman tree to one of its
// leaves.  false is a step to the left child (bit 0) and true is a step to the
// right child (bit 1).  The first element is the first bit on the wire.
type Code []bool

// MakeCode is a convenience function that constructs a Code from a string of
// '0' and '1' characters.  Any other character is a programming error.
func MakeCode(bits string) Code {
	hc := make(Code, len(bits))
	for index, ch := range []byte(bits) {
		assert.Assertf(ch == '0' || ch == '1', "MakeCode: invalid character %q in %q", ch, bits)
		hc[index] = (ch == '1')
	}
	return hc
}

// Append returns a new Code consisting of this Code followed by bit.  The
// receiver is never modified.
func (hc Code) Append(bit bool) Code {
	out := make(Code, len(hc)+1)
	copy(out, hc)
	out[len(hc)] = bit
	return out
}

// HasPrefix reports whether prefix is a prefix of this Code.  Every Code is a
// prefix of itself.
func (hc Code) HasPrefix(prefix Code) bool {
	if len(prefix) > len(hc) {
		return false
	}
	for index, bit := range prefix {
		if hc[index] != bit {
			return false
		}
	}
	return true
}

// Equal reports whether two Codes hold the same bits.
func (hc Code) Equal(other Code) bool {
	return len(hc) == len(other) && hc.HasPrefix(other)
}

// Digits returns the bits of this Code as a string of '0' and '1' characters.
func (hc Code) Digits() string {
	var buf strings.Builder
	buf.Grow(len(hc))
	for _, bit := range hc {
		if bit {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
	}
	return buf.String()
}

// String returns the string representation of this Code.
func (hc Code) String() string {
	if len(hc) == 0 {
		return "\"\""
	}
	return strconv.Quote(hc.Digits())
}

// MarshalText fulfills encoding.TextMarshaler.
func (hc Code) MarshalText() ([]byte, error) {
	return []byte(hc.Digits()), nil
}

// UnmarshalText fulfills encoding.TextUnmarshaler.
func (hc *Code) UnmarshalText(text []byte) error {
	out := make(Code, len(text))
	for index, ch := range text {
		switch ch {
		case '0':
		case '1':
			out[index] = true
		default:
			return newError(KindInvalidArgument, fmt.Sprintf("invalid bit %q in code %q", ch, text))
		}
	}
	*hc = out
	return nil
}

// EncodeMsgpack fulfills msgpack.CustomEncoder.  A Code travels as its bit
// length followed by its bits packed MSB-first.
func (hc Code) EncodeMsgpack(enc *msgpack.Encoder) error {
	bb := NewBitBuffer(len(hc))
	bb.AppendCode(hc)
	if err := enc.EncodeUint(uint64(len(hc))); err != nil {
		return errors.Wrap(err, "Failed to encode code length")
	}
	if err := enc.EncodeBytes(bb.Bytes()); err != nil {
		return errors.Wrap(err, "Failed to encode code bits")
	}
	return nil
}

// DecodeMsgpack fulfills msgpack.CustomDecoder.
func (hc *Code) DecodeMsgpack(dec *msgpack.Decoder) error {
	size, err := dec.DecodeUint64()
	if err != nil {
		return errors.Wrap(err, "Failed to decode code length")
	}
	packed, err := dec.DecodeBytes()
	if err != nil {
		return errors.Wrap(err, "Failed to decode code bits")
	}
	if size > uint64(8*len(packed)) {
		return newError(KindInvalidArgument, fmt.Sprintf("code length %d exceeds %d packed bits", size, 8*len(packed)))
	}
	bb, err := BitBufferFromBytes(packed, int(size))
	if err != nil {
		return err
	}
	*hc = bb.Code()
	return nil
}

var (
	_ fmt.Stringer          = Code(nil)
	_ msgpack.CustomEncoder = Code(nil)
	_ msgpack.CustomDecoder = (*Code)(nil)
)
