package piston

import (
	"fmt"
	"strings"

	"github.com/chronos-tachyon/assert"
)

// BitBuffer is a growable sequence of bits backed by byte-aligned storage.
//
// Bits are packed MSB-first: the first bit appended to a fresh byte lands in
// bit position 7.  Because the final byte is padded with zeroes, the logical
// length returned by Len must always travel together with the packed bytes.
type BitBuffer struct {
	data  []byte
	nbits int
}

// NewBitBuffer creates an empty BitBuffer with room for at least capacityBits
// bits before it needs to grow.
func NewBitBuffer(capacityBits int) *BitBuffer {
	if capacityBits < 0 {
		capacityBits = 0
	}
	return &BitBuffer{data: make([]byte, 0, bytesToFit(capacityBits))}
}

// BitBufferFromBytes reconstitutes a BitBuffer from packed bytes and an
// explicit bit length.  Bits of data beyond nbits are treated as padding and
// are cleared in the copy.
func BitBufferFromBytes(data []byte, nbits int) (*BitBuffer, error) {
	if nbits < 0 || nbits > 8*len(data) {
		return nil, newError(KindInvalidArgument, fmt.Sprintf("bit length %d does not fit in %d bytes", nbits, len(data)))
	}

	bb := &BitBuffer{
		data:  make([]byte, bytesToFit(nbits)),
		nbits: nbits,
	}
	copy(bb.data, data)
	if used := nbits % 8; used != 0 {
		bb.data[len(bb.data)-1] &= byte(0xff) << (8 - used)
	}
	return bb, nil
}

// Len returns the number of logical bits in the buffer.
func (bb *BitBuffer) Len() int {
	return bb.nbits
}

// Reset empties the buffer, retaining its storage.
func (bb *BitBuffer) Reset() {
	bb.data = bb.data[:0]
	bb.nbits = 0
}

// AppendBit appends a single bit.
func (bb *BitBuffer) AppendBit(bit bool) {
	offset := bb.nbits % 8

	// start a fresh zero byte when the previous one is full
	if offset == 0 {
		bb.data = append(bb.data, 0)
	}
	if bit {
		bb.data[len(bb.data)-1] |= 0x80 >> offset
	}
	bb.nbits++
}

// AppendCode appends every bit of hc, in order.
func (bb *BitBuffer) AppendCode(hc Code) {
	for _, bit := range hc {
		bb.AppendBit(bit)
	}
}

// Bit returns the bit at the given index, which must be within [0, Len()).
func (bb *BitBuffer) Bit(index int) bool {
	assert.Assertf(index >= 0 && index < bb.nbits, "BitBuffer.Bit: index %d out of range [0, %d)", index, bb.nbits)
	return bb.data[index/8]&(0x80>>(index%8)) != 0
}

// Bytes returns the packed representation of the buffer.  The final byte is
// zero-padded.  The returned slice aliases the buffer's storage.
func (bb *BitBuffer) Bytes() []byte {
	return bb.data
}

// Code returns a copy of the buffer's bits as a Code.
func (bb *BitBuffer) Code() Code {
	hc := make(Code, bb.nbits)
	for index := range hc {
		hc[index] = bb.Bit(index)
	}
	return hc
}

// String returns the buffer's bits as binary digits, grouped by byte.
func (bb *BitBuffer) String() string {
	var buf strings.Builder
	buf.Grow(bb.nbits + bb.nbits/8)
	for index := 0; index < bb.nbits; index++ {
		if index != 0 && index%8 == 0 {
			buf.WriteByte(' ')
		}
		if bb.Bit(index) {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
	}
	return buf.String()
}

var _ fmt.Stringer = (*BitBuffer)(nil)
