package piston

import (
	"encoding"
	"fmt"

	"github.com/nuclio/errors"
	"github.com/vmihailenco/msgpack/v4"
)

// Payload is the result of compressing an input: the packed bits, the number
// of symbols they encode, and the code table needed to decode them.  All three
// must be passed intact to Decompress.
type Payload struct {
	Data  []byte  `json:"data" msgpack:"data"`
	Count uint64  `json:"count" msgpack:"count"`
	Table []Entry `json:"table" msgpack:"table"`
}

// Compress compresses data with a Huffman code built from its own symbol
// frequencies.  Empty input yields an empty Payload.
//
// The only possible error is an InternalConsistency failure, which indicates
// a defect in this package.
//
func Compress(data []byte) (*Payload, error) {
	freqs := CountFrequencies(data)
	e := NewEncoder(&freqs)

	bb, err := e.Encode(data)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to encode input")
	}

	return &Payload{
		Data:  bb.Bytes(),
		Count: uint64(len(data)),
		Table: e.Table().Entries(),
	}, nil
}

// Decompress reverses Compress.  packed holds the coded bits, count is the
// number of symbols to recover and entries is the code table.
//
// A count of zero always yields an empty result.  An empty table with a
// non-zero count, or a table that is not a valid prefix code, is an
// InvalidArgument error.  Running out of bits before count symbols have been
// decoded is a DataCorruption error.
//
func Decompress(packed []byte, count uint64, entries []Entry) ([]byte, error) {
	if count == 0 {
		return []byte{}, nil
	}
	if len(entries) == 0 {
		return nil, newError(KindInvalidArgument, fmt.Sprintf("empty code table with symbol count %d", count))
	}

	// every symbol consumes at least one bit
	if count > uint64(8*len(packed)) {
		return nil, newError(KindDataCorruption, fmt.Sprintf("symbol count %d exceeds the %d available bits", count, 8*len(packed)))
	}

	table, err := NewCodeTable(entries)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse code table")
	}

	bits, err := BitBufferFromBytes(packed, 8*len(packed))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to unpack bits")
	}

	out, err := NewDecoder(table).Decode(bits, int(count))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to decode bits")
	}
	return out, nil
}

// Decompress is shorthand for Decompress(p.Data, p.Count, p.Table).
func (p *Payload) Decompress() ([]byte, error) {
	return Decompress(p.Data, p.Count, p.Table)
}

// MarshalBinary fulfills encoding.BinaryMarshaler.  The format is msgpack.
func (p *Payload) MarshalBinary() ([]byte, error) {
	type payload Payload
	raw, err := msgpack.Marshal((*payload)(p))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to marshal payload")
	}
	return raw, nil
}

// UnmarshalBinary fulfills encoding.BinaryUnmarshaler.
func (p *Payload) UnmarshalBinary(raw []byte) error {
	type payload Payload
	var tmp payload
	if err := msgpack.Unmarshal(raw, &tmp); err != nil {
		return errors.Wrap(newError(KindInvalidArgument, err.Error()), "Failed to unmarshal payload")
	}
	*p = Payload(tmp)
	return nil
}

var (
	_ encoding.BinaryMarshaler   = (*Payload)(nil)
	_ encoding.BinaryUnmarshaler = (*Payload)(nil)
)
