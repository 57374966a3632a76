package piston

import (
	"bytes"
	"fmt"
	"io"
)

// Encoder implements an encoder for Huffman codes built from the frequencies
// of a single input.
type Encoder struct {
	table *CodeTable
	root  Node
}

// NewEncoder is a convenience function that allocates and initializes an
// Encoder.
func NewEncoder(freqs *FrequencyTable) *Encoder {
	e := &Encoder{}
	e.Init(freqs)
	return e
}

// Init initializes this Encoder.  It builds the Huffman tree for freqs and
// derives the code table from it.  An empty FrequencyTable produces an
// Encoder with an empty table, which can only encode empty inputs.
//
func (e *Encoder) Init(freqs *FrequencyTable) {
	root := BuildTree(freqs)
	*e = Encoder{
		table: DeriveCodeTable(root),
		root:  root,
	}
}

// Table returns the code table used by this Encoder.
func (e *Encoder) Table() *CodeTable {
	return e.table
}

// Tree returns the root of the Huffman tree the table was derived from, or nil
// if the alphabet is empty.
func (e *Encoder) Tree() Node {
	return e.root
}

// Encode appends the code for every byte of data to a fresh BitBuffer.
//
// It is an InternalConsistency error for data to contain a symbol that is
// absent from the table.  That cannot happen when the table was built from
// the frequencies of data itself.
//
func (e *Encoder) Encode(data []byte) (*BitBuffer, error) {
	return Encode(data, e.table)
}

// Encode appends the code for every byte of data to a fresh BitBuffer, using
// table.
func Encode(data []byte, table *CodeTable) (*BitBuffer, error) {
	bb := NewBitBuffer(len(data) * table.MinSize())
	for position, ch := range data {
		hc, found := table.Lookup(Symbol(ch))
		if !found {
			return nil, newError(KindInternalConsistency, fmt.Sprintf("symbol %d at offset %d has no code", ch, position))
		}
		bb.AppendCode(hc)
	}
	return bb, nil
}

// Dump writes a programmer-readable debugging dump of the Encoder's current
// state to the given writer.
func (e *Encoder) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Encoder{\n")
	fmt.Fprintf(&buf, "\tMinSize() = %d\n", e.table.MinSize())
	fmt.Fprintf(&buf, "\tMaxSize() = %d\n", e.table.MaxSize())
	if e.root == nil {
		buf.WriteString("\tTree() = nil\n")
	} else {
		fmt.Fprintf(&buf, "\tTree() = %s\n", e.root)
	}
	for symbol := 0; symbol < NumSymbols; symbol++ {
		if hc, found := e.table.Lookup(Symbol(symbol)); found {
			fmt.Fprintf(&buf, "\tEncode(%d) = %s\n", symbol, hc)
		}
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}
