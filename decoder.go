package piston

import (
	"bytes"
	"fmt"
	"io"
)

// Decoder decodes Huffman-coded bits using a binary trie built from a
// CodeTable.
type Decoder struct {
	table *CodeTable
	nodes []trieNode
}

// trieNode is either a branch, with children indexed by bit value, or a leaf
// holding a symbol.  A zero child index means "no such child": index 0 is
// the root, which is nobody's child.
type trieNode struct {
	child  [2]uint32
	symbol Symbol
	leaf   bool
}

// NewDecoder creates a Decoder for table.  Tables produced by DeriveCodeTable
// and NewCodeTable are always prefix-free, so this cannot fail.
func NewDecoder(table *CodeTable) *Decoder {
	d, err := newTrie(table)
	if err != nil {
		panic(err)
	}
	return d
}

func newTrie(table *CodeTable) (*Decoder, error) {
	// a complete prefix code with n symbols has 2n-1 nodes
	capacity := 1
	if n := table.Len(); n > 1 {
		capacity = 2*n - 1
	}

	d := &Decoder{
		table: table,
		nodes: make([]trieNode, 1, capacity),
	}

	for symbol := 0; symbol < NumSymbols; symbol++ {
		hc, found := table.Lookup(Symbol(symbol))
		if !found {
			continue
		}
		if err := d.insert(Symbol(symbol), hc); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Decoder) insert(symbol Symbol, hc Code) error {
	var index uint32
	for depth, bit := range hc {
		if d.nodes[index].leaf {
			other := d.nodes[index].symbol
			return newError(KindInvalidArgument, fmt.Sprintf("code for symbol %d has the code for symbol %d as a prefix", symbol, other))
		}

		b := bitIndex(bit)
		next := d.nodes[index].child[b]
		if next == 0 {
			next = uint32(len(d.nodes))
			d.nodes = append(d.nodes, trieNode{})
			d.nodes[index].child[b] = next
		} else if depth == len(hc)-1 {
			return newError(KindInvalidArgument, fmt.Sprintf("code for symbol %d is a prefix of another code", symbol))
		}
		index = next
	}

	d.nodes[index].leaf = true
	d.nodes[index].symbol = symbol
	return nil
}

// Table returns the CodeTable this Decoder was built from.
func (d *Decoder) Table() *CodeTable {
	return d.table
}

// Decode decodes exactly count symbols from bits.  Bits left over after the
// last symbol are padding and are ignored.
//
// It is a DataCorruption error if the bits run out before count symbols have
// been produced, or if the bits spell out a path that is not in the table.
//
func (d *Decoder) Decode(bits *BitBuffer, count int) ([]byte, error) {
	if count == 0 {
		return []byte{}, nil
	}
	if d.table.Len() == 0 {
		return nil, newError(KindInvalidArgument, fmt.Sprintf("cannot decode %d symbols with an empty code table", count))
	}

	out := make([]byte, 0, count)
	numBits := bits.Len()
	var index uint32
	for position := 0; position < numBits; position++ {
		next := d.nodes[index].child[bitIndex(bits.Bit(position))]
		if next == 0 {
			return nil, newError(KindDataCorruption, fmt.Sprintf("bit %d after %d symbols does not continue any code", position, len(out)))
		}

		if !d.nodes[next].leaf {
			index = next
			continue
		}

		out = append(out, byte(d.nodes[next].symbol))
		if len(out) == count {
			return out, nil
		}
		index = 0
	}

	return nil, newError(KindDataCorruption, fmt.Sprintf("bits exhausted after %d of %d symbols", len(out), count))
}

// Dump writes a programmer-readable debugging dump of the Decoder's current
// state to the given writer.
func (d *Decoder) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Decoder{\n")
	fmt.Fprintf(&buf, "\tMinSize() = %d\n", d.table.MinSize())
	fmt.Fprintf(&buf, "\tMaxSize() = %d\n", d.table.MaxSize())

	// walk the trie in preorder so that codes are listed lexicographically
	type stackItem struct {
		index uint32
		path  Code
	}
	stack := []stackItem{{index: 0, path: Code{}}}
	for len(stack) != 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := d.nodes[top.index]
		if node.leaf {
			fmt.Fprintf(&buf, "\tDecode(%s) = %d\n", top.path, node.symbol)
			continue
		}
		if top.index != 0 || d.table.Len() != 0 {
			fmt.Fprintf(&buf, "\tDecode(%s) = nil\n", top.path)
		}
		for b := 1; b >= 0; b-- {
			if child := node.child[b]; child != 0 {
				stack = append(stack, stackItem{index: child, path: top.path.Append(b == 1)})
			}
		}
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

func bitIndex(bit bool) int {
	if bit {
		return 1
	}
	return 0
}
