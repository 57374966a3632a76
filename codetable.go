package piston

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Entry is one (symbol, path) pair of a CodeTable.  A list of Entries sorted by
// Symbol is the wire representation of a CodeTable.
type Entry struct {
	Symbol Symbol `json:"symbol" msgpack:"symbol"`
	Path   Code   `json:"path" msgpack:"path"`
}

// CodeTable maps each Symbol of an alphabet to its Huffman code.  It is
// immutable once constructed.
type CodeTable struct {
	codes   [NumSymbols]Code
	size    int
	minSize int
	maxSize int
}

// DeriveCodeTable walks the tree rooted at root and records the path to every
// leaf.  A nil root yields an empty table.  A root that is itself a *Leaf is
// assigned the one-bit code "0", so that every encoded symbol consumes at
// least one bit.
//
func DeriveCodeTable(root Node) *CodeTable {
	ct := &CodeTable{}
	if root == nil {
		return ct
	}

	if leaf, ok := root.(*Leaf); ok {
		ct.add(leaf.Symbol, MakeCode("0"))
		return ct
	}

	// Walk the tree with an explicit stack.  The stack holds only internal
	// nodes; its depth is the length of the code being built.
	//
	// We use stackItem.x to keep track of where we are in the tree walk:
	//   x=0 → We just arrived at stackItem for the first time
	//   x=1 → We have already processed the left child
	//   x=2 → We have already processed both children

	type stackItem struct {
		node *Internal
		path Code
		x    byte
	}

	stack := make([]stackItem, 0, 16)

	processChild := func(child Node, path Code) {
		switch node := child.(type) {
		case *Leaf:
			ct.add(node.Symbol, path)
		case *Internal:
			stack = append(stack, stackItem{node: node, path: path})
		}
	}

	stack = append(stack, stackItem{node: root.(*Internal), path: Code{}})
	for len(stack) != 0 {
		top := &stack[len(stack)-1]
		x := top.x
		top.x++
		switch x {
		case 0:
			processChild(top.node.Left, top.path.Append(false))
		case 1:
			processChild(top.node.Right, top.path.Append(true))
		case 2:
			stack[len(stack)-1] = stackItem{}
			stack = stack[:len(stack)-1]
		}
	}
	return ct
}

// NewCodeTable reconstructs a CodeTable from its wire representation.  The
// entries may come in any order.  It is an InvalidArgument error for an
// entry to have an empty path, for a symbol to appear twice, or for one path
// to be a prefix of another.
//
func NewCodeTable(entries []Entry) (*CodeTable, error) {
	ct := &CodeTable{}
	for _, entry := range entries {
		if len(entry.Path) == 0 {
			return nil, newError(KindInvalidArgument, fmt.Sprintf("symbol %d has an empty code", entry.Symbol))
		}
		if len(ct.codes[entry.Symbol]) != 0 {
			return nil, newError(KindInvalidArgument, fmt.Sprintf("symbol %d appears more than once", entry.Symbol))
		}
		ct.add(entry.Symbol, append(Code(nil), entry.Path...))
	}

	// building the trie detects codes that are prefixes of one another
	if _, err := newTrie(ct); err != nil {
		return nil, err
	}
	return ct, nil
}

func (ct *CodeTable) add(symbol Symbol, hc Code) {
	size := len(hc)
	if ct.size == 0 {
		ct.minSize, ct.maxSize = size, size
	} else if ct.minSize > size {
		ct.minSize = size
	} else if ct.maxSize < size {
		ct.maxSize = size
	}
	ct.codes[symbol] = hc
	ct.size++
}

// Lookup returns the code for symbol, if the symbol is part of the alphabet.
func (ct *CodeTable) Lookup(symbol Symbol) (Code, bool) {
	hc := ct.codes[symbol]
	return hc, len(hc) != 0
}

// Len returns the number of symbols in the table.
func (ct *CodeTable) Len() int {
	return ct.size
}

// MinSize is the bit length of the shortest code.
func (ct *CodeTable) MinSize() int {
	return ct.minSize
}

// MaxSize is the bit length of the longest code.
func (ct *CodeTable) MaxSize() int {
	return ct.maxSize
}

// Entries returns the table's wire representation, sorted by Symbol.
func (ct *CodeTable) Entries() []Entry {
	out := make([]Entry, 0, ct.size)
	for symbol := 0; symbol < NumSymbols; symbol++ {
		if hc := ct.codes[symbol]; len(hc) != 0 {
			out = append(out, Entry{Symbol: Symbol(symbol), Path: append(Code(nil), hc...)})
		}
	}
	return out
}

// EncodedBits returns the number of bits needed to encode an input with the
// given frequencies using this table.  Symbols missing from the table are
// not counted.
func (ct *CodeTable) EncodedBits(freqs *FrequencyTable) uint64 {
	var sum uint64
	for _, symbol := range freqs.Symbols() {
		sum += freqs.Count(symbol) * uint64(len(ct.codes[symbol]))
	}
	return sum
}

// Dump writes a programmer-readable debugging dump of the table to the given
// writer.
func (ct *CodeTable) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("CodeTable{\n")
	fmt.Fprintf(&buf, "\tMinSize() = %d\n", ct.minSize)
	fmt.Fprintf(&buf, "\tMaxSize() = %d\n", ct.maxSize)
	for symbol := 0; symbol < NumSymbols; symbol++ {
		if hc := ct.codes[symbol]; len(hc) != 0 {
			fmt.Fprintf(&buf, "\tLookup(%d) = %s\n", symbol, hc)
		}
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

// String returns a brief description of the table.
func (ct *CodeTable) String() string {
	if ct.size == 0 {
		return "(empty Huffman code table)"
	}
	return fmt.Sprintf("(Huffman code table with %d symbols, with coded lengths of %d .. %d bits)", ct.size, ct.minSize, ct.maxSize)
}

// MarshalJSON fulfills json.Marshaler.
func (ct *CodeTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.Entries())
}

// UnmarshalJSON fulfills json.Unmarshaler.
func (ct *CodeTable) UnmarshalJSON(raw []byte) error {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return newError(KindInvalidArgument, err.Error())
	}
	parsed, err := NewCodeTable(entries)
	if err != nil {
		return err
	}
	*ct = *parsed
	return nil
}

// IsPrefixFree reports whether no entry's path is a prefix of another entry's
// path.  Duplicate paths are not prefix-free.
func IsPrefixFree(entries []Entry) bool {
	sorted := make([]Code, 0, len(entries))
	for _, entry := range entries {
		sorted = append(sorted, entry.Path)
	}
	sort.Sort(byDigits(sorted))

	// after sorting, a prefix always sorts immediately before some code
	// that extends it
	for index := 1; index < len(sorted); index++ {
		if sorted[index].HasPrefix(sorted[index-1]) {
			return false
		}
	}
	return true
}

// type byDigits {{{

type byDigits []Code

func (list byDigits) Len() int {
	return len(list)
}

func (list byDigits) Swap(i, j int) {
	list[i], list[j] = list[j], list[i]
}

func (list byDigits) Less(i, j int) bool {
	return list[i].Digits() < list[j].Digits()
}

var _ sort.Interface = byDigits(nil)

// }}}

var (
	_ fmt.Stringer     = (*CodeTable)(nil)
	_ json.Marshaler   = (*CodeTable)(nil)
	_ json.Unmarshaler = (*CodeTable)(nil)
)
