package piston

import (
	"bytes"
	"fmt"
	"io"
)

// FrequencyTable counts the occurrences of each Symbol in an input.
type FrequencyTable struct {
	counts   [NumSymbols]uint64
	distinct int
	total    uint64
}

// CountFrequencies scans data once and returns its FrequencyTable.  An empty
// input yields an empty table.
func CountFrequencies(data []byte) FrequencyTable {
	var ft FrequencyTable
	for _, ch := range data {
		if ft.counts[ch] == 0 {
			ft.distinct++
		}
		ft.counts[ch]++
	}
	ft.total = uint64(len(data))
	return ft
}

// Count returns the number of occurrences of symbol.
func (ft *FrequencyTable) Count(symbol Symbol) uint64 {
	return ft.counts[symbol]
}

// Len returns the number of distinct symbols, i.e. the size of the alphabet.
func (ft *FrequencyTable) Len() int {
	return ft.distinct
}

// Total returns the total number of symbols counted.
func (ft *FrequencyTable) Total() uint64 {
	return ft.total
}

// Symbols returns the alphabet in ascending order.
func (ft *FrequencyTable) Symbols() []Symbol {
	out := make([]Symbol, 0, ft.distinct)
	for symbol := 0; symbol < NumSymbols; symbol++ {
		if ft.counts[symbol] != 0 {
			out = append(out, Symbol(symbol))
		}
	}
	return out
}

// Dump writes a programmer-readable debugging dump of the table to the given
// writer.
func (ft *FrequencyTable) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("FrequencyTable{\n")
	fmt.Fprintf(&buf, "\tLen() = %d\n", ft.distinct)
	fmt.Fprintf(&buf, "\tTotal() = %d\n", ft.total)
	for _, symbol := range ft.Symbols() {
		fmt.Fprintf(&buf, "\tCount(%d) = %d\n", symbol, ft.counts[symbol])
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}
