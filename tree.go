package piston

import (
	"container/heap"
	"fmt"

	"github.com/chronos-tachyon/assert"
)

// Node is a node of a Huffman tree: either a *Leaf or an *Internal.
type Node interface {
	fmt.Stringer

	// Frequency returns the summed frequency of every leaf in the subtree.
	Frequency() uint64

	isNode()
}

// Leaf is a Node that holds one Symbol of the alphabet.
type Leaf struct {
	Symbol Symbol
	Freq   uint64
}

// Internal is a Node with exactly two children.  Its Freq is always the sum of
// the frequencies of Left and Right.
type Internal struct {
	Freq  uint64
	Left  Node
	Right Node
}

// Frequency fulfills Node.
func (leaf *Leaf) Frequency() uint64 { return leaf.Freq }

// Frequency fulfills Node.
func (node *Internal) Frequency() uint64 { return node.Freq }

func (*Leaf) isNode()     {}
func (*Internal) isNode() {}

// String returns a Lisp-like rendering of the leaf.
func (leaf *Leaf) String() string {
	return fmt.Sprintf("(Leaf %d %q)", leaf.Freq, rune(leaf.Symbol))
}

// String returns a Lisp-like rendering of the subtree.
func (node *Internal) String() string {
	return fmt.Sprintf("(Internal %d %s %s)", node.Freq, node.Left, node.Right)
}

// BuildTree builds a Huffman tree for the given frequencies by repeatedly
// merging the two lowest-frequency pending nodes.  It returns nil if the table
// is empty.  A table with a single symbol yields a lone *Leaf.
//
// Ties are broken by order of creation: leaves come first, in ascending symbol
// order, followed by internal nodes in the order they were merged.  The first
// node popped from the heap becomes the left child.
//
func BuildTree(freqs *FrequencyTable) Node {
	numLeaves := freqs.Len()
	if numLeaves == 0 {
		return nil
	}

	// Step 1: build a minheap with one leaf per symbol.

	items := make([]heapItem, 0, numLeaves)
	for _, symbol := range freqs.Symbols() {
		items = append(items, heapItem{
			node:  &Leaf{Symbol: symbol, Freq: freqs.Count(symbol)},
			order: uint32(symbol),
		})
	}
	h := nodeHeap{items}
	h.Init()

	// Step 2: pop two, merge, push back, until one node remains.
	//
	// Merged nodes get order keys starting at NumSymbols, so that they sort
	// after every leaf of equal frequency.

	nextOrder := uint32(NumSymbols)
	numInternals := 0
	for h.Len() > 1 {
		a := heap.Pop(&h).(heapItem)
		b := heap.Pop(&h).(heapItem)

		freqSum := a.node.Frequency() + b.node.Frequency()
		assert.Assertf(freqSum >= a.node.Frequency(), "BuildTree: frequency overflow merging %d and %d", a.node.Frequency(), b.node.Frequency())

		merged := &Internal{Freq: freqSum, Left: a.node, Right: b.node}
		heap.Push(&h, heapItem{node: merged, order: nextOrder})
		nextOrder++
		numInternals++
	}

	root := heap.Pop(&h).(heapItem).node
	assert.Assertf(numInternals == numLeaves-1, "BuildTree: %d internal nodes for %d leaves", numInternals, numLeaves)
	assert.Assertf(root.Frequency() == freqs.Total(), "BuildTree: root frequency %d != total %d", root.Frequency(), freqs.Total())
	return root
}

// CountNodes returns the number of leaves and internal nodes in the tree
// rooted at root.  A nil root has neither.
func CountNodes(root Node) (leaves int, internals int) {
	if root == nil {
		return 0, 0
	}
	stack := []Node{root}
	for len(stack) != 0 {
		last := len(stack) - 1
		top := stack[last]
		stack[last] = nil
		stack = stack[:last]

		switch node := top.(type) {
		case *Leaf:
			leaves++
		case *Internal:
			internals++
			stack = append(stack, node.Right, node.Left)
		}
	}
	return leaves, internals
}

// type heapItem + type nodeHeap {{{

type heapItem struct {
	node  Node
	order uint32
}

type nodeHeap struct {
	list []heapItem
}

func (h *nodeHeap) Init() {
	heap.Init(h)
}

func (h *nodeHeap) Len() int {
	return len(h.list)
}

func (h *nodeHeap) Swap(i, j int) {
	h.list[i], h.list[j] = h.list[j], h.list[i]
}

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.list[i], h.list[j]
	if af, bf := a.node.Frequency(), b.node.Frequency(); af != bf {
		return af < bf
	}
	return a.order < b.order
}

func (h *nodeHeap) Push(x interface{}) {
	h.list = append(h.list, x.(heapItem))
}

func (h *nodeHeap) Pop() interface{} {
	last := uint(len(h.list)) - 1
	x := h.list[last]
	h.list[last] = heapItem{}
	h.list = h.list[:last]
	return x
}

var _ heap.Interface = (*nodeHeap)(nil)

// }}}
