package huffman

import (
	"container/heap"
	"slices"
)

// Tree is a Huffman code tree.
//
// Nodes live in a flat arena and refer to their children by index, so every
// traversal is a loop over an explicit stack. A Tree is immutable once built.
type Tree struct {
	nodes []node
	root  int32
}

type node struct {
	leaf        bool
	symbol      Symbol // valid for leaves
	left, right int32  // valid for internal nodes
}

func (t *Tree) addLeaf(sym Symbol) int32 {
	t.nodes = append(t.nodes, node{leaf: true, symbol: sym, left: -1, right: -1})
	return int32(len(t.nodes) - 1)
}

func (t *Tree) addInternal(left, right int32) int32 {
	t.nodes = append(t.nodes, node{left: left, right: right})
	return int32(len(t.nodes) - 1)
}

// Build creates the Huffman tree for freqs.
//
// End is added with a count of one, so Build always succeeds, also for an
// empty table. Symbols with a zero count are left out. freqs is not modified.
//
// Ties between equal weights are broken by creation order: leaves are created
// in ascending symbol order, followed by internal nodes as they are merged.
// Of the two nodes merged, the one taken first becomes the left child.
func Build(freqs Frequencies) *Tree {
	augmented := freqs.withEnd()

	symbols := make([]Symbol, 0, len(augmented))
	for sym, count := range augmented {
		if sym > End || count == 0 {
			continue
		}
		symbols = append(symbols, sym)
	}
	slices.Sort(symbols)

	t := &Tree{nodes: make([]node, 0, 2*len(symbols)-1)}
	h := make(buildHeap, 0, len(symbols))
	for _, sym := range symbols {
		h = append(h, buildItem{weight: augmented[sym], node: t.addLeaf(sym)})
	}
	heap.Init(&h)

	for h.Len() > 1 {
		a := heap.Pop(&h).(buildItem)
		b := heap.Pop(&h).(buildItem)
		heap.Push(&h, buildItem{
			weight: a.weight + b.weight,
			node:   t.addInternal(a.node, b.node),
		})
	}
	t.root = heap.Pop(&h).(buildItem).node
	return t
}

// Leaves returns the number of symbols in the tree.
func (t *Tree) Leaves() int {
	leaves := 0
	for _, n := range t.nodes {
		if n.leaf {
			leaves++
		}
	}
	return leaves
}

// Depth returns the length of the longest codeword.
func (t *Tree) Depth() int {
	type frame struct {
		node  int32
		depth int
	}

	deepest := 0
	stack := []frame{{t.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[f.node]
		if n.leaf {
			deepest = max(deepest, f.depth)
			continue
		}
		stack = append(stack, frame{n.left, f.depth + 1}, frame{n.right, f.depth + 1})
	}
	return deepest
}

// buildHeap is a min-heap of subtrees ordered by weight, then by node index.
// Node indices grow with creation order, which makes the merge order stable.
type buildItem struct {
	weight uint64
	node   int32
}

type buildHeap []buildItem

func (h buildHeap) Len() int { return len(h) }
func (h buildHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	return h[i].node < h[j].node
}
func (h buildHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *buildHeap) Push(x any) {
	*h = append(*h, x.(buildItem))
}

func (h *buildHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
