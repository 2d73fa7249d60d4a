package huffman

import (
	"io"

	"github.com/pkg/errors"
)

// WriteTree writes t in preorder: an internal node is a 1 bit followed by its
// left and right subtrees, a leaf is a 0 bit followed by its symbol in
// SymbolBits bits.
func (t *Tree) WriteTree(w BitWriter) error {
	stack := []int32{t.root}
	for len(stack) > 0 {
		n := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if n.leaf {
			if err := w.WriteBit(0); err != nil {
				return err
			}
			if err := w.WriteBits(uint64(n.symbol), SymbolBits); err != nil {
				return err
			}
			continue
		}

		if err := w.WriteBit(1); err != nil {
			return err
		}
		stack = append(stack, n.right, n.left)
	}
	return nil
}

// ReadTree reads a tree written by WriteTree. It consumes exactly the bits of
// the tree, leaving r positioned at whatever follows.
func ReadTree(r BitReader) (*Tree, error) {
	t := &Tree{}
	hasEnd := false

	// open holds internal nodes that are still waiting for a child.
	var open []int32
	for {
		if len(t.nodes) == maxNodes {
			return nil, errors.WithStack(ErrTooManyNodes)
		}

		flag, err := r.ReadBit()
		if err != nil {
			return nil, truncated(err, len(t.nodes))
		}

		var idx int32
		if flag == 0 {
			value, err := r.ReadBits(SymbolBits)
			if err != nil {
				return nil, truncated(err, len(t.nodes))
			}
			if value > uint64(End) {
				return nil, errors.Wrapf(ErrBadSymbol, "leaf value %d", value)
			}
			sym := Symbol(value)
			hasEnd = hasEnd || sym == End
			idx = t.addLeaf(sym)
		} else {
			idx = t.addInternal(-1, -1)
		}

		if len(open) == 0 {
			t.root = idx
		} else {
			parent := &t.nodes[open[len(open)-1]]
			if parent.left < 0 {
				parent.left = idx
			} else {
				parent.right = idx
				open = open[:len(open)-1]
			}
		}

		if flag != 0 {
			open = append(open, idx)
		}
		if len(open) == 0 {
			break
		}
	}

	if !hasEnd {
		return nil, errors.WithStack(ErrNoEnd)
	}
	return t, nil
}

func truncated(err error, nodes int) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrTruncated, "after %d nodes", nodes)
	}
	return err
}
