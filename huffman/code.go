package huffman

import (
	"io"

	"github.com/pkg/errors"
)

// Code is a codeword: the path from the root to a leaf, one bit per element,
// 0 for the left child and 1 for the right child.
type Code []byte

func (c Code) String() string {
	s := make([]byte, len(c))
	for i, bit := range c {
		s[i] = '0' + bit
	}
	return string(s)
}

// CodeTable maps every symbol to its codeword.
// Symbols not in the tree have a nil Code. A tree consisting of a single
// leaf gives that leaf an empty, non-nil Code.
type CodeTable [NumSymbols]Code

// Codes returns the codeword of every leaf in t.
func (t *Tree) Codes() *CodeTable {
	type frame struct {
		node int32
		code Code
	}

	var table CodeTable
	stack := []frame{{t.root, Code{}}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[f.node]
		if n.leaf {
			table[n.symbol] = f.code
			continue
		}
		stack = append(stack,
			frame{n.right, extend(f.code, 1)},
			frame{n.left, extend(f.code, 0)})
	}
	return &table
}

func extend(code Code, bit byte) Code {
	next := make(Code, len(code)+1)
	copy(next, code)
	next[len(code)] = bit
	return next
}

func (table *CodeTable) write(w BitWriter, sym Symbol) error {
	code := table[sym]
	if code == nil {
		return errors.Wrapf(ErrUnknownSymbol, "symbol %d", sym)
	}
	for _, bit := range code {
		if err := w.WriteBit(bit); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the codeword of every byte of r, followed by the codeword of End.
func (t *Tree) Encode(r io.ByteReader, w BitWriter) error {
	codes := t.Codes()
	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := codes.write(w, Symbol(b)); err != nil {
			return err
		}
	}
	return codes.write(w, End)
}

// Decode reads codewords from r and writes the decoded bytes to w until it
// reaches End. Bits after End, such as padding, are not read.
//
// When r runs out before End, the bytes decoded so far have been written and
// Decode returns ErrMissingEnd.
func (t *Tree) Decode(r BitReader, w io.ByteWriter) error {
	root := t.nodes[t.root]
	if root.leaf {
		// no bit selects a child, the only decodable payload is End itself
		if root.symbol == End {
			return nil
		}
		return errors.WithStack(ErrNoEnd)
	}

	current := root
	for {
		bit, err := r.ReadBit()
		if err == io.EOF {
			return ErrMissingEnd
		}
		if err != nil {
			return err
		}

		if bit == 0 {
			current = t.nodes[current.left]
		} else {
			current = t.nodes[current.right]
		}
		if !current.leaf {
			continue
		}

		if current.symbol == End {
			return nil
		}
		if err := w.WriteByte(byte(current.symbol)); err != nil {
			return err
		}
		current = root
	}
}
