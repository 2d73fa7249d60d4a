// Package huffman implements a static Huffman code over byte values.
//
// The alphabet has 257 symbols: the 256 byte values and End, which marks
// the end of an encoded payload. A Tree is built from byte frequencies or
// read back from its preorder serialization, and is then used to encode
// bytes into codewords and decode codewords back into bytes.
package huffman

import (
	"github.com/pkg/errors"
)

// Symbol is a byte value or End.
type Symbol uint16

const (
	// End terminates every encoded payload. It never appears in decoded output.
	End Symbol = 256
	// NumSymbols is the size of the alphabet, including End.
	NumSymbols = 257
	// SymbolBits is the width of a symbol in the serialized tree.
	SymbolBits = 9
)

// maxNodes is the size of a full binary tree with NumSymbols leaves.
const maxNodes = 2*NumSymbols - 1

var (
	// ErrTruncated is returned when the bit source ends inside a serialized tree.
	ErrTruncated = errors.New("huffman: truncated tree")
	// ErrBadSymbol is returned for a serialized leaf outside the alphabet.
	ErrBadSymbol = errors.New("huffman: symbol out of range")
	// ErrTooManyNodes is returned for a serialized tree larger than any valid tree.
	ErrTooManyNodes = errors.New("huffman: too many nodes")
	// ErrNoEnd is returned for a serialized tree without an End leaf.
	ErrNoEnd = errors.New("huffman: tree has no end symbol")
	// ErrMissingEnd is returned when a payload ends before its End codeword.
	ErrMissingEnd = errors.New("huffman: payload ended before end symbol")
	// ErrUnknownSymbol is returned when encoding a byte the tree has no leaf for.
	ErrUnknownSymbol = errors.New("huffman: symbol not in tree")
)

// Frequencies maps byte values to their number of occurrences.
//
// Only literal byte values belong in the table; Build adds End itself.
type Frequencies map[Symbol]uint64

// Total returns the sum of all counts.
func (f Frequencies) Total() uint64 {
	var total uint64
	for _, count := range f {
		total += count
	}
	return total
}

// withEnd returns a copy of f that also contains End with a count of one.
func (f Frequencies) withEnd() Frequencies {
	augmented := make(Frequencies, len(f)+1)
	for sym, count := range f {
		augmented[sym] = count
	}
	augmented[End] = 1
	return augmented
}

// BitReader is the bit source consumed by ReadTree and Decode.
// ReadBit and ReadBits return io.EOF when the source is exhausted.
type BitReader interface {
	ReadBit() (byte, error)
	ReadBits(n int) (uint64, error)
}

// BitWriter is the bit sink used by WriteTree and Encode.
type BitWriter interface {
	WriteBit(bit byte) error
	WriteBits(value uint64, n int) error
}
