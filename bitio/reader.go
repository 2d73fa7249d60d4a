// Package bitio implements the bit level ports used by the Grin codec.
//
// Bits are read and written most significant bit first. A Writer pads the
// final partial byte with zero bits when flushed; a Reader has no way to tell
// padding from data, so formats built on it must be self terminating.
package bitio

import (
	"bufio"
	"io"

	"github.com/dgryski/go-bitstream"
	"github.com/pkg/errors"
)

// Reader reads individual bits from an io.Reader.
type Reader struct {
	bits *bitstream.BitReader

	peeked bool // next holds a bit consumed by HasMoreBits
	next   byte
	err    error // sticky error seen by HasMoreBits
	read   int64
}

// NewReader creates a buffered bit reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{bits: bitstream.NewReader(bufio.NewReader(r))}
}

// ReadBit returns the next bit as 0 or 1.
// It returns io.EOF when the source has no more bits.
func (r *Reader) ReadBit() (byte, error) {
	if r.peeked {
		r.peeked = false
		r.read++
		return r.next, nil
	}
	bit, err := r.readBit()
	if err != nil {
		return 0, err
	}
	r.read++
	return bit, nil
}

func (r *Reader) readBit() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}

	bit, err := r.bits.ReadBit()
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, errors.WithStack(err)
	}
	if bit == bitstream.One {
		return 1, nil
	}
	return 0, nil
}

// ReadBits reads n bits, n <= 64, and returns them as an unsigned value with
// the first bit read in the most significant position.
//
// It returns io.EOF when no bit could be read and io.ErrUnexpectedEOF when
// the source ended after some, but not all, of the bits.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, errors.Errorf("bitio: cannot read %d bits", n)
	}

	var value uint64
	for i := 0; i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			if err == io.EOF && i > 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		value = (value << 1) | uint64(bit)
	}
	return value, nil
}

// HasMoreBits reports whether another bit can be read.
func (r *Reader) HasMoreBits() bool {
	if r.peeked {
		return true
	}
	bit, err := r.readBit()
	if err != nil {
		r.err = err
		return false
	}
	r.next, r.peeked = bit, true
	return true
}

// BitsRead returns the number of bits returned by ReadBit and ReadBits.
func (r *Reader) BitsRead() int64 {
	return r.read
}
