package bitio

import (
	"bufio"
	"io"

	"github.com/dgryski/go-bitstream"
	"github.com/pkg/errors"
)

// Writer writes individual bits to an io.Writer.
//
// Output is buffered; Flush must be called once all bits are written.
type Writer struct {
	buf     *bufio.Writer
	bits    *bitstream.BitWriter
	written int64
}

// NewWriter creates a buffered bit writer over w.
func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriter(w)
	return &Writer{
		buf:  buf,
		bits: bitstream.NewWriter(buf),
	}
}

// WriteBit writes the low bit of bit.
func (w *Writer) WriteBit(bit byte) error {
	if err := w.bits.WriteBit(bit&1 == 1); err != nil {
		return errors.WithStack(err)
	}
	w.written++
	return nil
}

// WriteBits writes the low n bits of value, most significant first.
func (w *Writer) WriteBits(value uint64, n int) error {
	if n < 0 || n > 64 {
		return errors.Errorf("bitio: cannot write %d bits", n)
	}
	if err := w.bits.WriteBits(value, n); err != nil {
		return errors.WithStack(err)
	}
	w.written += int64(n)
	return nil
}

// Flush pads the last partial byte with zeros and flushes the buffer.
// Bits written after Flush start on a fresh byte.
func (w *Writer) Flush() error {
	if err := w.bits.Flush(bitstream.Zero); err != nil {
		return errors.WithStack(err)
	}
	if err := w.buf.Flush(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// BitsWritten returns the number of bits written, not counting padding.
func (w *Writer) BitsWritten() int64 {
	return w.written
}
