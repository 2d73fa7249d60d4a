// Package grin implements the Grin file format: a static Huffman code of a
// single file.
//
// A Grin file is a 32-bit magic number, the preorder serialization of the
// Huffman tree, and the codewords of the input bytes followed by the End
// codeword. All fields are bit packed, most significant bit first, and the
// last byte is zero padded.
package grin

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/egonelbre/exp-grin-compression/bitio"
	"github.com/egonelbre/exp-grin-compression/huffman"
)

// Magic identifies a Grin file. It is stored in a 32-bit field.
const Magic uint32 = 0x736

const magicBits = 32

// ErrFormat is returned when decoding input that does not start with Magic.
var ErrFormat = errors.New("grin: not a grin file")

// Stats describes a finished encode or decode.
type Stats struct {
	PlainBytes  int64  // size of the uncompressed data
	PackedBytes int64  // size of the Grin data, including padding
	Leaves      int    // symbols in the Huffman tree, End included
	Checksum    uint64 // xxhash64 of the uncompressed data
}

// Ratio returns PackedBytes relative to PlainBytes.
func (s Stats) Ratio() float64 {
	if s.PlainBytes == 0 {
		return 0
	}
	return float64(s.PackedBytes) / float64(s.PlainBytes)
}

// Codec encodes and decodes Grin data.
// The zero value is ready to use.
type Codec struct {
	// Strict makes Decode fail when the payload ends without an End codeword.
	// Otherwise the bytes decoded up to that point are kept, as in the
	// original Grin tools.
	Strict bool
	// Logger receives debug events; nil means slog.Default().
	Logger *slog.Logger
}

func (c Codec) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// CountFrequencies counts the occurrences of every byte value in r.
// Byte values that do not occur are not in the result.
func CountFrequencies(r io.Reader) (huffman.Frequencies, error) {
	var counts [256]uint64
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			counts[b]++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	freqs := huffman.Frequencies{}
	for b, count := range counts {
		if count > 0 {
			freqs[huffman.Symbol(b)] = count
		}
	}
	return freqs, nil
}

// Encode compresses src into dst.
//
// src is read twice, once to count byte frequencies and once more, after
// seeking back to the start, to encode the payload.
func (c Codec) Encode(src io.ReadSeeker, dst io.Writer) (Stats, error) {
	digest := xxhash.New()
	freqs, err := CountFrequencies(io.TeeReader(src, digest))
	if err != nil {
		return Stats{}, errors.Wrap(err, "grin: counting frequencies")
	}
	tree := huffman.Build(freqs)

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return Stats{}, errors.Wrap(err, "grin: rewinding input")
	}

	w := bitio.NewWriter(dst)
	if err := w.WriteBits(uint64(Magic), magicBits); err != nil {
		return Stats{}, errors.Wrap(err, "grin: writing magic")
	}
	if err := tree.WriteTree(w); err != nil {
		return Stats{}, errors.Wrap(err, "grin: writing tree")
	}
	treeBits := w.BitsWritten() - magicBits
	if err := tree.Encode(bufio.NewReader(src), w); err != nil {
		return Stats{}, errors.Wrap(err, "grin: encoding payload")
	}
	payloadBits := w.BitsWritten() - magicBits - treeBits
	if err := w.Flush(); err != nil {
		return Stats{}, errors.Wrap(err, "grin: flushing output")
	}

	stats := Stats{
		PlainBytes:  int64(freqs.Total()),
		PackedBytes: (w.BitsWritten() + 7) / 8,
		Leaves:      tree.Leaves(),
		Checksum:    digest.Sum64(),
	}
	c.logger().Debug("grinEncode",
		"plain", stats.PlainBytes,
		"packed", stats.PackedBytes,
		"leaves", stats.Leaves,
		"depth", tree.Depth(),
		"treeBits", treeBits,
		"payloadBits", payloadBits)
	return stats, nil
}

// Decode decompresses the Grin data in src into dst.
//
// The magic number is checked before anything else is read; a mismatch
// returns an error wrapping ErrFormat. A damaged tree returns one of the
// huffman tree errors.
func (c Codec) Decode(src io.Reader, dst io.Writer) (Stats, error) {
	r := bitio.NewReader(src)

	magic, err := r.ReadBits(magicBits)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Stats{}, errors.Wrap(ErrFormat, "short header")
		}
		return Stats{}, errors.Wrap(err, "grin: reading magic")
	}
	if uint32(magic) != Magic {
		return Stats{}, errors.Wrapf(ErrFormat, "magic %#x", magic)
	}

	tree, err := huffman.ReadTree(r)
	if err != nil {
		return Stats{}, errors.Wrap(err, "grin: reading tree")
	}

	digest := xxhash.New()
	var plain countingWriter
	out := bufio.NewWriter(io.MultiWriter(dst, digest, &plain))

	err = tree.Decode(r, out)
	if errors.Is(err, huffman.ErrMissingEnd) && !c.Strict {
		c.logger().Debug("grinMissingEnd", "bitsRead", r.BitsRead())
		err = nil
	}
	if err != nil {
		return Stats{}, errors.Wrap(err, "grin: decoding payload")
	}
	if err := out.Flush(); err != nil {
		return Stats{}, errors.Wrap(err, "grin: flushing output")
	}

	stats := Stats{
		PlainBytes:  plain.n,
		PackedBytes: (r.BitsRead() + 7) / 8,
		Leaves:      tree.Leaves(),
		Checksum:    digest.Sum64(),
	}
	c.logger().Debug("grinDecode",
		"plain", stats.PlainBytes,
		"packed", stats.PackedBytes,
		"leaves", stats.Leaves)
	return stats, nil
}

type countingWriter struct{ n int64 }

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

var defaultCodec Codec

// Encode compresses src into dst using the default Codec.
func Encode(src io.ReadSeeker, dst io.Writer) (Stats, error) {
	return defaultCodec.Encode(src, dst)
}

// Decode decompresses src into dst using the default Codec.
func Decode(src io.Reader, dst io.Writer) (Stats, error) {
	return defaultCodec.Decode(src, dst)
}
