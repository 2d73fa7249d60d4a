package grin

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"

	"github.com/egonelbre/exp-grin-compression/bitio"
	"github.com/egonelbre/exp-grin-compression/huffman"
)

func roundtrip(t *testing.T, data []byte) (packed []byte, enc, dec Stats) {
	t.Helper()

	var buf bytes.Buffer
	enc, err := Encode(bytes.NewReader(data), &buf)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	packed = append([]byte(nil), buf.Bytes()...)

	var out bytes.Buffer
	dec, err = Decode(&buf, &out)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("Roundtrip mismatch: expected %d bytes, got %d", len(data), out.Len())
	}
	return packed, enc, dec
}

func TestRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))

	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	random := make([]byte, 10000)
	rng.Read(random)
	skewed := make([]byte, 10000)
	for i := range skewed {
		skewed[i] = byte(int(rng.ExpFloat64() * 8))
	}

	tests := []struct {
		name   string
		data   []byte
		leaves int
	}{
		{"empty", nil, 1},
		{"abc a", []byte("abc a"), 5},
		{"single character", []byte("aaaaaa"), 2},
		{"single zero byte", []byte{0}, 2},
		{"all byte values", all, 257},
		{"random", random, 257},
		{"skewed", skewed, 0},
		{"english", []byte(repeatText(sampleText, 4096)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed, enc, dec := roundtrip(t, tt.data)

			if tt.leaves > 0 && enc.Leaves != tt.leaves {
				t.Errorf("Expected %d leaves, got %d", tt.leaves, enc.Leaves)
			}
			if enc.Leaves != dec.Leaves {
				t.Errorf("Leaves differ: encode %d, decode %d", enc.Leaves, dec.Leaves)
			}
			if enc.PackedBytes != int64(len(packed)) {
				t.Errorf("Encode reported %d packed bytes, wrote %d", enc.PackedBytes, len(packed))
			}
			if enc.PlainBytes != int64(len(tt.data)) || dec.PlainBytes != int64(len(tt.data)) {
				t.Errorf("Plain bytes: expected %d, got encode %d, decode %d",
					len(tt.data), enc.PlainBytes, dec.PlainBytes)
			}
			if want := xxhash.Sum64(tt.data); enc.Checksum != want || dec.Checksum != want {
				t.Errorf("Checksum: expected %x, got encode %x, decode %x", want, enc.Checksum, dec.Checksum)
			}
		})
	}
}

func TestEncodeGolden(t *testing.T) {
	// magic | tree: 1 1 0'c' 0 END 1 0'a' 1 0' ' 0'b' | payload: 10 111 00 110 10 01 | padding
	want := []byte{0x00, 0x00, 0x07, 0x36, 0xc6, 0x34, 0x02, 0x30, 0xc2, 0x01, 0x8a, 0xe6, 0x90}

	packed, enc, dec := roundtrip(t, []byte("abc a"))
	if !bytes.Equal(packed, want) {
		t.Fatalf("Expected % x, got % x", want, packed)
	}
	if dec.PackedBytes != int64(len(want)) {
		t.Errorf("Decode consumed %d bytes, expected %d", dec.PackedBytes, len(want))
	}
	if enc.Ratio() <= 1 {
		t.Errorf("Expected tiny input to grow, ratio %.2f", enc.Ratio())
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	stats, err := Encode(bytes.NewReader(nil), &buf)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// magic and a single END leaf: 32 + 10 bits
	want := []byte{0x00, 0x00, 0x07, 0x36, 0x40, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("Expected % x, got % x", want, buf.Bytes())
	}
	if stats.Ratio() != 0 {
		t.Errorf("Expected ratio 0 for empty input, got %v", stats.Ratio())
	}
}

func TestDecodeBadMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("hi")},
		{"text", []byte("hello")},
		{"off by one", []byte{0x00, 0x00, 0x07, 0x37, 0xc6, 0x34}},
		{"high bits", []byte{0x01, 0x00, 0x07, 0x36, 0xc6, 0x34}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := Decode(bytes.NewReader(tt.data), &out)
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("Expected ErrFormat, got %v", err)
			}
			if out.Len() != 0 {
				t.Errorf("Expected no output, got %d bytes", out.Len())
			}
		})
	}
}

func TestDecodeTruncatedTree(t *testing.T) {
	packed, _, _ := roundtrip(t, []byte("abc a"))

	for n := 4; n < 11; n++ {
		var out bytes.Buffer
		_, err := Decode(bytes.NewReader(packed[:n]), &out)
		if !errors.Is(err, huffman.ErrTruncated) {
			t.Fatalf("Length %d: expected ErrTruncated, got %v", n, err)
		}
	}
}

// withoutEnd writes a Grin stream for the frequencies of data whose payload
// holds prefix but no End codeword.
func withoutEnd(t *testing.T, data, prefix string) []byte {
	t.Helper()

	freqs, err := CountFrequencies(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	tree := huffman.Build(freqs)
	codes := tree.Codes()

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	if err := w.WriteBits(uint64(Magic), magicBits); err != nil {
		t.Fatal(err)
	}
	if err := tree.WriteTree(w); err != nil {
		t.Fatal(err)
	}
	for _, b := range []byte(prefix) {
		for _, bit := range codes[b] {
			if err := w.WriteBit(bit); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeMissingEnd(t *testing.T) {
	packed := withoutEnd(t, "abc a", "ab")

	// the zero padding decodes as two 'c' before running out
	var out bytes.Buffer
	if _, err := Decode(bytes.NewReader(packed), &out); err != nil {
		t.Fatalf("Lenient decode failed: %v", err)
	}
	if out.String() != "abcc" {
		t.Errorf("Expected %q, got %q", "abcc", out.String())
	}

	out.Reset()
	strict := Codec{Strict: true}
	if _, err := strict.Decode(bytes.NewReader(packed), &out); !errors.Is(err, huffman.ErrMissingEnd) {
		t.Fatalf("Expected ErrMissingEnd, got %v", err)
	}
}

func TestDecodeIgnoresTrailingData(t *testing.T) {
	packed, _, _ := roundtrip(t, []byte("abc a"))
	packed = append(packed, 0xff, 0xff, 0xff)

	var out bytes.Buffer
	if _, err := (Codec{Strict: true}).Decode(bytes.NewReader(packed), &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.String() != "abc a" {
		t.Errorf("Expected %q, got %q", "abc a", out.String())
	}
}

func TestCountFrequencies(t *testing.T) {
	freqs, err := CountFrequencies(strings.NewReader("abc a"))
	if err != nil {
		t.Fatalf("CountFrequencies failed: %v", err)
	}

	want := huffman.Frequencies{'a': 2, 'b': 1, 'c': 1, ' ': 1}
	if len(freqs) != len(want) {
		t.Fatalf("Expected %v, got %v", want, freqs)
	}
	for sym, count := range want {
		if freqs[sym] != count {
			t.Errorf("Symbol %q: expected %d, got %d", rune(sym), count, freqs[sym])
		}
	}
	if _, ok := freqs[huffman.End]; ok {
		t.Errorf("End must not be counted")
	}

	empty, err := CountFrequencies(strings.NewReader(""))
	if err != nil {
		t.Fatalf("CountFrequencies failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty table, got %v", empty)
	}
}

type failingSeeker struct{ *bytes.Reader }

func (failingSeeker) Seek(int64, int) (int64, error) {
	return 0, errors.New("not seekable")
}

func TestEncodeNeedsRewind(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(failingSeeker{bytes.NewReader([]byte("abc a"))}, &buf)
	if err == nil {
		t.Fatal("Expected an error for an input that cannot rewind")
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %d bytes", buf.Len())
	}
}
