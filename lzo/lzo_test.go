package lzo

import (
	"bytes"
	"errors"
	"testing"
)

func roundTripInputs() map[string][]byte {
	long := make([]byte, 70000)
	for i := range long {
		long[i] = byte(i*31 + i/512) // repeats beyond the M3 16K window
	}
	return map[string][]byte{
		"empty":    {},
		"single":   {0x42},
		"short":    []byte("hello"),
		"repeat":   bytes.Repeat([]byte{'A'}, 1000),
		"text":     []byte("the quick brown fox jumps over the lazy dog, the quick brown fox jumps again"),
		"zeros":    make([]byte, 5000),
		"periodic": bytes.Repeat([]byte("abc"), 700),
		"long":     long,
	}
}

func TestRoundTrip(t *testing.T) {
	for name, src := range roundTripInputs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := Compress(src, nil)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}

			out, err := Decompress(compressed, DefaultDecompressOptions(len(src)))
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(out, src) {
				t.Errorf("round trip mismatch (%d bytes in, %d out)", len(src), len(out))
			}
		})
	}
}

// A hand-assembled stream: an initial literal run of 4 bytes (first
// instruction byte 17+4), then the M4 end-of-stream marker.
func TestDecodeLiteralOnlyStream(t *testing.T) {
	src := []byte{21, 'a', 'b', 'c', 'd', 0x11, 0x00, 0x00}

	out, err := Decompress(src, DefaultDecompressOptions(4))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, []byte("abcd")) {
		t.Errorf("decoded %q, want %q", out, "abcd")
	}
}

func TestInputOverrun(t *testing.T) {
	if _, err := Decompress([]byte{21, 'a'}, DefaultDecompressOptions(4)); !errors.Is(err, ErrInputOverrun) {
		t.Errorf("truncated stream: err = %v, want ErrInputOverrun", err)
	}
}

func TestOutputUnderrunAtEOS(t *testing.T) {
	// Valid 4-literal stream, but the caller expects 8 bytes.
	src := []byte{21, 'a', 'b', 'c', 'd', 0x11, 0x00, 0x00}
	if _, err := Decompress(src, DefaultDecompressOptions(8)); err == nil {
		t.Error("expected output underrun error, got nil")
	}
}

func TestDecompressZeroSize(t *testing.T) {
	out, err := Decompress(nil, DefaultDecompressOptions(0))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

// DecompressStream must consume only the compressed payload, leaving
// any bytes after the EOS marker unread (the P3D framing case, where
// the compressed length is unknown but the stream continues).
func TestDecompressStream(t *testing.T) {
	src := bytes.Repeat([]byte("lzo stream framing "), 60)
	compressed, err := Compress(src, nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	framed := append(append([]byte{}, compressed...), 0xde, 0xad, 0xbe, 0xef)
	r := bytes.NewReader(framed)
	out, err := DecompressStream(r, len(src))
	if err != nil {
		t.Fatalf("DecompressStream: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Errorf("stream round trip mismatch")
	}

	pos, err := r.Seek(0, 1)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if int(pos) != len(compressed) {
		t.Errorf("stream position = %d after decode, want %d", pos, len(compressed))
	}
}
