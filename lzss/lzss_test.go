package lzss

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestCompressDecompressBasic(t *testing.T) {
	src := []byte("ABCDAABC")

	compressed, err := Compress(src, nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	out, err := Decompress(compressed, len(src), DefaultOptions())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Errorf("round trip = %q, want %q", out, src)
	}
}

func TestCompressRepeatedInput(t *testing.T) {
	src := bytes.Repeat([]byte{'A'}, 1000)

	compressed, err := Compress(src, nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(compressed) >= 500 {
		t.Errorf("compressed 1000x'A' to %d bytes, want < 500", len(compressed))
	}

	out, err := Decompress(compressed, len(src), DefaultOptions())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Errorf("round trip mismatch on repeated input")
	}
}

func roundTripInputs() map[string][]byte {
	long := make([]byte, 4500)
	for i := range long {
		long[i] = byte(i*7 + i/256) // spans more than one 4095-byte window
	}
	return map[string][]byte{
		"empty":      {},
		"single":     {0x42},
		"two":        {0x00, 0xff},
		"text":       []byte("the quick brown fox jumps over the lazy dog, the quick brown fox"),
		"zeros":      make([]byte, 300),
		"overlap":    append(bytes.Repeat([]byte("ab"), 40), 'c'),
		"signedmix":  {0x7f, 0x80, 0x81, 0xff, 0x00, 0x7f, 0x80, 0x81, 0xff, 0x00, 0x7f, 0x80},
		"window":     long,
	}
}

func TestRoundTripChecksumModes(t *testing.T) {
	modes := map[string]ChecksumMode{
		"unsigned": ChecksumUnsigned,
		"signed":   ChecksumSigned,
		"none":     ChecksumNone,
	}

	for modeName, mode := range modes {
		for name, src := range roundTripInputs() {
			t.Run(modeName+"/"+name, func(t *testing.T) {
				compressed, err := Compress(src, &CompressOptions{Checksum: mode})
				if err != nil {
					t.Fatalf("Compress: %v", err)
				}

				opts := Options{Checksum: mode, VerifyChecksum: mode != ChecksumNone}
				out, err := Decompress(compressed, len(src), opts)
				if err != nil {
					t.Fatalf("Decompress: %v", err)
				}
				if !bytes.Equal(out, src) {
					t.Errorf("round trip mismatch (%d bytes in, %d out)", len(src), len(out))
				}
			})
		}
	}
}

func TestDecompressAuto(t *testing.T) {
	for name, src := range roundTripInputs() {
		compressed, err := Compress(src, nil)
		if err != nil {
			t.Fatalf("Compress(%s): %v", name, err)
		}
		if len(compressed) < 5 {
			continue
		}

		out := DecompressAuto(compressed)
		if out == nil {
			t.Errorf("DecompressAuto(%s) = nil", name)
			continue
		}
		if !bytes.Equal(out, src) {
			t.Errorf("DecompressAuto(%s) mismatch", name)
		}
	}
}

func TestDecompressAutoRejectsCorruption(t *testing.T) {
	compressed, err := Compress([]byte("some payload worth checking"), nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	compressed[len(compressed)-1] ^= 0x01
	if out := DecompressAuto(compressed); out != nil {
		t.Errorf("DecompressAuto on corrupted checksum = %q, want nil", out)
	}

	if out := DecompressAuto([]byte{1, 2, 3, 4}); out != nil {
		t.Errorf("DecompressAuto on undersized input = %v, want nil", out)
	}
}

func TestChecksumMismatch(t *testing.T) {
	src := []byte("checksummed payload")
	compressed, err := Compress(src, nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	compressed[len(compressed)-2] ^= 0xff

	if _, err := Decompress(compressed, len(src), DefaultOptions()); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Decompress on corrupted checksum: err = %v, want ErrChecksumMismatch", err)
	}

	lenient := Options{Checksum: ChecksumUnsigned, VerifyChecksum: true, Lenient: true}
	out, err := Decompress(compressed, len(src), lenient)
	if err != nil {
		t.Fatalf("lenient Decompress: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Errorf("lenient round trip mismatch")
	}
}

func TestTruncatedInput(t *testing.T) {
	compressed, err := Compress([]byte(strings.Repeat("payload ", 16)), nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	if _, err := Decompress(compressed[:3], 128, DefaultOptions()); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("truncated data: err = %v, want ErrUnexpectedEOF", err)
	}

	// Complete data but the 4-byte trailer cut short.
	if _, err := Decompress(compressed[:len(compressed)-2], 128, DefaultOptions()); !errors.Is(err, ErrTruncatedChecksum) {
		t.Errorf("truncated checksum: err = %v, want ErrTruncatedChecksum", err)
	}
}

// A back-reference whose logical position lies past the output
// high-water mark fills with spaces until the copy catches up.
func TestSpaceFill(t *testing.T) {
	// One flag byte selecting a back-reference, rpos=16 (past the empty
	// output), rlen=3, then the checksum for three 0x20 bytes.
	src := []byte{0x00, 0x10, 0x00, 0x60, 0x00, 0x00, 0x00}

	out, err := Decompress(src, 3, DefaultOptions())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, []byte("   ")) {
		t.Errorf("space fill = %q, want three spaces", out)
	}
}

func TestDecompressStream(t *testing.T) {
	src := []byte("stream decode does not need the compressed length up front")
	compressed, err := Compress(src, nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	// Trailing bytes after the checksum must be left unread.
	r := bytes.NewReader(append(append([]byte{}, compressed...), 0xde, 0xad))
	out, err := DecompressStream(r, len(src))
	if err != nil {
		t.Fatalf("DecompressStream: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Errorf("stream round trip mismatch")
	}
	if r.Len() != 2 {
		t.Errorf("stream consumed too much: %d trailing bytes left, want 2", r.Len())
	}
}

func TestDecompressOrRaw(t *testing.T) {
	raw := []byte("short payloads are stored raw")
	out, err := DecompressOrRaw(append(append([]byte{}, raw...), 0xff), len(raw))
	if err != nil {
		t.Fatalf("DecompressOrRaw: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Errorf("raw passthrough mismatch")
	}

	big := bytes.Repeat([]byte("block of data "), 100) // >= 1024
	compressed, err := Compress(big, nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	out, err = DecompressOrRaw(compressed, len(big))
	if err != nil {
		t.Fatalf("DecompressOrRaw(compressed): %v", err)
	}
	if !bytes.Equal(out, big) {
		t.Errorf("compressed-branch round trip mismatch")
	}
}
