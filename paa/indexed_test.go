package paa

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	"testing"

	"github.com/armatools/rvtk/lzss"
)

// testPalette is blue, green, red, yellow as wire-order BGR triplets.
var testPalette = []byte{
	255, 0, 0,
	0, 255, 0,
	0, 0, 255,
	0, 255, 255,
}

func u16le(v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return b[:]
}

func u24le(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16)}
}

// buildIndexed assembles a palette-indexed file: optional TAGGs, the
// palette, a 2x2 mip with pixel indices 0..3, packed either as an RLE
// literal run or behind the LZSS sentinel.
func buildIndexed(t *testing.T, withTaggs, lzssPacked bool) []byte {
	t.Helper()
	var buf bytes.Buffer

	if withTaggs {
		buf.WriteString("GGAT")
		buf.WriteString("CGVA")
		binary.Write(&buf, binary.LittleEndian, uint32(4))
		buf.Write([]byte{1, 0, 0, 0})
	}

	buf.Write(u16le(4))
	buf.Write(testPalette)

	indices := []byte{0, 1, 2, 3}
	if lzssPacked {
		buf.Write(u16le(indexedSentinelW))
		buf.Write(u16le(indexedSentinelH))
		buf.Write(u16le(2))
		buf.Write(u16le(2))
		packed, err := lzss.Compress(indices, &lzss.CompressOptions{Checksum: lzss.ChecksumNone})
		if err != nil {
			t.Fatalf("Compress: %v", err)
		}
		buf.Write(u24le(uint32(len(packed))))
		buf.Write(packed)
	} else {
		buf.Write(u16le(2))
		buf.Write(u16le(2))
		rle := []byte{3, 0, 1, 2, 3} // one literal run of four
		buf.Write(u24le(uint32(len(rle))))
		buf.Write(rle)
	}
	return buf.Bytes()
}

func wantIndexedColors() []color.NRGBA {
	return []color.NRGBA{
		{R: 0, G: 0, B: 255, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 255, G: 0, B: 0, A: 255},
		{R: 255, G: 255, B: 0, A: 255},
	}
}

func TestDecodeIndexedRLE(t *testing.T) {
	p, err := DecodeIndexed(bytes.NewReader(buildIndexed(t, false, false)))
	if err != nil {
		t.Fatalf("DecodeIndexed: %v", err)
	}
	if p.Width != 2 || p.Height != 2 {
		t.Fatalf("size = %dx%d, want 2x2", p.Width, p.Height)
	}
	if p.LZSSPacked {
		t.Error("RLE payload flagged as LZSS")
	}
	if !bytes.Equal(p.Pixels, []byte{0, 1, 2, 3}) {
		t.Errorf("indices = %v", p.Pixels)
	}

	img := p.Image()
	for i, want := range wantIndexedColors() {
		got := img.NRGBAAt(i%2, i/2)
		if got != want {
			t.Errorf("pixel %d = %v, want %v", i, got, want)
		}
	}
}

func TestDecodeIndexedLZSSSentinel(t *testing.T) {
	p, err := DecodeIndexed(bytes.NewReader(buildIndexed(t, false, true)))
	if err != nil {
		t.Fatalf("DecodeIndexed: %v", err)
	}
	if !p.LZSSPacked {
		t.Error("sentinel payload not flagged as LZSS")
	}
	if p.Width != 2 || p.Height != 2 {
		t.Errorf("size = %dx%d, want 2x2", p.Width, p.Height)
	}
	if !bytes.Equal(p.Pixels, []byte{0, 1, 2, 3}) {
		t.Errorf("indices = %v", p.Pixels)
	}
}

func TestDecodeIndexedSkipsTaggs(t *testing.T) {
	p, err := DecodeIndexed(bytes.NewReader(buildIndexed(t, true, false)))
	if err != nil {
		t.Fatalf("DecodeIndexed: %v", err)
	}
	if _, ok := p.Taggs["CGVA"]; !ok {
		t.Error("CGVA tag not collected")
	}
	if !bytes.Equal(p.Pixels, []byte{0, 1, 2, 3}) {
		t.Errorf("indices = %v", p.Pixels)
	}
}

func TestDecodeIndexedRLERepeatRun(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(u16le(1))
	buf.Write([]byte{10, 20, 30}) // one BGR entry
	buf.Write(u16le(8))
	buf.Write(u16le(8))
	buf.Write(u24le(2))
	buf.Write([]byte{0xBF, 0}) // repeat index 0 sixty-four times

	p, err := DecodeIndexed(&buf)
	if err != nil {
		t.Fatalf("DecodeIndexed: %v", err)
	}
	if len(p.Pixels) != 64 {
		t.Fatalf("pixel count = %d, want 64", len(p.Pixels))
	}
	for _, idx := range p.Pixels {
		if idx != 0 {
			t.Fatalf("repeat run produced index %d", idx)
		}
	}
}

func TestDecodeIndexedRejectsHugeDimensions(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(u16le(0)) // empty palette
	buf.Write(u16le(16384))
	buf.Write(u16le(2))

	if _, err := DecodeIndexed(&buf); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}
}

// Decode must route type-tag-less files to the palette branch.
func TestDecodeFallsBackToIndexed(t *testing.T) {
	img, err := Decode(bytes.NewReader(buildIndexed(t, false, false)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 2x2", b)
	}
	for i, want := range wantIndexedColors() {
		r, g, bb, a := img.At(i%2, i/2).RGBA()
		got := color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bb >> 8), A: uint8(a >> 8)}
		if got != want {
			t.Errorf("pixel %d = %v, want %v", i, got, want)
		}
	}
}

func TestDecodeMetadataIndexed(t *testing.T) {
	meta, err := DecodeMetadata(bytes.NewReader(buildIndexed(t, false, true)))
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if meta.Type != PaxIndexed {
		t.Errorf("type = %v, want PaxIndexed", meta.Type)
	}
	if len(meta.MipHeaders) != 1 || meta.MipHeaders[0].Width != 2 || meta.MipHeaders[0].Height != 2 {
		t.Errorf("mip headers = %+v, want one 2x2 entry", meta.MipHeaders)
	}
}
