package paa

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/armatools/rvtk/lzss"
)

// PaxIndexed marks the legacy OFP palette-indexed format, recognized by
// the absence of a type tag rather than by a magic value of its own.
const PaxIndexed PaxType = 2

// MaxPaletteDimension bounds the width/height accepted for a
// palette-indexed mip, whether read directly or after the 0x04D2/0x223D
// sentinel of an LZSS-packed one. The wire format places no upper bound
// there, so impossibly large values are rejected instead of allocated.
const MaxPaletteDimension = 8192

// indexedSentinel is the fake width/height pair (1234, 8765) that marks
// an LZSS-packed palette-indexed payload; the real dimensions follow.
const (
	indexedSentinelW = 0x04D2
	indexedSentinelH = 0x223D
)

// IndexedPAA is a decoded legacy palette-indexed texture: the BGR
// palette, the first mip's dimensions, and its one-byte-per-pixel
// palette indices.
type IndexedPAA struct {
	// Taggs stores raw GGAT entries by 4-byte key. OFP Demo files carry
	// none; CWC/Resistance files may.
	Taggs map[string][]byte
	// Palette holds the BGR triplets, 3 bytes per entry.
	Palette []byte
	// LZSSPacked reports whether the payload was stored behind the
	// 0x04D2/0x223D sentinel (LZSS) rather than RLE.
	LZSSPacked bool

	Width  int
	Height int
	// Pixels holds one palette index per pixel, row-major.
	Pixels []byte
}

// peekIsTagg reports whether the next four bytes are "GGAT" without
// consuming them.
func peekIsTagg(r io.Reader, seeker io.Seeker) (bool, error) {
	var sig [4]byte
	n, err := io.ReadFull(r, sig[:])
	if n > 0 {
		if _, serr := seeker.Seek(-int64(n), io.SeekCurrent); serr != nil {
			return false, serr
		}
	}
	if err != nil {
		return false, nil // too short to be a tag; not an error here
	}
	return string(sig[:]) == "GGAT", nil
}

// skipTaggs consumes the GGAT tag chain, collecting payloads, and
// leaves r positioned at the first non-tag byte.
func skipTaggs(r io.Reader, seeker io.Seeker) (map[string][]byte, error) {
	tags := make(map[string][]byte, 4)
	for {
		isTagg, err := peekIsTagg(r, seeker)
		if err != nil {
			return nil, err
		}
		if !isTagg {
			return tags, nil
		}
		if _, err := seeker.Seek(4, io.SeekCurrent); err != nil {
			return nil, err
		}
		var nameBuf [4]byte
		if _, err := io.ReadFull(r, nameBuf[:]); err != nil {
			return nil, err
		}
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		tags[string(nameBuf[:])] = data
	}
}

// rleDecompress expands the OFP CWC/Demo run-length scheme: a flag byte
// with the high bit set repeats the next byte (flag-0x80+1) times,
// otherwise (flag+1) literal bytes follow. Output is padded with zeros
// if the stream ends short, matching the engine's tolerance.
func rleDecompress(src []byte, expected int) []byte {
	out := make([]byte, 0, expected)
	ip := 0
	for len(out) < expected && ip < len(src) {
		flag := src[ip]
		ip++
		if flag&0x80 != 0 {
			count := int(flag-0x80) + 1
			if ip >= len(src) {
				break
			}
			val := src[ip]
			ip++
			for i := 0; i < count && len(out) < expected; i++ {
				out = append(out, val)
			}
		} else {
			count := int(flag) + 1
			for i := 0; i < count && ip < len(src) && len(out) < expected; i++ {
				out = append(out, src[ip])
				ip++
			}
		}
	}
	for len(out) < expected {
		out = append(out, 0)
	}
	return out
}

// readU24 reads a 3-byte little-endian length.
func readU24(r io.Reader) (uint32, error) {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16, nil
}

// indexedHeader is the palette-branch preamble: optional TAGGs, the
// palette, and the first mip's dimensions.
type indexedHeader struct {
	taggs      map[string][]byte
	palette    []byte
	width      int
	height     int
	lzssPacked bool
}

// readIndexedHeader parses the preamble of a palette-indexed file. r
// must be positioned at the start of the stream (no type tag precedes
// the preamble in this format).
func readIndexedHeader(r io.Reader, seeker io.Seeker) (*indexedHeader, error) {
	var h indexedHeader

	// TAGGs are present only when the first byte is printable; OFP Demo
	// files start directly with the palette count.
	var peek [1]byte
	if _, err := io.ReadFull(r, peek[:]); err != nil {
		return nil, err
	}
	if _, err := seeker.Seek(-1, io.SeekCurrent); err != nil {
		return nil, err
	}
	if peek[0] >= 0x20 {
		tags, err := skipTaggs(r, seeker)
		if err != nil {
			return nil, err
		}
		h.taggs = tags
	} else {
		h.taggs = map[string][]byte{}
	}

	var nPalette uint16
	if err := binary.Read(r, binary.LittleEndian, &nPalette); err != nil {
		return nil, err
	}
	if nPalette > 0 {
		h.palette = make([]byte, int(nPalette)*3)
		if _, err := io.ReadFull(r, h.palette); err != nil {
			return nil, err
		}
	}

	var w, hgt uint16
	if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &hgt); err != nil {
		return nil, err
	}
	if w == indexedSentinelW && hgt == indexedSentinelH {
		h.lzssPacked = true
		if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &hgt); err != nil {
			return nil, err
		}
	}

	h.width = int(w)
	h.height = int(hgt)
	if h.width == 0 || h.height == 0 ||
		h.width > MaxPaletteDimension || h.height > MaxPaletteDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, h.width, h.height)
	}
	return &h, nil
}

// DecodeIndexed reads a legacy palette-indexed PAA/PAC (OFP era: no
// type tag, BGR palette, RLE- or LZSS-packed indices) and returns the
// first mip level.
func DecodeIndexed(r io.Reader) (*IndexedPAA, error) {
	r, seeker, err := ensureSeeker(r)
	if err != nil {
		return nil, err
	}

	h, err := readIndexedHeader(r, seeker)
	if err != nil {
		return nil, err
	}

	dataLen, err := readU24(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}

	expected := h.width * h.height
	var pixels []byte
	if h.lzssPacked {
		pixels, err = lzss.Decompress(data, expected, lzss.NoChecksumOptions())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZSSDecompress, err)
		}
	} else {
		pixels = rleDecompress(data, expected)
	}

	return &IndexedPAA{
		Taggs:      h.taggs,
		Palette:    h.palette,
		LZSSPacked: h.lzssPacked,
		Width:      h.width,
		Height:     h.height,
		Pixels:     pixels,
	}, nil
}

// Image maps the palette indices through the BGR palette to an RGBA
// image. Indices past the palette decode as opaque black, matching the
// engine's behavior on malformed files.
func (p *IndexedPAA) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	nPalette := len(p.Palette) / 3
	for i, idx := range p.Pixels {
		off := i * 4
		if int(idx) < nPalette {
			img.Pix[off+0] = p.Palette[int(idx)*3+2]
			img.Pix[off+1] = p.Palette[int(idx)*3+1]
			img.Pix[off+2] = p.Palette[int(idx)*3]
			img.Pix[off+3] = 255
			continue
		}
		img.Pix[off+3] = 255
	}
	return img
}
