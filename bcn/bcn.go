// Package bcn implements the block-compressed texture formats used by PAA
// (DXT1/BC1, DXT3/BC2, DXT5/BC3): 4x4 pixel block decode and encode, plus a
// Catmull-Rom mipmap chain generator used when a PAA is written without a
// precomputed pyramid.
package bcn

import (
	"fmt"
	"image"
	"image/color"
)

// Format identifies a block-compressed pixel layout.
type Format int

// Supported block formats. DXT2 and DXT4 (premultiplied-alpha variants of
// DXT3/DXT5) share DXT3/DXT5's block layout and are mapped to these by
// callers; bcn treats them identically since PAA never premultiplies.
const (
	FormatUnknown Format = iota
	FormatDXT1
	FormatDXT3
	FormatDXT5
)

// BlockSize returns the compressed block size in bytes (8 for DXT1, 16 for
// DXT3/DXT5), or 0 for FormatUnknown.
func (f Format) BlockSize() int {
	switch f {
	case FormatDXT1:
		return 8
	case FormatDXT3, FormatDXT5:
		return 16
	default:
		return 0
	}
}

// QualityLevel names an encode speed/accuracy preset. The encoder does not
// read it: every level runs the same full per-pixel nearest-palette search.
type QualityLevel int

const (
	// QualityLevelDefault performs a full per-pixel nearest-palette search.
	QualityLevelDefault QualityLevel = iota
	// QualityLevelFast encodes exactly like QualityLevelDefault.
	QualityLevelFast
)

// RGBWeights biases the DXT1/DXT5 color-distance metric used when choosing
// the nearest palette entry, mirroring TexConvert.cfg's per-channel weights
// (e.g. lower weight on blue for normal maps).
type RGBWeights struct {
	R, G, B int
}

// EncodeOptions configures block encoding.
type EncodeOptions struct {
	QualityLevel QualityLevel
	RGBWeights   *RGBWeights
	// Workers is not read: encoding runs on the calling goroutine.
	Workers int
}

// DecodeOptions configures block decoding.
type DecodeOptions struct {
	// Workers is not read: decoding runs on the calling goroutine.
	Workers int
}

// errUnsupportedFormat is returned for an unknown or zero Format.
var errUnsupportedFormat = fmt.Errorf("bcn: unsupported format")

type rgb struct{ r, g, b uint8 }

func rgb565(c uint16) rgb {
	r5 := uint8((c >> 11) & 0x1f)
	g6 := uint8((c >> 5) & 0x3f)
	b5 := uint8(c & 0x1f)
	return rgb{
		r: (r5 << 3) | (r5 >> 2),
		g: (g6 << 2) | (g6 >> 4),
		b: (b5 << 3) | (b5 >> 2),
	}
}

func pack565(r, g, b uint8) uint16 {
	return uint16((uint16(r)>>3)&0x1f)<<11 | uint16((uint16(g)>>2)&0x3f)<<5 | uint16((uint16(b)>>3)&0x1f)
}

func getU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// DecodeImage decodes a block-compressed payload of the given Format into an
// NRGBA image of size w x h.
func DecodeImage(data []byte, w, h int, format Format) (image.Image, error) {
	bs := format.BlockSize()
	if bs == 0 {
		return nil, errUnsupportedFormat
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	bw, bh := maxInt(1, (w+3)/4), maxInt(1, (h+3)/4)

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			idx := (by*bw + bx) * bs
			if idx+bs > len(data) {
				return img, nil
			}
			block := data[idx : idx+bs]

			var colors [16]rgb
			var alphas [16]uint8
			switch format {
			case FormatDXT1:
				colors, alphas = decodeDXT1Block(block)
			case FormatDXT3:
				alphas = decodeDXT3Alpha(block[:8])
				colors, _ = decodeColor4Block(block[8:16])
			case FormatDXT5:
				alphas = decodeDXT5Alpha(block[:8])
				colors, _ = decodeColor4Block(block[8:16])
			}

			for py := 0; py < 4; py++ {
				for px := 0; px < 4; px++ {
					x, y := bx*4+px, by*4+py
					if x >= w || y >= h {
						continue
					}
					i := py*4 + px
					img.SetNRGBA(x, y, color.NRGBA{R: colors[i].r, G: colors[i].g, B: colors[i].b, A: alphas[i]})
				}
			}
		}
	}

	return img, nil
}

func decodeDXT1Block(block []byte) (colors [16]rgb, alphas [16]uint8) {
	c0 := getU16(block[0:2])
	c1 := getU16(block[2:4])
	p0, p1 := rgb565(c0), rgb565(c1)

	var pal [4]rgb
	var palA [4]uint8
	pal[0], palA[0] = p0, 255
	pal[1], palA[1] = p1, 255
	if c0 > c1 {
		pal[2] = rgb{uint8((2*uint16(p0.r) + uint16(p1.r)) / 3), uint8((2*uint16(p0.g) + uint16(p1.g)) / 3), uint8((2*uint16(p0.b) + uint16(p1.b)) / 3)}
		pal[3] = rgb{uint8((uint16(p0.r) + 2*uint16(p1.r)) / 3), uint8((uint16(p0.g) + 2*uint16(p1.g)) / 3), uint8((uint16(p0.b) + 2*uint16(p1.b)) / 3)}
		palA[2], palA[3] = 255, 255
	} else {
		pal[2] = rgb{uint8((uint16(p0.r) + uint16(p1.r)) / 2), uint8((uint16(p0.g) + uint16(p1.g)) / 2), uint8((uint16(p0.b) + uint16(p1.b)) / 2)}
		pal[3] = rgb{}
		palA[2], palA[3] = 255, 0
	}

	indices := getU32(block[4:8])
	for i := 0; i < 16; i++ {
		sel := (indices >> (uint(i) * 2)) & 3
		colors[i] = pal[sel]
		alphas[i] = palA[sel]
	}
	return
}

func decodeColor4Block(block []byte) (colors [16]rgb, _ [16]uint8) {
	c0 := getU16(block[0:2])
	c1 := getU16(block[2:4])
	p0, p1 := rgb565(c0), rgb565(c1)

	pal := [4]rgb{
		p0, p1,
		{uint8((2*uint16(p0.r) + uint16(p1.r)) / 3), uint8((2*uint16(p0.g) + uint16(p1.g)) / 3), uint8((2*uint16(p0.b) + uint16(p1.b)) / 3)},
		{uint8((uint16(p0.r) + 2*uint16(p1.r)) / 3), uint8((uint16(p0.g) + 2*uint16(p1.g)) / 3), uint8((uint16(p0.b) + 2*uint16(p1.b)) / 3)},
	}

	indices := getU32(block[4:8])
	for i := 0; i < 16; i++ {
		colors[i] = pal[(indices>>(uint(i)*2))&3]
	}
	return
}

func decodeDXT5Alpha(block []byte) [16]uint8 {
	a0, a1 := block[0], block[1]
	var pal [8]uint8
	pal[0], pal[1] = a0, a1
	if a0 > a1 {
		pal[2] = uint8((6*uint16(a0) + uint16(a1)) / 7)
		pal[3] = uint8((5*uint16(a0) + 2*uint16(a1)) / 7)
		pal[4] = uint8((4*uint16(a0) + 3*uint16(a1)) / 7)
		pal[5] = uint8((3*uint16(a0) + 4*uint16(a1)) / 7)
		pal[6] = uint8((2*uint16(a0) + 5*uint16(a1)) / 7)
		pal[7] = uint8((uint16(a0) + 6*uint16(a1)) / 7)
	} else {
		pal[2] = uint8((4*uint16(a0) + uint16(a1)) / 5)
		pal[3] = uint8((3*uint16(a0) + 2*uint16(a1)) / 5)
		pal[4] = uint8((2*uint16(a0) + 3*uint16(a1)) / 5)
		pal[5] = uint8((uint16(a0) + 4*uint16(a1)) / 5)
		pal[6] = 0
		pal[7] = 255
	}

	bits := uint64(block[2]) | uint64(block[3])<<8 | uint64(block[4])<<16 |
		uint64(block[5])<<24 | uint64(block[6])<<32 | uint64(block[7])<<40

	var out [16]uint8
	for i := 0; i < 16; i++ {
		out[i] = pal[(bits>>(uint(i)*3))&7]
	}
	return out
}

func decodeDXT3Alpha(block []byte) [16]uint8 {
	var out [16]uint8
	for i := 0; i < 16; i++ {
		b := block[i/2]
		if i%2 == 0 {
			out[i] = (b & 0x0f) * 17
		} else {
			out[i] = (b >> 4) * 17
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
