package bcn

import (
	"image"
)

// pixel is an internal RGBA8 working pixel, kept separate from color.NRGBA
// so block math can use plain int arithmetic without repeated conversions.
type pixel struct{ r, g, b, a uint8 }

// gatherBlock reads a 4x4 pixel neighborhood starting at (bx,by), clamping
// to the image edge for partial blocks on the last row/column.
func gatherBlock(img image.Image, bx, by int) [16]pixel {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	var out [16]pixel
	for py := 0; py < 4; py++ {
		for px := 0; px < 4; px++ {
			x := bx + px
			y := by + py
			if x >= w {
				x = w - 1
			}
			if y >= h {
				y = h - 1
			}
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out[py*4+px] = pixel{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
		}
	}
	return out
}

// minMaxColor finds the two corner colors of the block's bounding box along
// its principal color-variance axis, approximated here (as in the reference
// encoder) by simple per-channel min/max.
func minMaxColor(block [16]pixel) (min, max pixel) {
	min = pixel{255, 255, 255, 255}
	max = pixel{0, 0, 0, 0}
	for _, p := range block {
		if p.r < min.r {
			min.r = p.r
		}
		if p.g < min.g {
			min.g = p.g
		}
		if p.b < min.b {
			min.b = p.b
		}
		if p.r > max.r {
			max.r = p.r
		}
		if p.g > max.g {
			max.g = p.g
		}
		if p.b > max.b {
			max.b = p.b
		}
	}
	return
}

func weightedDist(a, b pixel, w *RGBWeights) int {
	dr := int(a.r) - int(b.r)
	dg := int(a.g) - int(b.g)
	db := int(a.b) - int(b.b)
	if w == nil {
		return dr*dr + dg*dg + db*db
	}
	return dr*dr*w.R + dg*dg*w.G + db*db*w.B
}

func nearestColorIdx(p pixel, pal [4]pixel, w *RGBWeights) int {
	best, bestD := 0, -1
	for i, c := range pal {
		d := weightedDist(p, c, w)
		if bestD < 0 || d < bestD {
			bestD, best = d, i
		}
	}
	return best
}

func nearestAlphaIdx(a uint8, pal [8]uint8) int {
	best, bestD := 0, -1
	for i, v := range pal {
		d := int(a) - int(v)
		if d < 0 {
			d = -d
		}
		if bestD < 0 || d < bestD {
			bestD, best = d, i
		}
	}
	return best
}

func paletteDXT5Color(min, max pixel) [4]pixel {
	return [4]pixel{
		max, min,
		{
			uint8((2*int(max.r) + int(min.r)) / 3),
			uint8((2*int(max.g) + int(min.g)) / 3),
			uint8((2*int(max.b) + int(min.b)) / 3),
			255,
		},
		{
			uint8((int(max.r) + 2*int(min.r)) / 3),
			uint8((int(max.g) + 2*int(min.g)) / 3),
			uint8((int(max.b) + 2*int(min.b)) / 3),
			255,
		},
	}
}

func alphaPaletteDXT5(a0, a1 uint8) [8]uint8 {
	var pal [8]uint8
	pal[0], pal[1] = a0, a1
	if a0 > a1 {
		pal[2] = uint8((6*int(a0) + int(a1)) / 7)
		pal[3] = uint8((5*int(a0) + 2*int(a1)) / 7)
		pal[4] = uint8((4*int(a0) + 3*int(a1)) / 7)
		pal[5] = uint8((3*int(a0) + 4*int(a1)) / 7)
		pal[6] = uint8((2*int(a0) + 5*int(a1)) / 7)
		pal[7] = uint8((int(a0) + 6*int(a1)) / 7)
	} else {
		pal[2] = uint8((4*int(a0) + int(a1)) / 5)
		pal[3] = uint8((3*int(a0) + 2*int(a1)) / 5)
		pal[4] = uint8((2*int(a0) + 3*int(a1)) / 5)
		pal[5] = uint8((int(a0) + 4*int(a1)) / 5)
		pal[6] = 0
		pal[7] = 255
	}
	return pal
}

func blockMinMaxAlpha(block [16]pixel) (min, max uint8) {
	min, max = 255, 0
	for _, p := range block {
		if p.a < min {
			min = p.a
		}
		if p.a > max {
			max = p.a
		}
	}
	return
}

func hasTransparency(block [16]pixel) bool {
	for _, p := range block {
		if p.a < 128 {
			return true
		}
	}
	return false
}

func encodeBlockColor4(block [16]pixel, weights *RGBWeights) (c0, c1 uint16, indices uint32) {
	min, max := minMaxColor(block)
	if pack565(max.r, max.g, max.b) == pack565(min.r, min.g, min.b) {
		// Degenerate flat block: keep c0 > c1 for 4-color interpolation mode.
		c0, c1 = pack565(max.r, max.g, max.b), 0
	} else {
		c0, c1 = pack565(max.r, max.g, max.b), pack565(min.r, min.g, min.b)
	}

	p0, p1 := rgb565(c0), rgb565(c1)
	pal := [4]pixel{
		{p0.r, p0.g, p0.b, 255}, {p1.r, p1.g, p1.b, 255},
		{uint8((2*int(p0.r) + int(p1.r)) / 3), uint8((2*int(p0.g) + int(p1.g)) / 3), uint8((2*int(p0.b) + int(p1.b)) / 3), 255},
		{uint8((int(p0.r) + 2*int(p1.r)) / 3), uint8((int(p0.g) + 2*int(p1.g)) / 3), uint8((int(p0.b) + 2*int(p1.b)) / 3), 255},
	}

	for i, p := range block {
		idx := nearestColorIdx(p, pal, weights)
		indices |= uint32(idx) << (uint(i) * 2)
	}
	return
}

func encodeBlockDXT1(block [16]pixel, weights *RGBWeights) []byte {
	out := make([]byte, 8)
	if hasTransparency(block) {
		min, max := minMaxColor(block)
		c0, c1 := pack565(min.r, min.g, min.b), pack565(max.r, max.g, max.b)
		// Transparent mode requires c0 <= c1; swap to select the 3-color +
		// transparent-index palette variant.
		if c0 > c1 {
			c0, c1 = c1, c0
		}
		p0, p1 := rgb565(c0), rgb565(c1)
		pal := [4]pixel{
			{p0.r, p0.g, p0.b, 255}, {p1.r, p1.g, p1.b, 255},
			{uint8((int(p0.r) + int(p1.r)) / 2), uint8((int(p0.g) + int(p1.g)) / 2), uint8((int(p0.b) + int(p1.b)) / 2), 255},
			{0, 0, 0, 0},
		}
		var indices uint32
		for i, p := range block {
			var idx int
			if p.a < 128 {
				idx = 3
			} else {
				idx = nearestColorIdx(p, pal, weights)
				if idx == 3 {
					idx = 2
				}
			}
			indices |= uint32(idx) << (uint(i) * 2)
		}
		out[0], out[1] = byte(c0), byte(c0>>8)
		out[2], out[3] = byte(c1), byte(c1>>8)
		out[4], out[5], out[6], out[7] = byte(indices), byte(indices>>8), byte(indices>>16), byte(indices>>24)
		return out
	}

	c0, c1, indices := encodeBlockColor4(block, weights)
	out[0], out[1] = byte(c0), byte(c0>>8)
	out[2], out[3] = byte(c1), byte(c1>>8)
	out[4], out[5], out[6], out[7] = byte(indices), byte(indices>>8), byte(indices>>16), byte(indices>>24)
	return out
}

func encodeBlockDXT3Alpha(block [16]pixel) []byte {
	out := make([]byte, 8)
	for i := 0; i < 16; i += 2 {
		lo := block[i].a >> 4
		hi := block[i+1].a >> 4
		out[i/2] = lo | hi<<4
	}
	return out
}

func encodeBlockDXT5Alpha(block [16]pixel) []byte {
	out := make([]byte, 8)
	a0, a1 := blockMinMaxAlpha(block)
	// Order the endpoints a0 >= a1, so every non-flat block uses the 8-level
	// (no-sentinel) interpolation mode; the 6-level form is never emitted.
	if a0 == a1 {
		out[0], out[1] = a0, a1
	} else {
		out[0], out[1] = a0, a1
		if a0 < a1 {
			out[0], out[1] = a1, a0
		}
	}
	pal := alphaPaletteDXT5(out[0], out[1])

	var bits uint64
	for i, p := range block {
		idx := nearestAlphaIdx(p.a, pal)
		bits |= uint64(idx) << (uint(i) * 3)
	}
	out[2] = byte(bits)
	out[3] = byte(bits >> 8)
	out[4] = byte(bits >> 16)
	out[5] = byte(bits >> 24)
	out[6] = byte(bits >> 32)
	out[7] = byte(bits >> 40)
	return out
}

func encodeBlockDXT3(block [16]pixel, weights *RGBWeights) []byte {
	alpha := encodeBlockDXT3Alpha(block)
	c0, c1, indices := encodeBlockColor4(block, weights)
	color := make([]byte, 8)
	color[0], color[1] = byte(c0), byte(c0>>8)
	color[2], color[3] = byte(c1), byte(c1>>8)
	color[4], color[5], color[6], color[7] = byte(indices), byte(indices>>8), byte(indices>>16), byte(indices>>24)
	return append(alpha, color...)
}

func encodeBlockDXT5(block [16]pixel, weights *RGBWeights) []byte {
	alpha := encodeBlockDXT5Alpha(block)
	c0, c1, indices := encodeBlockColor4(block, weights)
	color := make([]byte, 8)
	color[0], color[1] = byte(c0), byte(c0>>8)
	color[2], color[3] = byte(c1), byte(c1>>8)
	color[4], color[5], color[6], color[7] = byte(indices), byte(indices>>8), byte(indices>>16), byte(indices>>24)
	return append(alpha, color...)
}

// EncodeImageWithOptions compresses img into the given block Format,
// returning the encoded byte stream and img's width and height in pixels
// (not rounded up to the 4x4 block grid).
func EncodeImageWithOptions(img image.Image, format Format, opts *EncodeOptions) (data []byte, w, h int, err error) {
	if format.BlockSize() == 0 {
		return nil, 0, 0, errUnsupportedFormat
	}

	var weights *RGBWeights
	if opts != nil {
		weights = opts.RGBWeights
	}

	bounds := img.Bounds()
	w, h = bounds.Dx(), bounds.Dy()
	bw, bh := (w+3)/4, (h+3)/4

	out := make([]byte, 0, bw*bh*format.BlockSize())
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			block := gatherBlock(img, bx*4, by*4)
			switch format {
			case FormatDXT1:
				out = append(out, encodeBlockDXT1(block, weights)...)
			case FormatDXT3:
				out = append(out, encodeBlockDXT3(block, weights)...)
			case FormatDXT5:
				out = append(out, encodeBlockDXT5(block, weights)...)
			}
		}
	}

	return out, w, h, nil
}
