package bcn

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// GenerateMipmaps returns the full mip chain for img, starting at the next
// level below full size (the caller already has the base level) down to
// 1x1, each halved via a Catmull-Rom resample. When useSRGB is true, each
// level is linearized before filtering and re-encoded afterward so the
// downsample averages in linear light, matching how BI's own texture
// pipeline treats albedo versus data (normal/specular) maps.
func GenerateMipmaps(img image.Image, useSRGB bool) []*image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 1 && h <= 1 {
		return nil
	}

	base := toNRGBAImg(img)
	if useSRGB {
		base = linearizeNRGBA(base)
	}

	var levels []*image.NRGBA
	cur := base
	curW, curH := w, h
	for curW > 1 || curH > 1 {
		nextW := maxInt(1, curW/2)
		nextH := maxInt(1, curH/2)

		dst := image.NewNRGBA(image.Rect(0, 0, nextW, nextH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), cur, cur.Bounds(), draw.Over, nil)

		levels = append(levels, dst)
		cur = dst
		curW, curH = nextW, nextH
	}

	if useSRGB {
		for i, lvl := range levels {
			levels[i] = delinearizeNRGBA(lvl)
		}
	}

	return levels
}

func toNRGBAImg(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

func linearizeNRGBA(src *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(src.Bounds())
	for i := 0; i+3 < len(src.Pix); i += 4 {
		out.Pix[i] = srgbToLinear(src.Pix[i])
		out.Pix[i+1] = srgbToLinear(src.Pix[i+1])
		out.Pix[i+2] = srgbToLinear(src.Pix[i+2])
		out.Pix[i+3] = src.Pix[i+3]
	}
	return out
}

func delinearizeNRGBA(src *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(src.Bounds())
	for i := 0; i+3 < len(src.Pix); i += 4 {
		out.Pix[i] = linearToSRGB(src.Pix[i])
		out.Pix[i+1] = linearToSRGB(src.Pix[i+1])
		out.Pix[i+2] = linearToSRGB(src.Pix[i+2])
		out.Pix[i+3] = src.Pix[i+3]
	}
	return out
}

func srgbToLinear(c uint8) uint8 {
	v := float64(c) / 255
	var lin float64
	if v <= 0.04045 {
		lin = v / 12.92
	} else {
		lin = math.Pow((v+0.055)/1.055, 2.4)
	}
	return uint8(math.Round(lin * 255))
}

func linearToSRGB(c uint8) uint8 {
	v := float64(c) / 255
	var s float64
	if v <= 0.0031308 {
		s = v * 12.92
	} else {
		s = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return uint8(math.Round(s * 255))
}
