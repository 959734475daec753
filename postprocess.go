package pixelate

import (
	"image"
	"image/color"

	"github.com/esimov/pixelate/quant"
)

// DetectBackground returns the most frequent color among the visible border
// pixels of img. Ties are resolved in favor of the smallest packed RGB value.
// Fully transparent pixels are ignored; ok is false when no border pixel is visible.
func DetectBackground(img *image.NRGBA) (bg color.NRGBA, ok bool) {
	b := img.Bounds()
	counts := make(map[uint32]int)
	count := func(x, y int) {
		if c := img.NRGBAAt(x, y); c.A != 0 {
			counts[uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B)]++
		}
	}

	for x := b.Min.X; x < b.Max.X; x++ {
		count(x, b.Min.Y)
		if b.Dy() > 1 {
			count(x, b.Max.Y-1)
		}
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		count(b.Min.X, y)
		if b.Dx() > 1 {
			count(b.Max.X-1, y)
		}
	}
	if len(counts) == 0 {
		return color.NRGBA{}, false
	}

	var (
		key  uint32
		best int
	)
	for k, n := range counts {
		if n > best || (n == best && k < key) {
			key, best = k, n
		}
	}
	return color.NRGBA{R: uint8(key >> 16), G: uint8(key >> 8), B: uint8(key), A: 0xff}, true
}

// RemoveBackground returns a copy of img where the visible pixels whose color
// lies within tolerance of bg become fully transparent and the other visible
// pixels become opaque. Pixels that are already fully transparent stay so.
func RemoveBackground(img *image.NRGBA, bg color.NRGBA, tolerance float64) *image.NRGBA {
	dst := imgToNRGBA(img)
	limit := tolerance * tolerance

	for i := 0; i < len(dst.Pix); i += 4 {
		px := dst.Pix[i : i+4 : i+4]
		if px[3] == 0 {
			continue
		}
		c := color.NRGBA{R: px[0], G: px[1], B: px[2]}
		if quant.RGB.Distance(c, bg) <= limit {
			px[3] = 0
		} else {
			px[3] = 0xff
		}
	}
	return dst
}
