package quant

import (
	"image"
	"image/color"
	"slices"
)

// colorCount is a distinct opaque color together with its population.
type colorCount struct {
	c color.NRGBA
	n int
}

// histogram counts the distinct RGB colors of img. Fully transparent pixels are
// left out unless the whole image is transparent. The result is sorted by
// descending population, then by ascending packed RGB value.
func histogram(img *image.NRGBA) []colorCount {
	counts := make(map[uint32]int)
	transparent := make(map[uint32]int)

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.Pix[off : off+4 : off+4]
			key := uint32(px[0])<<16 | uint32(px[1])<<8 | uint32(px[2])
			if px[3] == 0 {
				transparent[key]++
			} else {
				counts[key]++
			}
			off += 4
		}
	}
	if len(counts) == 0 {
		counts = transparent
	}

	hist := make([]colorCount, 0, len(counts))
	for key, n := range counts {
		hist = append(hist, colorCount{c: unpackRGB(key), n: n})
	}
	sortCounts(hist)
	return hist
}

func sortCounts(hist []colorCount) {
	slices.SortFunc(hist, func(a, b colorCount) int {
		if a.n != b.n {
			return b.n - a.n
		}
		ka, kb := packRGB(a.c), packRGB(b.c)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
}

// CountColors returns the number of distinct RGB colors of the visible pixels.
func CountColors(img *image.NRGBA) int {
	return len(histogram(img))
}
