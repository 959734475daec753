package quant

import (
	"image"
	"image/color"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
)

// Palette is an ordered set of opaque colors. When a color is equally close
// to several entries the one with the lowest index wins.
type Palette []color.NRGBA

// Contains reports whether the RGB components of c are part of the palette.
func (p Palette) Contains(c color.NRGBA) bool {
	key := packRGB(c)
	for _, e := range p {
		if packRGB(e) == key {
			return true
		}
	}
	return false
}

// Colors converts the palette into a color.Palette usable by image.Paletted and image/gif.
func (p Palette) Colors() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// Swatch renders the palette as a horizontal strip of tile x tile squares.
func (p Palette) Swatch(tile int) *image.NRGBA {
	if tile <= 0 {
		tile = 16
	}
	dst := image.NewNRGBA(image.Rect(0, 0, tile*len(p), tile))
	for i, c := range p {
		for y := 0; y < tile; y++ {
			for x := i * tile; x < (i+1)*tile; x++ {
				dst.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
			}
		}
	}
	return dst
}

// SortByBrightness orders the palette from the darkest to the brightest color.
func SortByBrightness(p Palette) {
	slices.SortStableFunc(p, func(a, b color.NRGBA) int {
		ya, yb := luminance(a), luminance(b)
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}

func luminance(c color.NRGBA) float64 {
	r, g, b := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// packRGB packs the color channels into a single comparable key, ignoring alpha.
func packRGB(c color.NRGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func unpackRGB(key uint32) color.NRGBA {
	return color.NRGBA{R: uint8(key >> 16), G: uint8(key >> 8), B: uint8(key), A: 0xff}
}

// matcher finds the nearest palette entry of a color, memoizing the answers.
// It is not safe for concurrent use; create one per goroutine.
type matcher struct {
	metric  Metric
	centers clusters.Clusters
	cache   map[uint32]int
}

func newMatcher(p Palette, m Metric) *matcher {
	centers := make(clusters.Clusters, len(p))
	for i, c := range p {
		centers[i] = clusters.Cluster{Center: m.coords(c)}
	}
	return &matcher{
		metric:  m,
		centers: centers,
		cache:   make(map[uint32]int),
	}
}

func (mt *matcher) nearest(c color.NRGBA) int {
	key := packRGB(c)
	if idx, ok := mt.cache[key]; ok {
		return idx
	}
	idx := mt.centers.Nearest(mt.metric.coords(c))
	mt.cache[key] = idx
	return idx
}
