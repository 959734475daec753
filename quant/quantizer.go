// Package quant reduces the colors of an image to a small palette.
//
// The palette is built with a population weighted median cut over the distinct
// colors of the image, optionally refined by a few deterministic k-means passes.
// Every pixel is then replaced by its nearest palette entry while keeping its
// own alpha value. For a given input and configuration the output never varies.
package quant

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// ErrTooFewColors is returned when less than two palette colors are requested.
var ErrTooFewColors = errors.New("quant: the palette needs at least two colors")

// DefaultIterations is the default number of k-means refinement passes.
const DefaultIterations = 8

// Quantizer holds the palette reduction options.
type Quantizer struct {
	// NumColors is the maximum number of palette entries.
	NumColors int
	// Metric is the color distance used for clustering and remapping.
	Metric Metric
	// Iterations is the number of k-means passes run after the median cut. 0 disables them.
	Iterations int
	// Workers bounds the number of rows remapped concurrently. 0 means runtime.NumCPU().
	Workers int
}

var _ draw.Quantizer = (*Quantizer)(nil)

// Palette computes the reduced palette of img, without remapping it.
func (q *Quantizer) Palette(img *image.NRGBA) (Palette, error) {
	if q.NumColors < 2 {
		return nil, ErrTooFewColors
	}
	return entriesToPalette(q.build(histogram(img), q.NumColors)), nil
}

// Reduce builds the palette of img and returns it together with a new image where
// every pixel is replaced by its nearest palette entry. Palette entries that no
// pixel maps to are left out. The input image is not modified.
func (q *Quantizer) Reduce(img *image.NRGBA) (Palette, *image.NRGBA, error) {
	if q.NumColors < 2 {
		return nil, nil, ErrTooFewColors
	}
	candidates := entriesToPalette(q.build(histogram(img), q.NumColors))
	dst, used, err := Remap(img, candidates, q.Metric, q.Workers)
	if err != nil {
		return nil, nil, err
	}
	return used, dst, nil
}

// Quantize implements the draw.Quantizer interface. It appends up to
// cap(p)-len(p) colors to p, bounded by NumColors when it is set.
func (q *Quantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	k := cap(p) - len(p)
	if q.NumColors > 0 && q.NumColors < k {
		k = q.NumColors
	}
	if k <= 0 {
		return p
	}

	src := image.NewNRGBA(m.Bounds())
	draw.Draw(src, src.Bounds(), m, m.Bounds().Min, draw.Src)

	hist := histogram(src)
	if k == 1 {
		if len(hist) > 0 {
			p = append(p, hist[0].c)
		}
		return p
	}
	return append(p, entriesToPalette(q.build(hist, k)).Colors()...)
}

// build returns the palette candidates of the histogram, ordered by descending
// population and ascending packed value. Colors collapsing to the same value
// after rounding are merged.
func (q *Quantizer) build(hist []colorCount, k int) []entry {
	var entries []entry
	if len(hist) <= k {
		entries = make([]entry, len(hist))
		for i, cc := range hist {
			entries[i] = entry{c: cc.c, weight: cc.n}
		}
		return entries
	}

	for _, b := range medianCut(hist, k) {
		entries = append(entries, entry{c: b.mean(), weight: b.weight()})
	}
	entries = refine(hist, entries, q.Metric, q.Iterations)

	merged := make(map[uint32]int, len(entries))
	out := entries[:0]
	for _, e := range entries {
		key := packRGB(e.c)
		if i, ok := merged[key]; ok {
			out[i].weight += e.weight
			continue
		}
		merged[key] = len(out)
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

// Remap replaces every pixel of img with its nearest palette entry, preserving
// the pixel alpha. It returns the new image and the entries actually used, in
// palette order. Fully transparent pixels are matched against the entries used
// by the visible pixels only, so they never keep an otherwise unused color alive.
// Rows are processed concurrently by up to workers goroutines, each pixel being
// written by exactly one of them.
func Remap(img *image.NRGBA, p Palette, m Metric, workers int) (*image.NRGBA, Palette, error) {
	dst := image.NewNRGBA(img.Bounds())
	if len(p) == 0 {
		copy(dst.Pix, img.Pix)
		return dst, nil, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	used, err := remapRows(img, dst, p, m, workers, func(a uint8) bool { return a != 0 })
	if err != nil {
		return nil, nil, err
	}
	if len(used) == 0 {
		used, err = remapRows(img, dst, p, m, workers, func(a uint8) bool { return a == 0 })
		if err != nil {
			return nil, nil, err
		}
		return dst, used, nil
	}
	if _, err := remapRows(img, dst, used, m, workers, func(a uint8) bool { return a == 0 }); err != nil {
		return nil, nil, err
	}
	return dst, used, nil
}

// remapRows writes into dst the nearest entry of p for the pixels whose alpha
// satisfies keep, and returns the entries of p that were selected.
func remapRows(img, dst *image.NRGBA, p Palette, m Metric, workers int, keep func(uint8) bool) (Palette, error) {
	b := img.Bounds()
	usage := make([][]bool, b.Dy())

	var g errgroup.Group
	g.SetLimit(workers)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		y := y
		g.Go(func() error {
			mt := newMatcher(p, m)
			used := make([]bool, len(p))
			si, di := img.PixOffset(b.Min.X, y), dst.PixOffset(b.Min.X, y)
			for x := b.Min.X; x < b.Max.X; x++ {
				px := img.Pix[si : si+4 : si+4]
				if keep(px[3]) {
					idx := mt.nearest(color.NRGBA{R: px[0], G: px[1], B: px[2]})
					used[idx] = true
					c := p[idx]
					dst.Pix[di+0] = c.R
					dst.Pix[di+1] = c.G
					dst.Pix[di+2] = c.B
					dst.Pix[di+3] = px[3]
				}
				si += 4
				di += 4
			}
			usage[y-b.Min.Y] = used
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out Palette
	for i, c := range p {
		for _, row := range usage {
			if row[i] {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func entriesToPalette(entries []entry) Palette {
	p := make(Palette, len(entries))
	for i, e := range entries {
		p[i] = color.NRGBA{R: e.c.R, G: e.c.G, B: e.c.B, A: 0xff}
	}
	return p
}

func sortEntries(entries []entry) {
	slices.SortStableFunc(entries, func(a, b entry) int {
		if a.weight != b.weight {
			return b.weight - a.weight
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
