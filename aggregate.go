package pixelate

import (
	"image"
	"runtime"
	"slices"
	"sync"

	"github.com/esimov/pixelate/utils"
)

// Aggregate downsamples img by replacing every cellSize x cellSize block with
// its representative color. Blocks on the right and bottom edges are clipped
// to the image, so the result is ceil(w/cellSize) x ceil(h/cellSize) pixels.
//
// The representative RGB value is the most frequent color of the block. Ties
// go to the candidate closest to the per channel median of the block, then to
// the one met first in raster order. The alpha channel is reduced on its own
// with the same rule. The result is always a color present in the block.
func Aggregate(img *image.NRGBA, cellSize, workers int) *image.NRGBA {
	return AggregateGrid(img, Grid{Size: cellSize}, workers)
}

// AggregateGrid is like Aggregate but the cells follow g, so the blocks of
// the first row and column are clipped when g has an offset.
func AggregateGrid(img *image.NRGBA, g Grid, workers int) *image.NRGBA {
	b := img.Bounds()
	if g.Size <= 1 {
		return imgToNRGBA(img)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	size := g.Size
	startX, w := g.span(b.Dx(), g.Offset.X)
	startY, h := g.span(b.Dy(), g.Offset.Y)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for cy := 0; cy < h; cy++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(cy int) {
			defer func() {
				<-sem
				wg.Done()
			}()

			cs := newCellStats(size * size)
			y0 := b.Min.Y + utils.Max(startY+cy*size, 0)
			y1 := b.Min.Y + utils.Min(startY+(cy+1)*size, b.Dy())
			di := dst.PixOffset(0, cy)
			for cx := 0; cx < w; cx++ {
				x0 := b.Min.X + utils.Max(startX+cx*size, 0)
				x1 := b.Min.X + utils.Min(startX+(cx+1)*size, b.Dx())

				cs.reset()
				for y := y0; y < y1; y++ {
					si := img.PixOffset(x0, y)
					for x := x0; x < x1; x++ {
						cs.add(img.Pix[si : si+4 : si+4])
						si += 4
					}
				}
				rgb, alpha := cs.representative()
				dst.Pix[di+0] = uint8(rgb >> 16)
				dst.Pix[di+1] = uint8(rgb >> 8)
				dst.Pix[di+2] = uint8(rgb)
				dst.Pix[di+3] = uint8(alpha)
				di += 4
			}
		}(cy)
	}
	wg.Wait()

	return dst
}

// cellStats collects the pixels of one cell. It is reused across cells by a
// single goroutine.
type cellStats struct {
	rgb     []uint32
	alpha   []uint32
	counts  map[uint32]int
	scratch []uint32
}

func newCellStats(n int) *cellStats {
	return &cellStats{
		rgb:     make([]uint32, 0, n),
		alpha:   make([]uint32, 0, n),
		counts:  make(map[uint32]int, n),
		scratch: make([]uint32, 0, n),
	}
}

func (cs *cellStats) reset() {
	cs.rgb = cs.rgb[:0]
	cs.alpha = cs.alpha[:0]
}

func (cs *cellStats) add(px []uint8) {
	cs.rgb = append(cs.rgb, uint32(px[0])<<16|uint32(px[1])<<8|uint32(px[2]))
	cs.alpha = append(cs.alpha, uint32(px[3]))
}

// representative returns the packed RGB and the alpha value of the cell.
func (cs *cellStats) representative() (uint32, uint32) {
	rgb := cs.mode(cs.rgb, cs.median(cs.rgb, 3), l1RGB)
	alpha := cs.mode(cs.alpha, cs.median(cs.alpha, 1), l1)
	return rgb, alpha
}

// mode returns the most frequent value of keys. Equally frequent values are
// ranked by their distance to median, then by their first occurrence.
func (cs *cellStats) mode(keys []uint32, median uint32, dist func(a, b uint32) int) uint32 {
	clear(cs.counts)
	best := 0
	for _, k := range keys {
		cs.counts[k]++
		best = utils.Max(best, cs.counts[k])
	}

	winner, winDist := uint32(0), -1
	for _, k := range keys {
		if cs.counts[k] != best {
			continue
		}
		// Mark the value as visited so later occurrences are skipped.
		cs.counts[k] = -1
		if d := dist(k, median); winDist < 0 || d < winDist {
			winner, winDist = k, d
		}
	}
	return winner
}

// median returns the lower median of every 8-bit channel of the packed keys.
func (cs *cellStats) median(keys []uint32, channels int) uint32 {
	var out uint32
	for ch := 0; ch < channels; ch++ {
		shift := uint(8 * ch)
		cs.scratch = cs.scratch[:0]
		for _, k := range keys {
			cs.scratch = append(cs.scratch, (k>>shift)&0xff)
		}
		slices.Sort(cs.scratch)
		out |= cs.scratch[(len(cs.scratch)-1)/2] << shift
	}
	return out
}

func l1(a, b uint32) int {
	return utils.Abs(int(a) - int(b))
}

func l1RGB(a, b uint32) int {
	d := 0
	for shift := 0; shift < 24; shift += 8 {
		d += l1((a>>shift)&0xff, (b>>shift)&0xff)
	}
	return d
}
