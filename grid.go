package pixelate

import (
	"image"
	"runtime"
	"sync"

	"github.com/esimov/pixelate/utils"
)

// edgeThreshold is the smallest channel difference between two neighbor
// pixels counted as a color edge. Smaller jumps are treated as noise or
// smooth shading.
const edgeThreshold = 16

// edgeProfile holds the color edge strength accumulated on every vertical
// (cols) and horizontal (rows) boundary of an image. cols[x] is the boundary
// between columns x-1 and x, rows[y] the boundary between rows y-1 and y.
type edgeProfile struct {
	cols []int64
	rows []int64
}

// newEdgeProfile computes the edge profile of img. The rows are split into
// bands processed concurrently; the partial sums are integers, so the result
// does not depend on the number of workers.
func newEdgeProfile(img *image.NRGBA, workers int) *edgeProfile {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	bands := utils.Clamp(workers, 1, h)
	bandH := utils.CeilDiv(h, bands)

	prof := &edgeProfile{
		cols: make([]int64, w),
		rows: make([]int64, h),
	}
	partial := make([][]int64, bands)

	var wg sync.WaitGroup
	for i := 0; i < bands; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			cols := make([]int64, w)
			y0, y1 := i*bandH, utils.Min((i+1)*bandH, h)
			for y := y0; y < y1; y++ {
				off := img.PixOffset(b.Min.X, b.Min.Y+y)
				row := img.Pix[off : off+w*4]
				for x := 1; x < w; x++ {
					if d := edge(row[(x-1)*4:x*4], row[x*4:(x+1)*4]); d > 0 {
						cols[x] += int64(d)
					}
				}
				if y == 0 {
					continue
				}
				prev := img.Pix[off-img.Stride : off-img.Stride+w*4]
				var sum int64
				for x := 0; x < w; x++ {
					if d := edge(prev[x*4:(x+1)*4], row[x*4:(x+1)*4]); d > 0 {
						sum += int64(d)
					}
				}
				prof.rows[y] = sum
			}
			partial[i] = cols
		}(i)
	}
	wg.Wait()

	for _, cols := range partial {
		for x, v := range cols {
			prof.cols[x] += v
		}
	}
	return prof
}

// edge returns the largest channel difference between two pixels, or 0 when
// it stays below the edge threshold.
func edge(p, q []uint8) int {
	d := 0
	for i := 0; i < 4; i++ {
		d = utils.Max(d, utils.Abs(int(p[i])-int(q[i])))
	}
	if d < edgeThreshold {
		return 0
	}
	return d
}

// total returns the whole edge mass of the profile.
func (p *edgeProfile) total() int64 {
	var sum int64
	for _, v := range p.cols {
		sum += v
	}
	for _, v := range p.rows {
		sum += v
	}
	return sum
}

// alignedAxis returns the largest edge mass found on the lines of a grid of
// the given cell size along one axis, together with the phase it was found at.
// The lines of phase p lie at p, p+size, p+2*size... The smallest phase wins ties.
func alignedAxis(profile []int64, size int) (int64, int) {
	var best int64
	phase := 0
	for p := 0; p < size; p++ {
		var sum int64
		for i := p; i < len(profile); i += size {
			sum += profile[i]
		}
		if sum > best {
			best, phase = sum, p
		}
	}
	return best, phase
}

// aligned returns the edge mass lying on the best placed grid of the given
// cell size and the offset of that grid.
func (p *edgeProfile) aligned(size int) (int64, image.Point) {
	cols, px := alignedAxis(p.cols, size)
	rows, py := alignedAxis(p.rows, size)
	return cols + rows, image.Pt(px, py)
}

// Grid is the layout of square cells of Size pixels. The grid lines
// start at Offset, with 0 <= Offset.X, Offset.Y < Size. When the offset is
// not zero the first row and column of cells are clipped.
type Grid struct {
	Size   int
	Offset image.Point
}

// span returns the start of the first cell and the number of cells covering
// n pixels along one axis whose grid lines start at offset.
func (g Grid) span(n, offset int) (int, int) {
	start := 0
	if offset > 0 {
		start = offset - g.Size
	}
	return start, utils.CeilDiv(n-start, g.Size)
}

// Cells returns the number of columns and rows of cells covering b.
func (g Grid) Cells(b image.Rectangle) (int, int) {
	if g.Size <= 1 {
		return b.Dx(), b.Dy()
	}
	_, w := g.span(b.Dx(), g.Offset.X)
	_, h := g.span(b.Dy(), g.Offset.Y)
	return w, h
}

// EstimateGrid infers the size and the placement of the square blocks img is
// made of. A candidate size is accepted when at least the alignment share of
// the color edges lies on its grid lines, the lines being placed where they
// collect the most edges. The largest accepted size wins.
// Images without edges or without a regular block pattern yield a grid of 1.
func EstimateGrid(img *image.NRGBA, alignment float64, workers int) Grid {
	b := img.Bounds()
	maxSize := utils.Min(b.Dx(), b.Dy()) / 2
	if maxSize < 2 {
		return Grid{Size: 1}
	}

	prof := newEdgeProfile(img, workers)
	total := prof.total()
	if total == 0 {
		return Grid{Size: 1}
	}

	for size := maxSize; size >= 2; size-- {
		if mass, offset := prof.aligned(size); float64(mass) >= alignment*float64(total) {
			return Grid{Size: size, Offset: offset}
		}
	}
	return Grid{Size: 1}
}

// EstimateCellSize infers the size of the square blocks img is made of.
// See EstimateGrid.
func EstimateCellSize(img *image.NRGBA, alignment float64, workers int) int {
	return EstimateGrid(img, alignment, workers).Size
}
