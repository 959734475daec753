package pixelate

import (
	"fmt"
	"image"
	"image/color"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/esimov/pixelate/quant"
)

// Result holds the pixelated image together with the values the pipeline settled on.
type Result struct {
	// Image is the final image.
	Image *image.NRGBA
	// CellSize is the cell edge, in pixels of the upscaled working buffer.
	CellSize int
	// Offset is where the grid lines start in the working buffer.
	Offset image.Point
	// SourceCellSize is the cell edge expressed in source pixels.
	SourceCellSize float64
	// Palette is the reduced palette, ordered by descending population.
	Palette quant.Palette
	// Background is the color made transparent, if any. It stays nil when the
	// border of the image is already fully transparent.
	Background *color.NRGBA
}

// Processor runs the pixelation pipeline with a fixed configuration.
// It holds no state between calls and is safe for concurrent use.
type Processor struct {
	Config
	Logger log.FieldLogger
}

// New returns a Processor using cfg and the standard logger.
func New(cfg Config) *Processor {
	return &Processor{
		Config: cfg,
		Logger: log.StandardLogger(),
	}
}

// Pixelate converts img into pixel art using cfg and returns the resulting image.
func Pixelate(img image.Image, cfg Config) (*image.NRGBA, error) {
	res, err := New(cfg).Pixelate(img)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// Grid validates the configuration and img, then returns the cell grid of
// img together with the working buffer it applies to: the source enlarged by
// the initial upscale factor. The grid comes from PixelWidth when it is set
// and is estimated otherwise.
func (p *Processor) Grid(img image.Image) (Grid, *image.NRGBA, error) {
	if err := p.Validate(); err != nil {
		return Grid{}, nil, err
	}
	if err := checkImage(img, p.InitialUpscale); err != nil {
		return Grid{}, nil, err
	}

	src := Upscale(imgToNRGBA(img), p.InitialUpscale)

	grid := Grid{Size: p.PixelWidth * p.InitialUpscale}
	if p.PixelWidth == 0 {
		grid = EstimateGrid(src, p.Alignment, p.Workers)
	}
	p.logger().WithFields(log.Fields{
		"size":      src.Bounds().Size(),
		"cell_size": grid.Size,
		"offset":    grid.Offset,
		"detected":  p.PixelWidth == 0,
	}).Debug("grid estimated")

	return grid, src, nil
}

func (p *Processor) logger() log.FieldLogger {
	if p.Logger == nil {
		return log.StandardLogger()
	}
	return p.Logger
}

// Pixelate runs the four pipeline stages on img: grid estimation, cell
// aggregation, palette reduction and post-processing. The source image is
// never modified.
func (p *Processor) Pixelate(img image.Image) (*Result, error) {
	start := time.Now()
	grid, src, err := p.Grid(img)
	if err != nil {
		return nil, err
	}
	logger := p.logger()

	cells := AggregateGrid(src, grid, p.Workers)
	logger.WithField("size", cells.Bounds().Size()).Debug("cells aggregated")

	if cb := cells.Bounds(); !fits(cb.Dx(), cb.Dy(), p.ScaleResult) {
		return nil, fmt.Errorf("%w: result of %dx%d pixels scaled by %d is too large",
			ErrUnsupportedImageMode, cb.Dx(), cb.Dy(), p.ScaleResult)
	}

	q := &quant.Quantizer{
		NumColors:  p.NumColors,
		Metric:     p.Metric,
		Iterations: p.Iterations,
		Workers:    p.Workers,
	}
	palette, dst, err := q.Reduce(cells)
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{
		"colors": len(palette),
		"metric": p.Metric,
	}).Debug("palette reduced")

	res := &Result{
		CellSize:       grid.Size,
		Offset:         grid.Offset,
		SourceCellSize: float64(grid.Size) / float64(p.InitialUpscale),
		Palette:        palette,
	}

	if p.TransparentBackground {
		if bg, ok := DetectBackground(dst); ok {
			dst = RemoveBackground(dst, bg, p.Tolerance)
			res.Background = &bg
			logger.WithField("background", bg).Debug("background removed")
		}
	}
	if p.ScaleResult > 1 {
		dst = Upscale(dst, p.ScaleResult)
	}
	res.Image = dst

	logger.WithFields(log.Fields{
		"size":     dst.Bounds().Size(),
		"duration": time.Since(start),
	}).Debug("image pixelated")

	return res, nil
}
