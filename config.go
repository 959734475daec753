package pixelate

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/esimov/pixelate/quant"
)

// Config holds the pixelation parameters.
// Zero values of ScaleResult and PixelWidth mean the option is not set.
type Config struct {
	// NumColors is the maximum number of colors of the result.
	NumColors int
	// ScaleResult is the integer upscale factor applied to the reduced image.
	ScaleResult int
	// InitialUpscale enlarges the source with nearest neighbor replication
	// before the grid estimation and the cell aggregation.
	InitialUpscale int
	// PixelWidth forces the cell size, in source pixels.
	PixelWidth int
	// TransparentBackground turns the detected background color transparent.
	TransparentBackground bool

	// Metric is the color distance used by the palette reducer.
	Metric quant.Metric
	// Iterations is the number of k-means passes refining the median cut palette.
	Iterations int
	// Tolerance is the largest RGB distance to the background color still
	// considered background.
	Tolerance float64
	// Alignment is the share of the color edges which must fall on the grid
	// lines for a cell size to be accepted by the estimator.
	Alignment float64
	// Workers bounds the number of goroutines used inside one invocation.
	// 0 means runtime.NumCPU(). It never changes the result.
	Workers int
}

// DefaultConfig returns the default pixelation parameters.
func DefaultConfig() Config {
	return Config{
		NumColors:      16,
		InitialUpscale: 1,
		Metric:         quant.RGB,
		Iterations:     quant.DefaultIterations,
		Alignment:      0.9,
	}
}

// Validate checks the configuration. The returned error wraps both
// ErrInvalidConfiguration and the field errors.
func (c Config) Validate() error {
	err := validation.ValidateStruct(
		&c,
		validation.Field(&c.NumColors, validation.Required, validation.Min(2)),
		validation.Field(&c.ScaleResult, validation.Min(1)),
		validation.Field(&c.InitialUpscale, validation.Required, validation.Min(1)),
		validation.Field(&c.PixelWidth, validation.Min(1)),
		validation.Field(&c.Metric, validation.In(quant.RGB, quant.Lab)),
		validation.Field(&c.Iterations, validation.Min(0)),
		validation.Field(&c.Tolerance, validation.Min(0.0)),
		validation.Field(&c.Alignment, validation.Required, validation.Min(0.0).Exclusive(), validation.Max(1.0)),
		validation.Field(&c.Workers, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}
