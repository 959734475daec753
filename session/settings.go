package session

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/esimov/pixelate"
)

// Settings holds the user facing pixelation parameters, bounded to the ranges
// offered by the presentation layer.
type Settings struct {
	// Colors is the palette size, in [2, 64].
	Colors int `toml:"colors"`
	// Scale is the result upscale factor, in [1, 20]. 1 leaves the result as is.
	Scale int `toml:"scale"`
	// InitialUpscale is the source upscale factor, in [1, 4].
	InitialUpscale int `toml:"initial_upscale"`
	// PixelWidth is the cell size override, in [0, 50]. 0 detects it.
	PixelWidth int `toml:"pixel_width"`
	// Transparent turns the background color transparent.
	Transparent bool `toml:"transparent"`
}

// DefaultSettings returns the settings a new session starts with.
func DefaultSettings() Settings {
	return Settings{
		Colors:         16,
		Scale:          1,
		InitialUpscale: 2,
		PixelWidth:     0,
	}
}

// Validate checks the settings against their bounds. The returned error
// wraps pixelate.ErrInvalidConfiguration.
func (s Settings) Validate() error {
	err := validation.ValidateStruct(
		&s,
		validation.Field(&s.Colors, validation.Required, validation.Min(2), validation.Max(64)),
		validation.Field(&s.Scale, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&s.InitialUpscale, validation.Required, validation.Min(1), validation.Max(4)),
		validation.Field(&s.PixelWidth, validation.Min(0), validation.Max(50)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", pixelate.ErrInvalidConfiguration, err)
	}
	return nil
}

// Config maps the settings onto an engine configuration based on base.
func (s Settings) Config(base pixelate.Config) pixelate.Config {
	cfg := base
	cfg.NumColors = s.Colors
	cfg.ScaleResult = 0
	if s.Scale > 1 {
		cfg.ScaleResult = s.Scale
	}
	cfg.InitialUpscale = s.InitialUpscale
	cfg.PixelWidth = s.PixelWidth
	cfg.TransparentBackground = s.Transparent
	return cfg
}
