package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/esimov/pixelate"
	"github.com/esimov/pixelate/quant"
)

func TestConfig_Default(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Default().Pixelate.Engine()
	assert.NoError(err)
	assert.Equal(pixelate.DefaultConfig(), cfg)
}

func TestConfig_LoadConfiguration(t *testing.T) {
	assert := assert.New(t)
	defer func() { Config = Default() }()

	path := filepath.Join(t.TempDir(), "pixelate.toml")
	assert.NoError(os.WriteFile(path, []byte(`
[main]
log_level = "debug"

[pixelate]
colors = 8
scale = 4
pixel_width = 3
transparent = true
metric = "lab"
tolerance = 12.5

[batch]
workers = 2
`), 0o600))

	assert.NoError(LoadConfiguration(path))
	assert.Equal("debug", Config.Main.LogLevel)
	assert.Equal(2, Config.Batch.Workers)
	assert.Equal("_pixelated", Config.Batch.Suffix)

	cfg, err := Config.Pixelate.Engine()
	assert.NoError(err)
	assert.Equal(8, cfg.NumColors)
	assert.Equal(4, cfg.ScaleResult)
	assert.Equal(1, cfg.InitialUpscale)
	assert.Equal(3, cfg.PixelWidth)
	assert.True(cfg.TransparentBackground)
	assert.Equal(quant.Lab, cfg.Metric)
	assert.Equal(12.5, cfg.Tolerance)
	assert.Equal(0.9, cfg.Alignment)
}

func TestConfig_LoadConfigurationErrors(t *testing.T) {
	assert := assert.New(t)
	defer func() { Config = Default() }()

	assert.NoError(LoadConfiguration(""))
	assert.Error(LoadConfiguration(filepath.Join(t.TempDir(), "missing.toml")))

	path := filepath.Join(t.TempDir(), "broken.toml")
	assert.NoError(os.WriteFile(path, []byte("[pixelate\ncolors = "), 0o600))
	assert.Error(LoadConfiguration(path))
}

func TestConfig_Engine(t *testing.T) {
	assert := assert.New(t)

	c := Default().Pixelate
	c.Scale = 1
	cfg, err := c.Engine()
	assert.NoError(err)
	assert.Equal(0, cfg.ScaleResult)

	c.Metric = "hsv"
	_, err = c.Engine()
	assert.Error(err)

	c = Default().Pixelate
	c.Colors = 1
	_, err = c.Engine()
	assert.ErrorIs(err, pixelate.ErrInvalidConfiguration)
}

func TestConfig_WriteConfig(t *testing.T) {
	assert := assert.New(t)
	defer func() { Config = Default() }()

	path := filepath.Join(t.TempDir(), "out.toml")
	Config.Pixelate.Colors = 32
	Config.Main.LogLevel = "warn"
	assert.NoError(WriteConfig(path))

	Config = Default()
	assert.NoError(LoadConfiguration(path))
	assert.Equal(32, Config.Pixelate.Colors)
	assert.Equal("warn", Config.Main.LogLevel)
}
