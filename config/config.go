// Package config holds the command line configuration, loaded from a TOML file
// and overridden by flags.
package config

import (
	"io"
	"os"
	"runtime"

	"github.com/pelletier/go-toml"

	"github.com/esimov/pixelate"
	"github.com/esimov/pixelate/quant"
)

type config struct {
	Main     configMain     `toml:"main"`
	Pixelate configPixelate `toml:"pixelate"`
	Batch    configBatch    `toml:"batch"`
}

type configMain struct {
	LogLevel string `toml:"log_level"`
}

type configPixelate struct {
	Colors         int     `toml:"colors"`
	Scale          int     `toml:"scale"`
	InitialUpscale int     `toml:"initial_upscale"`
	PixelWidth     int     `toml:"pixel_width"`
	Transparent    bool    `toml:"transparent"`
	Metric         string  `toml:"metric"`
	Iterations     int     `toml:"iterations"`
	Tolerance      float64 `toml:"tolerance"`
	Alignment      float64 `toml:"alignment"`
	Workers        int     `toml:"workers"`
}

type configBatch struct {
	Workers int    `toml:"workers"`
	Suffix  string `toml:"suffix"`
}

// Config holds the configuration data from configuration files
// or flags.
//
// This variable sets some default values that might be overwritten
// by a configuration file.
var Config = Default()

// Default returns the built-in configuration.
func Default() config {
	def := pixelate.DefaultConfig()
	return config{
		Main: configMain{
			LogLevel: "info",
		},
		Pixelate: configPixelate{
			Colors:         def.NumColors,
			Scale:          1,
			InitialUpscale: def.InitialUpscale,
			Metric:         def.Metric.String(),
			Iterations:     def.Iterations,
			Tolerance:      def.Tolerance,
			Alignment:      def.Alignment,
		},
		Batch: configBatch{
			Workers: runtime.NumCPU(),
			Suffix:  "_pixelated",
		},
	}
}

// LoadConfiguration loads the configuration file.
func LoadConfiguration(configPath string) error {
	if configPath == "" {
		return nil
	}

	fd, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer fd.Close()

	dec := toml.NewDecoder(fd)
	if err := dec.Decode(&Config); err != nil {
		return err
	}

	return nil
}

// WriteConfig writes configuration to a file.
func WriteConfig(filename string) error {
	fd, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err = Encode(fd); err != nil {
		defer fd.Close()
		return err
	}

	return fd.Close()
}

// Encode writes the configuration as TOML to w.
func Encode(w io.Writer) error {
	enc := toml.NewEncoder(w).
		Indentation("  ").
		Order(toml.OrderPreserve)

	return enc.Encode(Config)
}

// Engine converts the pixelation section into an engine configuration.
// A scale of 0 or 1 leaves the result at its reduced size.
func (c configPixelate) Engine() (pixelate.Config, error) {
	metric, err := quant.ParseMetric(c.Metric)
	if err != nil {
		return pixelate.Config{}, err
	}

	cfg := pixelate.Config{
		NumColors:             c.Colors,
		InitialUpscale:        c.InitialUpscale,
		PixelWidth:            c.PixelWidth,
		TransparentBackground: c.Transparent,
		Metric:                metric,
		Iterations:            c.Iterations,
		Tolerance:             c.Tolerance,
		Alignment:             c.Alignment,
		Workers:               c.Workers,
	}
	if c.Scale > 1 {
		cfg.ScaleResult = c.Scale
	}
	return cfg, cfg.Validate()
}
