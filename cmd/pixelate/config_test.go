package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/esimov/pixelate"
	"github.com/esimov/pixelate/config"
)

func resetConfig(t *testing.T) {
	t.Cleanup(func() {
		config.Config = config.Default()
		configOut = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})
}

func TestConfigCmd_Write(t *testing.T) {
	assert := assert.New(t)
	resetConfig(t)

	path := filepath.Join(t.TempDir(), "pixelate.toml")
	rootCmd.SetArgs([]string{"config", "--write", path, "--colors", "8", "--metric", "lab", "--transparent"})
	assert.NoError(rootCmd.Execute())

	config.Config = config.Default()
	assert.NoError(config.LoadConfiguration(path))
	assert.Equal(8, config.Config.Pixelate.Colors)
	assert.Equal("lab", config.Config.Pixelate.Metric)
	assert.True(config.Config.Pixelate.Transparent)

	cfg, err := config.Config.Pixelate.Engine()
	assert.NoError(err)
	assert.Equal(8, cfg.NumColors)
	assert.True(cfg.TransparentBackground)
}

func TestConfigCmd_Print(t *testing.T) {
	assert := assert.New(t)
	resetConfig(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"config", "--scale", "4"})
	assert.NoError(rootCmd.Execute())

	out := buf.String()
	assert.Contains(out, "[pixelate]")
	assert.Contains(out, "scale = 4")
	assert.Contains(out, "[batch]")
}

func TestConfigCmd_RejectsInvalidConfiguration(t *testing.T) {
	resetConfig(t)

	path := filepath.Join(t.TempDir(), "pixelate.toml")
	rootCmd.SetArgs([]string{"config", "--write", path, "--colors", "1"})
	assert.ErrorIs(t, rootCmd.Execute(), pixelate.ErrInvalidConfiguration)
	assert.NoFileExists(t, path)
}
