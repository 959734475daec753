package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/esimov/pixelate"
)

func blockImage(w, h, size int) *image.NRGBA {
	colors := []color.NRGBA{
		{R: 0xff, A: 0xff},
		{G: 0xff, A: 0xff},
		{B: 0xff, A: 0xff},
	}
	cols := (w + size - 1) / size
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, colors[((y/size)*cols+x/size)%len(colors)])
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBatch_Run(t *testing.T) {
	assert := assert.New(t)

	src := t.TempDir()
	writePNG(t, filepath.Join(src, "a.png"), blockImage(32, 32, 4))
	writePNG(t, filepath.Join(src, "nested", "b.PNG"), blockImage(24, 24, 3))
	assert.NoError(os.WriteFile(filepath.Join(src, "notes.txt"), []byte("skip me"), 0644))
	assert.NoError(os.WriteFile(filepath.Join(src, "broken.jpg"), []byte("not a jpeg"), 0644))

	// The destination lives inside the source tree and must not be walked.
	dst := filepath.Join(src, "out")
	writePNG(t, filepath.Join(dst, "old.png"), blockImage(8, 8, 2))

	b := &batch{
		proc:    pixelate.New(pixelate.DefaultConfig()),
		dst:     dst,
		suffix:  "_pixelated",
		workers: 2,
	}
	results, err := b.run(src)
	assert.NoError(err)
	if !assert.Len(results, 3) {
		return
	}

	assert.Equal(filepath.Join(src, "a.png"), results[0].src)
	assert.NoError(results[0].err)
	assert.Equal(filepath.Join(dst, "a_pixelated.png"), results[0].dst)

	assert.Equal(filepath.Join(src, "broken.jpg"), results[1].src)
	assert.ErrorIs(results[1].err, pixelate.ErrDecodeFailure)
	assert.NoFileExists(results[1].dst)

	assert.Equal(filepath.Join(src, "nested", "b.PNG"), results[2].src)
	assert.NoError(results[2].err)
	assert.Equal(filepath.Join(dst, "nested", "b_pixelated.png"), results[2].dst)

	f, err := os.Open(results[0].dst)
	assert.NoError(err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	assert.NoError(err)
	assert.Equal(8, cfg.Width)
	assert.Equal(8, cfg.Height)
}

func TestBatch_IsValidExtension(t *testing.T) {
	assert := assert.New(t)

	assert.True(isValidExtension(".png", pixelate.Extensions))
	assert.True(isValidExtension(".JPG", pixelate.Extensions))
	assert.True(isValidExtension(".webp", pixelate.Extensions))
	assert.False(isValidExtension(".txt", pixelate.Extensions))
	assert.False(isValidExtension("", pixelate.Extensions))
}

func TestProcessFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writePNG(t, in, blockImage(16, 16, 2))

	cfg := pixelate.DefaultConfig()
	cfg.ScaleResult = 3
	out := filepath.Join(dir, "out.png")
	assert.NoError(processFile(pixelate.New(cfg), in, out))

	f, err := os.Open(out)
	assert.NoError(err)
	defer f.Close()
	img, err := png.DecodeConfig(f)
	assert.NoError(err)
	assert.Equal(24, img.Width)

	bad := filepath.Join(dir, "bad.png")
	assert.NoError(os.WriteFile(bad, []byte("nope"), 0644))
	failed := filepath.Join(dir, "failed.png")
	assert.Error(processFile(pixelate.New(cfg), bad, failed))
	assert.NoFileExists(failed)

	assert.Error(processFile(pixelate.New(cfg), filepath.Join(dir, "missing.png"), failed))
}

func TestInspect(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, inspect(&buf, blockImage(32, 32, 4), pixelate.DefaultConfig()))

	out := buf.String()
	assert.Contains(t, out, "Size:            32x32\n")
	assert.Contains(t, out, "Cell size:       4\n")
	assert.Contains(t, out, "Grid offset:     0,0\n")
	assert.Contains(t, out, "Pixel art size:  8x8\n")
	assert.Contains(t, out, "Distinct colors: 3\n")
	assert.Contains(t, out, "Dominant colors:")
}

func TestInspect_FollowsConfiguration(t *testing.T) {
	assert := assert.New(t)

	cfg := pixelate.DefaultConfig()
	cfg.PixelWidth = 2
	var buf bytes.Buffer
	assert.NoError(inspect(&buf, blockImage(32, 32, 4), cfg))
	assert.Contains(buf.String(), "Cell size:       2\n")
	assert.Contains(buf.String(), "Pixel art size:  16x16\n")

	cfg.InitialUpscale = 3
	buf.Reset()
	assert.NoError(inspect(&buf, blockImage(32, 32, 4), cfg))
	assert.Contains(buf.String(), "Cell size:       2\n")
	assert.Contains(buf.String(), "Pixel art size:  16x16\n")

	// A shifted block pattern reports where its grid starts.
	shifted := blockImage(68, 68, 4).SubImage(image.Rect(3, 3, 68, 68))
	buf.Reset()
	assert.NoError(inspect(&buf, shifted, pixelate.DefaultConfig()))
	assert.Contains(buf.String(), "Grid offset:     1,1\n")
	assert.Contains(buf.String(), "Pixel art size:  17x17\n")

	cfg = pixelate.DefaultConfig()
	cfg.InitialUpscale = 1 << 20
	assert.ErrorIs(inspect(&bytes.Buffer{}, blockImage(32, 32, 4), cfg), pixelate.ErrUnsupportedImageMode)

	cfg = pixelate.DefaultConfig()
	cfg.NumColors = 1
	assert.ErrorIs(inspect(&bytes.Buffer{}, blockImage(32, 32, 4), cfg), pixelate.ErrInvalidConfiguration)
}
