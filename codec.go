package pixelate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/esimov/pixelate/quant"
)

// Format is an output image format.
type Format string

// Supported output formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	GIF  Format = "gif"
)

// Extensions lists the file extensions accepted as input.
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// FormatFromPath returns the output format matching the file extension of path.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".bmp":
		return BMP, nil
	case ".gif":
		return GIF, nil
	}
	return "", fmt.Errorf("unsupported output format: %q", filepath.Ext(path))
}

// Decode reads an image in any of the supported formats, applying the EXIF orientation if present.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return img, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img *image.NRGBA, format Format) error {
	switch format {
	case PNG, "":
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case BMP:
		return bmp.Encode(w, img)
	case GIF:
		return gif.Encode(w, toPaletted(img), nil)
	}
	return fmt.Errorf("unsupported output format: %q", format)
}

// toPaletted converts img to a paletted image using the palette reducer.
// Fully transparent pixels get a dedicated transparent entry.
func toPaletted(img *image.NRGBA) *image.Paletted {
	transparent := false
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 0 {
			transparent = true
			break
		}
	}

	n := 256
	if transparent {
		n--
	}
	q := &quant.Quantizer{NumColors: n}
	p := q.Quantize(make(color.Palette, 0, n), img)
	if transparent {
		p = append(p, color.NRGBA{})
	}

	b := img.Bounds()
	dst := image.NewPaletted(b, p)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// Process decodes the image read from r, pixelates it and encodes the result to w.
// The output format follows the file extension when w is an *os.File, PNG otherwise.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	src, err := Decode(r)
	if err != nil {
		return err
	}

	res, err := p.Pixelate(src)
	if err != nil {
		return err
	}

	format := PNG
	if f, ok := w.(*os.File); ok {
		if ff, err := FormatFromPath(f.Name()); err == nil {
			format = ff
		}
	}
	return Encode(w, res.Image, format)
}
