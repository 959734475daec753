package pixelate

import (
	"image"
	"image/color"
)

var (
	red    = color.NRGBA{R: 0xff, A: 0xff}
	green  = color.NRGBA{G: 0xff, A: 0xff}
	blue   = color.NRGBA{B: 0xff, A: 0xff}
	yellow = color.NRGBA{R: 0xff, G: 0xff, A: 0xff}
	white  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// fill returns a w x h image colored by fn.
func fill(w, h int, fn func(x, y int) color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fn(x, y))
		}
	}
	return img
}

// blocks returns an image made of size x size blocks, cycling through colors.
func blocks(w, h, size int, colors ...color.NRGBA) *image.NRGBA {
	cols := (w + size - 1) / size
	return fill(w, h, func(x, y int) color.NRGBA {
		return colors[((y/size)*cols+x/size)%len(colors)]
	})
}

// gradient returns a smooth photographic like image without block structure.
func gradient(w, h int) *image.NRGBA {
	return fill(w, h, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 0x80, A: 0xff}
	})
}

// noise returns a deterministic pseudo random image.
func noise(w, h int) *image.NRGBA {
	seed := uint32(2463534242)
	next := func() uint8 {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		return uint8(seed)
	}
	return fill(w, h, func(x, y int) color.NRGBA {
		return color.NRGBA{R: next(), G: next(), B: next(), A: 0xff}
	})
}

func distinctColors(img *image.NRGBA) int {
	set := make(map[[3]uint8]struct{})
	for i := 0; i < len(img.Pix); i += 4 {
		set[[3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}] = struct{}{}
	}
	return len(set)
}

// frame returns img surrounded by a border of n pixels of color c.
func frame(img *image.NRGBA, n int, c color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	return fill(b.Dx()+2*n, b.Dy()+2*n, func(x, y int) color.NRGBA {
		if x < n || y < n || x >= b.Dx()+n || y >= b.Dy()+n {
			return c
		}
		return img.NRGBAAt(b.Min.X+x-n, b.Min.Y+y-n)
	})
}
