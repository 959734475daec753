package pixelate

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostProcess_DetectBackground(t *testing.T) {
	testCases := []struct {
		name string
		img  func() *image.NRGBA
		want color.NRGBA
		ok   bool
	}{
		{
			name: "framed-sprite",
			img: func() *image.NRGBA {
				return fill(6, 6, func(x, y int) color.NRGBA {
					if x > 0 && x < 5 && y > 0 && y < 5 {
						return red
					}
					return white
				})
			},
			want: white,
			ok:   true,
		},
		{
			name: "border-majority",
			img: func() *image.NRGBA {
				// The interior is mostly blue but the border is mostly green.
				return fill(8, 8, func(x, y int) color.NRGBA {
					if x == 0 && y == 0 {
						return red
					}
					if x == 0 || y == 0 || x == 7 || y == 7 {
						return green
					}
					return blue
				})
			},
			want: green,
			ok:   true,
		},
		{
			name: "tie-smallest-value",
			img: func() *image.NRGBA {
				return fill(2, 2, func(x, y int) color.NRGBA {
					if x == 0 {
						return red
					}
					return blue
				})
			},
			want: blue,
			ok:   true,
		},
		{
			name: "single-pixel",
			img: func() *image.NRGBA {
				return fill(1, 1, func(x, y int) color.NRGBA { return yellow })
			},
			want: yellow,
			ok:   true,
		},
		{
			name: "transparent-pixels-ignored",
			img: func() *image.NRGBA {
				// Most of the border is transparent red, the visible part is white.
				return fill(6, 6, func(x, y int) color.NRGBA {
					if y < 2 {
						return color.NRGBA{R: 0xff}
					}
					if x > 0 && x < 5 && y < 5 {
						return red
					}
					return white
				})
			},
			want: white,
			ok:   true,
		},
		{
			name: "transparent-border",
			img: func() *image.NRGBA {
				return fill(4, 4, func(x, y int) color.NRGBA {
					if x > 0 && x < 3 && y > 0 && y < 3 {
						return red
					}
					return color.NRGBA{R: 0xff}
				})
			},
			ok: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bg, ok := DetectBackground(tc.img())
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, bg)
		})
	}
}

func TestPostProcess_RemoveBackground(t *testing.T) {
	assert := assert.New(t)

	near := color.NRGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0x80}
	img := fill(3, 1, func(x, y int) color.NRGBA {
		return []color.NRGBA{white, near, {R: 0xff, A: 0x40}}[x]
	})

	dst := RemoveBackground(img, white, 0)
	assert.Equal(uint8(0), dst.NRGBAAt(0, 0).A)
	assert.Equal(uint8(0xff), dst.NRGBAAt(1, 0).A)
	assert.Equal(uint8(0xff), dst.NRGBAAt(2, 0).A)
	assert.Equal(uint8(0x80), img.NRGBAAt(1, 0).A)

	dst = RemoveBackground(img, white, 10)
	assert.Equal(uint8(0), dst.NRGBAAt(0, 0).A)
	assert.Equal(uint8(0), dst.NRGBAAt(1, 0).A)
	assert.Equal(uint8(0xff), dst.NRGBAAt(2, 0).A)

	// RGB values are kept untouched.
	assert.Equal(near.R, dst.NRGBAAt(1, 0).R)
}

func TestPostProcess_RemoveBackgroundKeepsTransparentPixels(t *testing.T) {
	assert := assert.New(t)

	none := color.NRGBA{R: 0xff}
	img := fill(3, 1, func(x, y int) color.NRGBA {
		return []color.NRGBA{none, white, red}[x]
	})

	dst := RemoveBackground(img, white, 0)
	assert.Equal(none, dst.NRGBAAt(0, 0))
	assert.Equal(uint8(0), dst.NRGBAAt(1, 0).A)
	assert.Equal(red, dst.NRGBAAt(2, 0))

	// A transparent pixel matching the background color stays transparent too.
	dst = RemoveBackground(img, color.NRGBA{R: 0xff, A: 0xff}, 0)
	assert.Equal(none, dst.NRGBAAt(0, 0))
	assert.Equal(uint8(0xff), dst.NRGBAAt(1, 0).A)
	assert.Equal(uint8(0), dst.NRGBAAt(2, 0).A)
}
