package pixelate

import "errors"

var (
	// ErrInvalidConfiguration is returned when a configuration value is missing or out of range.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnsupportedImageMode is returned for images without a usable pixel layout.
	ErrUnsupportedImageMode = errors.New("unsupported image mode")
	// ErrDecodeFailure is returned when the source image could not be decoded.
	ErrDecodeFailure = errors.New("could not decode the image")
)
