package quant

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
)

// Metric selects the color space used to measure the distance between two colors.
type Metric int

const (
	// RGB measures the squared Euclidean distance over the 8-bit RGB channels.
	RGB Metric = iota
	// Lab measures the squared Euclidean distance in the CIE L*a*b* space,
	// which follows the perceived color difference more closely.
	Lab
)

// String implements the fmt.Stringer interface.
func (m Metric) String() string {
	switch m {
	case Lab:
		return "lab"
	default:
		return "rgb"
	}
}

// ParseMetric converts a metric name into a Metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rgb":
		return RGB, nil
	case "lab":
		return Lab, nil
	}
	return RGB, fmt.Errorf("unsupported color metric: %q", s)
}

// Distance returns the squared distance between the RGB components of a and b.
// The alpha channel never takes part in the comparison.
func (m Metric) Distance(a, b color.NRGBA) float64 {
	return m.coords(a).Distance(m.coords(b))
}

// coords maps an 8-bit color into the metric space.
func (m Metric) coords(c color.NRGBA) clusters.Coordinates {
	return m.coordsOf(float64(c.R), float64(c.G), float64(c.B))
}

// coordsOf maps (possibly fractional) 8-bit channel values into the metric space.
func (m Metric) coordsOf(r, g, b float64) clusters.Coordinates {
	if m == Lab {
		l, la, lb := colorful.Color{R: r / 255, G: g / 255, B: b / 255}.Lab()
		return clusters.Coordinates{l, la, lb}
	}
	return clusters.Coordinates{r, g, b}
}
