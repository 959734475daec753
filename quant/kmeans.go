package quant

import (
	"image/color"
	"math"

	"github.com/muesli/clusters"
	"gonum.org/v1/gonum/stat"
)

// sample is a distinct color placed in the metric space.
type sample struct {
	point clusters.Coordinates
	colorCount
}

// Coordinates implements the clusters.Observation interface.
func (s sample) Coordinates() clusters.Coordinates { return s.point }

// Distance implements the clusters.Observation interface.
func (s sample) Distance(p clusters.Coordinates) float64 { return s.point.Distance(p) }

// entry is a palette candidate together with the population it represents.
type entry struct {
	c      color.NRGBA
	weight int
}

// refine runs at most iterations passes of weighted Lloyd's k-means over the
// distinct colors, seeded with the median cut centers. Every step is
// deterministic: samples are visited in histogram order, the nearest center is
// the lowest indexed one on ties and an empty cluster keeps its previous center.
func refine(hist []colorCount, seeds []entry, m Metric, iterations int) []entry {
	if iterations <= 0 || len(seeds) == 0 {
		return seeds
	}

	samples := make(clusters.Observations, len(hist))
	for i, cc := range hist {
		samples[i] = sample{point: m.coords(cc.c), colorCount: cc}
	}

	rgb := make([][3]float64, len(seeds))
	cc := make(clusters.Clusters, len(seeds))
	for i, s := range seeds {
		rgb[i] = [3]float64{float64(s.c.R), float64(s.c.G), float64(s.c.B)}
		cc[i] = clusters.Cluster{Center: m.coords(s.c)}
	}

	assign := make([]int, len(samples))
	for i := range assign {
		assign[i] = -1
	}

	for it := 0; it < iterations; it++ {
		cc.Reset()
		changed := false
		for i, o := range samples {
			ci := cc.Nearest(o)
			if assign[i] != ci {
				assign[i] = ci
				changed = true
			}
			cc[ci].Append(o)
		}
		if !changed {
			break
		}

		for ci := range cc {
			if len(cc[ci].Observations) == 0 {
				continue
			}
			weights := make([]float64, len(cc[ci].Observations))
			for i, o := range cc[ci].Observations {
				weights[i] = float64(o.(sample).n)
			}
			for ch := 0; ch < 3; ch++ {
				values := make([]float64, len(cc[ci].Observations))
				for i, o := range cc[ci].Observations {
					values[i] = float64(channelOf(o.(sample).c, ch))
				}
				rgb[ci][ch] = stat.Mean(values, weights)
			}
			cc[ci].Center = m.coordsOf(rgb[ci][0], rgb[ci][1], rgb[ci][2])
		}
	}

	weights := make([]int, len(cc))
	for i, ci := range assign {
		if ci >= 0 {
			weights[ci] += hist[i].n
		}
	}

	out := make([]entry, len(cc))
	for i := range cc {
		out[i] = entry{
			c: color.NRGBA{
				R: uint8(math.Round(rgb[i][0])),
				G: uint8(math.Round(rgb[i][1])),
				B: uint8(math.Round(rgb[i][2])),
				A: 0xff,
			},
			weight: weights[i],
		}
	}
	return out
}
