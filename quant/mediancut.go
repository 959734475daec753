package quant

import (
	"image/color"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// bucket is a group of distinct colors produced by the median cut.
type bucket []colorCount

// channel returns the values of one RGB channel together with their weights.
func (b bucket) channel(ch int) (values, weights []float64) {
	values = make([]float64, len(b))
	weights = make([]float64, len(b))
	for i, cc := range b {
		values[i] = float64(channelOf(cc.c, ch))
		weights[i] = float64(cc.n)
	}
	return values, weights
}

// spread returns the channel holding the largest population weighted squared
// error, and that error. A bucket with a single color has no spread.
func (b bucket) spread() (int, float64) {
	if len(b) < 2 {
		return 0, 0
	}
	bestCh, bestErr := 0, -1.0
	for ch := 0; ch < 3; ch++ {
		values, weights := b.channel(ch)
		_, variance := stat.MeanVariance(values, weights)
		sse := variance * (floatSum(weights) - 1)
		if sse > bestErr {
			bestCh, bestErr = ch, sse
		}
	}
	return bestCh, bestErr
}

// split cuts the bucket along ch at the weighted median. Both halves are non empty.
func (b bucket) split(ch int) (bucket, bucket) {
	sorted := slices.Clone(b)
	slices.SortStableFunc(sorted, func(x, y colorCount) int {
		vx, vy := channelOf(x.c, ch), channelOf(y.c, ch)
		if vx != vy {
			return int(vx) - int(vy)
		}
		kx, ky := packRGB(x.c), packRGB(y.c)
		switch {
		case kx < ky:
			return -1
		case kx > ky:
			return 1
		}
		return 0
	})

	total := 0
	for _, cc := range sorted {
		total += cc.n
	}
	cut, acc := 1, 0
	for i, cc := range sorted {
		acc += cc.n
		if 2*acc >= total {
			cut = i + 1
			break
		}
	}
	if cut >= len(sorted) {
		cut = len(sorted) - 1
	}
	return sorted[:cut], sorted[cut:]
}

// mean returns the population weighted mean color of the bucket.
func (b bucket) mean() color.NRGBA {
	var rgb [3]uint8
	for ch := 0; ch < 3; ch++ {
		values, weights := b.channel(ch)
		rgb[ch] = uint8(math.Round(stat.Mean(values, weights)))
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
}

func (b bucket) weight() int {
	n := 0
	for _, cc := range b {
		n += cc.n
	}
	return n
}

// medianCut partitions the histogram into at most k buckets. At every step the
// bucket with the largest spread is split; ties go to the oldest bucket.
func medianCut(hist []colorCount, k int) []bucket {
	if len(hist) == 0 || k <= 0 {
		return nil
	}
	buckets := make([]bucket, 1, k)
	buckets[0] = bucket(hist)

	for len(buckets) < k {
		idx, ch, best := -1, 0, 0.0
		for i, b := range buckets {
			c, sse := b.spread()
			if len(b) > 1 && (idx < 0 || sse > best) {
				idx, ch, best = i, c, sse
			}
		}
		if idx < 0 {
			break
		}
		left, right := buckets[idx].split(ch)
		buckets[idx] = left
		buckets = append(buckets, right)
	}
	return buckets
}

func channelOf(c color.NRGBA, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

func floatSum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
