package ebnm

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scale is a normalization factor applied to observations before
// fitting. Fitting x/c, s/c and mapping the results back is
// mathematically a no-op; it keeps the optimizer well conditioned
// when the raw data scale is extreme.
type Scale float64

// DefaultNorm is the mean standard error, or 1 when the mean is not
// a usable factor.
func DefaultNorm(s []float64) Scale {
	c := stat.Mean(s, nil)
	if !(c > 0) || math.IsInf(c, 1) {
		return 1
	}
	return Scale(c)
}

// Down maps values onto the normalized scale.
func (c Scale) Down(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] / float64(c)
	}
	return out
}

// DownPrecision maps a precision onto the normalized scale.
func (c Scale) DownPrecision(a float64) float64 {
	return a * float64(c) * float64(c)
}

// UpPrecision maps a fitted precision back to the original scale.
func (c Scale) UpPrecision(a float64) float64 {
	return a / (float64(c) * float64(c))
}

// UpMoments maps posterior moments back to the original scale, in
// place, and returns the slice.
func (c Scale) UpMoments(ms []Moments) []Moments {
	for i := range ms {
		ms[i].Mean *= float64(c)
		ms[i].M2 *= float64(c) * float64(c)
	}
	return ms
}

// UpLogLik maps the summed log likelihood of n normalized
// observations back to the original scale. The correction is the
// log Jacobian of x -> x/c.
func (c Scale) UpLogLik(ll float64, n int) float64 {
	return ll - float64(n)*math.Log(float64(c))
}

// UpSample maps posterior draws back to the original scale.
func (c Scale) UpSample(f SampleFunc) SampleFunc {
	return func(k int) [][]float64 {
		samples := f(k)
		for _, row := range samples {
			for i := range row {
				row[i] *= float64(c)
			}
		}
		return samples
	}
}
