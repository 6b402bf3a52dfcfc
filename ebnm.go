// Package ebnm solves the empirical Bayes normal means problem:
// observations x[i] are noisy measurements, with known standard
// errors s[i], of latent means drawn from a common prior. The prior
// is estimated from the data by maximizing the marginal likelihood,
// and the latent means are then summarized by their posteriors.
// Concrete prior families live in subpackages; this package fixes
// the contract they share.
package ebnm

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// Output selects which results a fit computes. Unselected results
// are left absent rather than computed and discarded.
type Output int

const (
	// Posterior requests the posterior moments of the latent means.
	Posterior Output = 1 << iota
	// FittedPrior requests the fitted, or fixed, prior.
	FittedPrior
	// LogLik requests the log likelihood at the fitted prior, on the
	// original scale of the data.
	LogLik
	// Sampler requests a posterior sampler.
	Sampler

	// All requests every output.
	All = Posterior | FittedPrior | LogLik | Sampler
)

// Moments are the posterior mean and second moment of a latent mean.
type Moments struct {
	Mean float64
	M2   float64
}

// SD is the posterior standard deviation.
func (m Moments) SD() float64 {
	v := m.M2 - m.Mean*m.Mean
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// A Prior is a prior distribution over the latent means. Families
// return their own concrete prior types through this interface.
type Prior interface {
	// LogLik is the summed log marginal likelihood of observations
	// x with standard errors s under the prior. s must have the
	// length of x.
	LogLik(x, s []float64) float64
}

// A SampleFunc draws k independent samples of all latent means from
// their posteriors and returns them as a matrix with a row per draw
// and a column per observation.
type SampleFunc func(k int) [][]float64

// A Family fits a prior family to observations.
type Family interface {
	Fit(x, s []float64, opts *Options) (*Result, error)
}

// Options control a fit. The zero value requests no outputs; a nil
// *Options requests all of them.
type Options struct {
	// Out selects the outputs to compute.
	Out Output

	// Prior, when Fix is set, is held fixed instead of fitting one;
	// no optimization is performed. Supplying a prior without
	// setting Fix is an error: a prior is fixed, never a starting
	// point for the optimizer.
	Prior Prior
	Fix   bool

	// Norm is the factor by which observations and standard errors
	// are divided before fitting. Zero selects the default factor,
	// the mean standard error. The choice does not affect results
	// beyond floating-point error.
	Norm float64

	// Optimizer drives the likelihood maximization. Nil selects
	// the default gonum strategy.
	Optimizer Optimizer

	// Src is the source of randomness for the sampler. Nil selects
	// the global source.
	Src rand.Source
}

// Result is the outcome of a fit. Fields not requested through
// Options.Out are nil, and LogLik is NaN.
type Result struct {
	Posterior []Moments
	Prior     Prior
	LogLik    float64
	Sample    SampleFunc
}

// Broadcast validates observations and expands a scalar standard
// error to the length of x. The returned slice is the caller's s
// when the lengths already match.
func Broadcast(x, s []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("no observations")
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
			return nil, fmt.Errorf("x[%d] is %v", i, x[i])
		}
	}
	switch {
	case len(s) == len(x):
	case len(s) == 1:
		s0 := s[0]
		s = make([]float64, len(x))
		for i := range s {
			s[i] = s0
		}
	default:
		return nil, fmt.Errorf("got %d standard errors for %d observations",
			len(s), len(x))
	}
	for i := range s {
		if !(s[i] >= 0) || math.IsInf(s[i], 1) {
			return nil, fmt.Errorf("s[%d] is %v, must be finite and non-negative",
				i, s[i])
		}
	}
	return s, nil
}
