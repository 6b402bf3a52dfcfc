// Package normal fits the normal prior family: a zero-mean normal
// with precision A and no point mass. It is the boundary case of
// the point-normal family with all weight on the normal component,
// with a single free parameter.
package normal

import (
	. "bitbucket.org/dtolpin/infergo/dist"
	"fmt"
	"math"
	"sort"

	"github.com/vishalbelsare/ebnm"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is the normal prior with precision A.
type Prior struct {
	A float64
}

func (p Prior) validate() error {
	if !(p.A > 0) || math.IsInf(p.A, 1) {
		return fmt.Errorf("normal: precision is %v, must be positive and finite", p.A)
	}
	return nil
}

// LogLik is the summed log marginal likelihood of the observations
// under the prior. The marginal of each observation is a zero-mean
// normal with variance s² + 1/A.
func (p Prior) LogLik(x, s []float64) float64 {
	ll := 0.
	for i := range x {
		ll += logp(x[i], s[i], p.A)
	}
	return ll
}

func logp(x, s, a float64) float64 {
	v := s*s + 1/a
	if v == 0 {
		if x == 0 {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return Normal.Logp(0, math.Sqrt(v), x)
}

// mle is the model the fitter maximizes, over the log of the
// precision.
type mle struct {
	x, s []float64
	grad []float64
}

func (m *mle) Observe(p []float64) float64 {
	a := math.Exp(p[0]) // log precision

	ll, gb := 0., 0.
	for i := range m.x {
		x, s := m.x[i], m.s[i]
		ll += logp(x, s, a)
		v := s*s + 1/a
		if v > 0 && !math.IsInf(v, 1) {
			gb += (v - x*x) / (2 * v * v * a)
		}
	}
	m.grad = []float64{gb}
	return ll
}

func (m *mle) Gradient() []float64 {
	return m.grad
}

// initGuess starts the precision at the inverse of the empirical
// second moment in excess of the typical noise variance.
func initGuess(x, s []float64) []float64 {
	xx := make([]float64, len(x))
	ss := make([]float64, len(s))
	for i := range x {
		xx[i] = x[i] * x[i]
		ss[i] = s[i] * s[i]
	}
	m2 := stat.Mean(xx, nil)
	sort.Float64s(ss)
	med := stat.Quantile(0.5, stat.Empirical, ss, nil)

	v0 := m2 - med
	if !(v0 > 0) {
		v0 = med
	}
	if !(v0 > 0) || math.IsInf(v0, 1) {
		v0 = 1
	}
	return []float64{-math.Log(v0)}
}

func fit(x, s []float64, opt ebnm.Optimizer) (Prior, error) {
	if opt == nil {
		opt = &ebnm.Gonum{}
	}
	m := &mle{x: x, s: s}
	p, err := opt.Maximize(m, initGuess(x, s))
	if err != nil {
		return Prior{}, fmt.Errorf("normal: %v", err)
	}
	a := math.Exp(p[0])
	ll := m.Observe(p)
	if math.IsNaN(ll) || math.IsInf(ll, 0) || !(a > 0) || math.IsInf(a, 1) {
		return Prior{}, fmt.Errorf("normal: optimization diverged: ll=%v, a=%v", ll, a)
	}
	return Prior{A: a}, nil
}

// condMoments is the conjugate posterior mean and variance of a
// latent mean.
func condMoments(x, s, a float64) (mean, vari float64) {
	if s == 0 {
		return x, 0
	}
	d := 1 + a*s*s
	return x / d, s * s / d
}

func posterior(x, s []float64, a float64) []ebnm.Moments {
	ms := make([]ebnm.Moments, len(x))
	for i := range x {
		mean, vari := condMoments(x[i], s[i], a)
		ms[i] = ebnm.Moments{Mean: mean, M2: vari + mean*mean}
	}
	return ms
}

func sampler(x, s []float64, a float64, src rand.Source) ebnm.SampleFunc {
	n := len(x)
	comp := make([]distuv.Normal, n)
	for i := range x {
		mean, vari := condMoments(x[i], s[i], a)
		comp[i] = distuv.Normal{Mu: mean, Sigma: math.Sqrt(vari), Src: src}
	}
	return func(k int) [][]float64 {
		samples := make([][]float64, k)
		for j := range samples {
			row := make([]float64, n)
			for i := range row {
				row[i] = comp[i].Rand()
			}
			samples[j] = row
		}
		return samples
	}
}

// Family fits the normal family. It implements ebnm.Family.
type Family struct{}

func (Family) Fit(x, s []float64, opts *ebnm.Options) (*ebnm.Result, error) {
	return Fit(x, s, opts)
}

// Fit estimates the prior by maximum marginal likelihood, or takes
// the fixed prior from the options, and computes the outputs the
// options request. A nil opts requests everything.
func Fit(x, s []float64, opts *ebnm.Options) (*ebnm.Result, error) {
	if opts == nil {
		opts = &ebnm.Options{Out: ebnm.All}
	}
	s, err := ebnm.Broadcast(x, s)
	if err != nil {
		return nil, fmt.Errorf("normal: %v", err)
	}
	switch {
	case opts.Prior != nil && !opts.Fix:
		return nil, fmt.Errorf(
			"normal: a supplied prior must be fixed, initial guesses are not supported")
	case opts.Fix && opts.Prior == nil:
		return nil, fmt.Errorf("normal: fixed fit requested without a prior")
	}

	norm := ebnm.Scale(opts.Norm)
	if norm == 0 {
		norm = ebnm.DefaultNorm(s)
	}
	if !(norm > 0) || math.IsInf(float64(norm), 1) {
		return nil, fmt.Errorf(
			"normal: normalization factor is %v, must be positive and finite",
			float64(norm))
	}

	xn, sn := norm.Down(x), norm.Down(s)

	var prior Prior
	if opts.Fix {
		p, ok := opts.Prior.(Prior)
		if !ok {
			return nil, fmt.Errorf("normal: fixed prior has type %T", opts.Prior)
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		prior = Prior{A: norm.DownPrecision(p.A)}
	} else {
		prior, err = fit(xn, sn, opts.Optimizer)
		if err != nil {
			return nil, err
		}
	}

	res := &ebnm.Result{LogLik: math.NaN()}
	if opts.Out&ebnm.Posterior != 0 {
		res.Posterior = norm.UpMoments(posterior(xn, sn, prior.A))
	}
	if opts.Out&ebnm.FittedPrior != 0 {
		if opts.Fix {
			res.Prior = opts.Prior
		} else {
			res.Prior = Prior{A: norm.UpPrecision(prior.A)}
		}
	}
	if opts.Out&ebnm.LogLik != 0 {
		res.LogLik = norm.UpLogLik(prior.LogLik(xn, sn), len(x))
	}
	if opts.Out&ebnm.Sampler != 0 {
		res.Sample = norm.UpSample(sampler(xn, sn, prior.A, opts.Src))
	}
	return res, nil
}
