package pointnormal

import (
	"fmt"
	"math"
	"sort"

	"github.com/vishalbelsare/ebnm"
	"gonum.org/v1/gonum/stat"
)

// mle is the model whose log likelihood the fitter maximizes. The
// parameter vector holds the logit of the normal component weight
// and the log of its precision, so the optimizer runs
// unconstrained. Observe accumulates the analytic gradient along
// with the log likelihood, branch for branch with logLik1.
type mle struct {
	x, s []float64
	grad []float64
}

func (m *mle) Observe(p []float64) float64 {
	const (
		alpha = iota // logit of the normal component weight
		beta         // log of the normal component precision
	)

	w := sigmoid(p[alpha])
	a := math.Exp(p[beta])

	ll, ga, gb := 0., 0., 0.
	for i := range m.x {
		x, s := m.x[i], m.s[i]
		switch {
		case w <= 0:
			ll += nullLogp(x, s)
		case w >= 1:
			ll += normalLogp(x, s, a)
			v := s*s + 1/a
			if v > 0 && !math.IsInf(v, 1) {
				gb += (v - x*x) / (2 * v * v * a)
			}
		default:
			lf := nullLogp(x, s)
			if math.IsInf(lf, 1) {
				ll += math.Log(1 - w)
				ga -= w
				continue
			}
			lg := normalLogp(x, s, a)
			hi := math.Max(lf, lg)
			if math.IsInf(hi, -1) {
				ll += hi
				continue
			}
			ef := math.Exp(lf - hi)
			eg := math.Exp(lg - hi)
			sum := (1-w)*ef + w*eg
			ll += hi + math.Log(sum)
			ga += w * (1 - w) * (eg - ef) / sum
			// The precision gradient vanishes with the normal
			// component's responsibility; skipping it then also
			// avoids 0 times an infinite quotient.
			if r := w * eg / sum; r > 0 {
				v := s*s + 1/a
				gb += r * (v - x*x) / (2 * v * v * a)
			}
		}
	}
	m.grad = []float64{ga, gb}
	return ll
}

func (m *mle) Gradient() []float64 {
	return m.grad
}

// sigmoid maps the real line onto the unit interval, saturating to
// exactly 0 and 1 in the tails.
func sigmoid(t float64) float64 {
	return 1 / (1 + math.Exp(-t))
}

func logit(w float64) float64 {
	return math.Log(w / (1 - w))
}

// initGuess chooses the optimizer's starting point. The weight
// starts at the fraction of the empirical second moment in excess
// of the typical noise variance, and the precision at the inverse
// of that excess.
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

	exc := m2 - med
	w0 := 0.5
	if m2 > 0 && !math.IsInf(m2, 1) {
		w0 = math.Min(math.Max(exc/m2, 0.1), 0.9)
	}
	v0 := exc
	if !(v0 > 0) {
		v0 = med
	}
	if !(v0 > 0) || math.IsInf(v0, 1) {
		v0 = 1
	}
	return []float64{logit(w0), -math.Log(v0)}
}

// fit maximizes the marginal likelihood and returns the fitted
// prior on the scale of the supplied data.
func fit(x, s []float64, opt ebnm.Optimizer) (Prior, error) {
	const (
		alpha = iota
		beta
	)

	if opt == nil {
		opt = &ebnm.Gonum{}
	}
	m := &mle{x: x, s: s}
	p, err := opt.Maximize(m, initGuess(x, s))
	if err != nil {
		return Prior{}, fmt.Errorf("point-normal: %v", err)
	}
	w := sigmoid(p[alpha])
	a := math.Exp(p[beta])
	ll := m.Observe(p)
	if math.IsNaN(ll) || math.IsInf(ll, 0) || !(a > 0) || math.IsInf(a, 1) || math.IsNaN(w) {
		return Prior{}, fmt.Errorf(
			"point-normal: optimization diverged: ll=%v, w=%v, a=%v", ll, w, a)
	}
	return Prior{Pi0: 1 - w, A: a}, nil
}

// Family fits the point-normal family. It implements ebnm.Family.
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
		return nil, fmt.Errorf("point-normal: %v", err)
	}
	switch {
	case opts.Prior != nil && !opts.Fix:
		return nil, fmt.Errorf(
			"point-normal: a supplied prior must be fixed, initial guesses are not supported")
	case opts.Fix && opts.Prior == nil:
		return nil, fmt.Errorf("point-normal: fixed fit requested without a prior")
	}

	norm := ebnm.Scale(opts.Norm)
	if norm == 0 {
		norm = ebnm.DefaultNorm(s)
	}
	if !(norm > 0) || math.IsInf(float64(norm), 1) {
		return nil, fmt.Errorf(
			"point-normal: normalization factor is %v, must be positive and finite",
			float64(norm))
	}

	xn, sn := norm.Down(x), norm.Down(s)

	var prior Prior
	if opts.Fix {
		p, ok := opts.Prior.(Prior)
		if !ok {
			return nil, fmt.Errorf("point-normal: fixed prior has type %T", opts.Prior)
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		prior = Prior{Pi0: p.Pi0, A: norm.DownPrecision(p.A)}
	} else {
		prior, err = fit(xn, sn, opts.Optimizer)
		if err != nil {
			return nil, err
		}
	}

	w := 1 - prior.Pi0
	res := &ebnm.Result{LogLik: math.NaN()}
	if opts.Out&ebnm.Posterior != 0 {
		res.Posterior = norm.UpMoments(posterior(xn, sn, w, prior.A))
	}
	if opts.Out&ebnm.FittedPrior != 0 {
		if opts.Fix {
			res.Prior = opts.Prior
		} else {
			res.Prior = Prior{Pi0: prior.Pi0, A: norm.UpPrecision(prior.A)}
		}
	}
	if opts.Out&ebnm.LogLik != 0 {
		res.LogLik = norm.UpLogLik(prior.LogLik(xn, sn), len(x))
	}
	if opts.Out&ebnm.Sampler != 0 {
		res.Sample = norm.UpSample(sampler(xn, sn, w, prior.A, opts.Src))
	}
	return res, nil
}
