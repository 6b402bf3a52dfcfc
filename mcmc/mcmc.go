// Package mcmc draws approximate posterior samples of latent means
// for priors without a conjugate posterior. The prior enters as a
// log density with its derivative; each observation's posterior is
// sampled independently with Hamiltonian Monte Carlo. Families with
// closed-form posteriors use their exact samplers instead, behind
// the same ebnm.SampleFunc signature.
package mcmc

import (
	. "bitbucket.org/dtolpin/infergo/dist"
	"bitbucket.org/dtolpin/infergo/infer"
	"math"

	"github.com/vishalbelsare/ebnm"
)

// A LogDensity is a prior log density over a latent mean, with its
// derivative.
type LogDensity func(theta float64) (lp, dlp float64)

// NormalPrior is the zero-mean normal log density with precision a.
func NormalPrior(a float64) LogDensity {
	sigma := 1 / math.Sqrt(a)
	return func(theta float64) (lp, dlp float64) {
		return Normal.Logp(0, sigma, theta), -a * theta
	}
}

// target is the unnormalized posterior of a single latent mean.
type target struct {
	x, s  float64
	prior LogDensity
	grad  []float64
}

func (t *target) Observe(q []float64) float64 {
	theta := q[0]
	lp, dlp := t.prior(theta)
	ll := lp + Normal.Logp(theta, t.s, t.x)
	t.grad = []float64{dlp + (t.x-theta)/(t.s*t.s)}
	return ll
}

func (t *target) Gradient() []float64 {
	return t.grad
}

// Sampler draws posterior samples with Hamiltonian Monte Carlo.
// The zero value takes modest defaults.
type Sampler struct {
	Prior LogDensity
	Eps   float64 // leapfrog step size, 0 means 0.1
	L     int     // leapfrog steps, 0 means 10
	Burn  int     // discarded initial samples, 0 means 100
}

// Sample returns a sampling function over the observations. Each
// chain starts at the observation itself. An exactly observed mean
// (zero standard error) is returned as is, without a chain.
func (smp *Sampler) Sample(x, s []float64) ebnm.SampleFunc {
	eps := smp.Eps
	if eps == 0 {
		eps = 0.1
	}
	l := smp.L
	if l == 0 {
		l = 10
	}
	burn := smp.Burn
	if burn == 0 {
		burn = 100
	}

	return func(k int) [][]float64 {
		samples := make([][]float64, k)
		for j := range samples {
			samples[j] = make([]float64, len(x))
		}
		for i := range x {
			if s[i] == 0 {
				for j := range samples {
					samples[j][i] = x[i]
				}
				continue
			}
			t := &target{x: x[i], s: s[i], prior: smp.Prior}
			hmc := &infer.HMC{
				L:   l,
				Eps: eps,
			}
			ch := make(chan []float64)
			hmc.Sample(t, []float64{x[i]}, ch)
			for j := 0; j != burn; j++ {
				<-ch
			}
			for j := 0; j != k; j++ {
				samples[j][i] = (<-ch)[0]
			}
			hmc.Stop()
		}
		return samples
	}
}
