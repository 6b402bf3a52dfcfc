// Package pointnormal fits the point-normal prior family: a point
// mass at zero mixed with a zero-mean normal. The family admits a
// closed-form posterior, so both the posterior moments and the
// sampler are exact.
package pointnormal

import (
	. "bitbucket.org/dtolpin/infergo/dist"
	"fmt"
	"math"
)

// Prior is the point-normal prior. Pi0 is the weight of the point
// mass at zero and A is the precision of the normal component.
type Prior struct {
	Pi0 float64
	A   float64
}

func (p Prior) validate() error {
	if !(p.Pi0 >= 0 && p.Pi0 <= 1) {
		return fmt.Errorf("point-normal: pi0 is %v, must be in [0, 1]", p.Pi0)
	}
	if !(p.A > 0) || math.IsInf(p.A, 1) {
		return fmt.Errorf("point-normal: precision is %v, must be positive and finite", p.A)
	}
	return nil
}

// LogLik is the summed log marginal likelihood of the observations
// under the prior.
func (p Prior) LogLik(x, s []float64) float64 {
	ll := 0.
	w := 1 - p.Pi0
	for i := range x {
		ll += logLik1(x[i], s[i], w, p.A)
	}
	return ll
}

// LogLiks returns the per-observation log marginal likelihoods.
func (p Prior) LogLiks(x, s []float64) []float64 {
	lls := make([]float64, len(x))
	w := 1 - p.Pi0
	for i := range x {
		lls[i] = logLik1(x[i], s[i], w, p.A)
	}
	return lls
}

// nullLogp is the log density of the observation under the point
// mass component. A zero standard error makes the component a point
// mass at zero itself.
func nullLogp(x, s float64) float64 {
	if s == 0 {
		if x == 0 {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return Normal.Logp(0, s, x)
}

// normalLogp is the log marginal density of the observation under
// the normal component, whose marginal variance is s² + 1/a.
func normalLogp(x, s, a float64) float64 {
	v := s*s + 1/a
	if v == 0 {
		if x == 0 {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return Normal.Logp(0, math.Sqrt(v), x)
}

// logLik1 is the mixture log density of a single observation, with
// w the weight of the normal component. The two-component sum is
// computed with the larger log density factored out, so the result
// stays accurate when either component under- or overflows. The
// degenerate weights and the infinite null density of an exactly
// observed zero are exact branches, not numerical limits.
func logLik1(x, s, w, a float64) float64 {
	switch {
	case w <= 0:
		return nullLogp(x, s)
	case w >= 1:
		return normalLogp(x, s, a)
	}
	lf := nullLogp(x, s)
	lg := normalLogp(x, s, a)
	if math.IsInf(lf, 1) {
		// A point mass at an exactly observed zero dominates any
		// density the normal component contributes.
		return math.Log(1 - w)
	}
	m := math.Max(lf, lg)
	if math.IsInf(m, -1) {
		return m
	}
	return m + math.Log((1-w)*math.Exp(lf-m)+w*math.Exp(lg-m))
}
