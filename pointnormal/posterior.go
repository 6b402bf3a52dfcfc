package pointnormal

import (
	"math"

	"github.com/vishalbelsare/ebnm"
)

// wpost is the posterior probability that the latent mean comes
// from the normal component. The responsibility ratio is formed
// from the difference of the component log densities, so it stays
// stable when either density under- or overflows. An exactly
// observed zero always resolves to the point mass, an exact nonzero
// observation always excludes it.
func wpost(x, s, w, a float64) float64 {
	switch {
	case w <= 0:
		return 0
	case w >= 1:
		return 1
	}
	lf := nullLogp(x, s)
	switch {
	case math.IsInf(lf, 1):
		return 0
	case math.IsInf(lf, -1):
		return 1
	}
	lg := normalLogp(x, s, a)
	return w / (w + (1-w)*math.Exp(lf-lg))
}

// condMoments is the mean and variance of the latent mean given
// that it comes from the normal component, the conjugate posterior
// of a normal mean.
func condMoments(x, s, a float64) (mean, vari float64) {
	if s == 0 {
		return x, 0
	}
	d := 1 + a*s*s
	return x / d, s * s / d
}

// posterior returns the posterior moments of the latent means. The
// point mass contributes nothing to either moment; the normal
// component contributes with its responsibility.
func posterior(x, s []float64, w, a float64) []ebnm.Moments {
	ms := make([]ebnm.Moments, len(x))
	for i := range x {
		wp := wpost(x[i], s[i], w, a)
		mean, vari := condMoments(x[i], s[i], a)
		ms[i] = ebnm.Moments{
			Mean: wp * mean,
			M2:   wp * (vari + mean*mean),
		}
	}
	return ms
}
