package pointnormal

import (
	"math"

	"github.com/vishalbelsare/ebnm"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// sampler returns a function drawing exact posterior samples. Per
// observation and draw, a Bernoulli indicator with the normal
// component's responsibility selects between an exact zero and the
// conjugate normal posterior. A nil src draws from the global
// source.
func sampler(x, s []float64, w, a float64, src rand.Source) ebnm.SampleFunc {
	n := len(x)
	ind := make([]distuv.Bernoulli, n)
	comp := make([]distuv.Normal, n)
	for i := range x {
		mean, vari := condMoments(x[i], s[i], a)
		ind[i] = distuv.Bernoulli{P: wpost(x[i], s[i], w, a), Src: src}
		comp[i] = distuv.Normal{Mu: mean, Sigma: math.Sqrt(vari), Src: src}
	}
	return func(k int) [][]float64 {
		samples := make([][]float64, k)
		for j := range samples {
			row := make([]float64, n)
			for i := range row {
				if ind[i].Rand() == 1 {
					row[i] = comp[i].Rand()
				}
			}
			samples[j] = row
		}
		return samples
	}
}
