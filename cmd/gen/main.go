package main

import (
	"bitbucket.org/dtolpin/gogp/gp"
	"bitbucket.org/dtolpin/gogp/kernel"
	adkernel "bitbucket.org/dtolpin/gogp/kernel/ad"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"
)

var (
	N      = 500
	PI0    = 0.8
	A      = 1.
	SE     = 1.
	SEMAX  = 0.
	SMOOTH = false
	LENGTH = 10.
	SEED   = int64(0)
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Generate test data for the empirical Bayes model. Invocation:
	%s  [OPTIONS] | head -100
Each record is x,s,theta: the observation, its standard error, and
the latent mean. Latent means are drawn from the point-normal
prior, or, with -smooth, from a Gaussian process over the record
index (ignoring -pi0).
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.IntVar(&N, "n", N, "number of observations")
	flag.Float64Var(&PI0, "pi0", PI0, "point mass weight")
	flag.Float64Var(&A, "a", A, "normal component precision")
	flag.Float64Var(&SE, "se", SE, "standard error")
	flag.Float64Var(&SEMAX, "semax", SEMAX,
		"upper standard error for heteroskedastic errors, 0 means homoskedastic")
	flag.BoolVar(&SMOOTH, "smooth", SMOOTH, "smooth latent means")
	flag.Float64Var(&LENGTH, "l", LENGTH, "length scale of smooth latent means")
	flag.Int64Var(&SEED, "seed", SEED, "random seed, 0 means time-based")
}

// The latent mean similarity kernel, with fixed hyperparameters.
type thetakernel struct{}

var thetaKernel thetakernel

func (thetakernel) Observe(x []float64) float64 {
	const (
		xa = iota
		xb
	)

	return 1 / A * kernel.Matern52.Cov(LENGTH, x[xa], x[xb])
}

func (thetakernel) Gradient() []float64 {
	return []float64{1, 1}
}

func (thetakernel) NTheta() int {
	return 0
}

// smooth draws latent means one by one from the process posterior
// given the means drawn so far.
func smooth(n int) []float64 {
	g := &gp.GP{
		NDim:  1,
		Simil: thetaKernel,
		Noise: adkernel.ConstantNoise(1e-6),
	}
	thetas := make([]float64, n)
	X := make([][]float64, 0, n)
	Y := make([]float64, 0, n)
	for i := 0; i != n; i++ {
		Z := [][]float64{{float64(i)}}
		mu, sigma, err := g.Produce(Z)
		if err != nil {
			panic(fmt.Errorf("produce: %v", err))
		}
		thetas[i] = mu[0] + sigma[0]*rand.NormFloat64()
		X = append(X, Z[0])
		Y = append(Y, thetas[i])
		if err := g.Absorb(X, Y); err != nil {
			panic(fmt.Errorf("absorb: %v", err))
		}
	}
	return thetas
}

// pointNormal draws independent latent means from the prior.
func pointNormal(n int) []float64 {
	thetas := make([]float64, n)
	for i := range thetas {
		if rand.Float64() >= PI0 {
			thetas[i] = rand.NormFloat64() / math.Sqrt(A)
		}
	}
	return thetas
}

func main() {
	flag.Parse()

	seed := SEED
	if seed == 0 {
		seed = time.Now().UTC().UnixNano()
	}
	rand.Seed(seed)

	var thetas []float64
	if SMOOTH {
		thetas = smooth(N)
	} else {
		thetas = pointNormal(N)
	}

	for _, theta := range thetas {
		s := SE
		if SEMAX > SE {
			s = SE + (SEMAX-SE)*rand.Float64()
		}
		x := theta + s*rand.NormFloat64()
		fmt.Printf("%g,%g,%g\n", x, s, theta)
	}
}
