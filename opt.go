package ebnm

import (
	"fmt"
	"math"

	"bitbucket.org/dtolpin/infergo/infer"
	"bitbucket.org/dtolpin/infergo/model"
	"gonum.org/v1/gonum/optimize"
)

// An Optimizer maximizes a model's log likelihood over its
// parameters, starting from x0. x0 is not modified.
type Optimizer interface {
	Maximize(m model.Model, x0 []float64) ([]float64, error)
}

// Gonum maximizes with a gonum gradient-based minimizer over the
// negated log likelihood.
type Gonum struct {
	Method   optimize.Method    // nil selects the gonum default
	Settings *optimize.Settings // nil runs to the gonum defaults
}

func (opt *Gonum) Maximize(m model.Model, x0 []float64) ([]float64, error) {
	Func, Grad := infer.FuncGrad(m)
	p := optimize.Problem{Func: Func, Grad: Grad}

	settings := opt.Settings
	if settings == nil {
		settings = &optimize.Settings{
			MajorIterations:   0,
			GradientThreshold: 0,
			Concurrent:        0,
		}
	}
	result, err := optimize.Minimize(p, x0, settings, opt.Method)
	if result == nil {
		return nil, fmt.Errorf("optimize: %v", err)
	}
	// The optimizer need not `officially' converge, stopping close
	// to the optimum is good enough. But when it cannot get past
	// the first iteration, we report that.
	if err != nil && result.Stats.MajorIterations <= 1 {
		return nil, fmt.Errorf("optimize: %v", err)
	}
	return result.X, nil
}

// Ascent maximizes by gradient ascent with a decaying learning
// rate. It is slower than a quasi-Newton method but has no line
// search to fail on awkward surfaces.
type Ascent struct {
	Rate  float64 // learning rate, 0 means 0.01
	Decay float64 // per-step rate decay, 0 means none
	Steps int     // number of steps, 0 means 1000
}

func (opt *Ascent) Maximize(m model.Model, x0 []float64) ([]float64, error) {
	rate := opt.Rate
	if rate == 0 {
		rate = 0.01
	}
	decay := opt.Decay
	if decay == 0 {
		decay = 1
	}
	steps := opt.Steps
	if steps == 0 {
		steps = 1000
	}

	x := make([]float64, len(x0))
	copy(x, x0)
	for iter := 0; iter != steps; iter++ {
		ll := m.Observe(x)
		if math.IsNaN(ll) {
			return nil, fmt.Errorf("ascent: log likelihood is NaN at %v", x)
		}
		grad := model.Gradient(m)
		for j := range x {
			x[j] += rate * grad[j]
		}
		rate *= decay
	}
	return x, nil
}
