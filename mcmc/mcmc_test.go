package mcmc

import (
	"math"
	"math/rand"
	"testing"
)

const (
	dx  = 1e-8
	eps = 1e-4
)

func TestNormalPrior(t *testing.T) {
	for i, c := range []struct{ a, theta float64 }{
		{1, 0},
		{1, 1.5},
		{0.25, -2},
		{4, 0.3},
	} {
		prior := NormalPrior(c.a)
		lp, dlp := prior(c.theta)
		lp1, _ := prior(c.theta + dx)
		if dldx := (lp1 - lp) / dx; math.Abs(dlp-dldx) > eps {
			t.Errorf("%d: dlp mismatch: got %.8f, want %.4f", i, dldx, dlp)
		}
		sigma := 1 / math.Sqrt(c.a)
		want := -0.5*math.Log(2*math.Pi*sigma*sigma) -
			c.theta*c.theta/(2*sigma*sigma)
		if math.Abs(lp-want) > 1e-12 {
			t.Errorf("%d: lp = %v, want %v", i, lp, want)
		}
	}
}

func TestTargetGradient(t *testing.T) {
	for i, c := range []struct{ x, s, a, theta float64 }{
		{2, 1, 1, 0.5},
		{-1, 0.5, 2, -0.2},
		{0, 2, 0.25, 1},
	} {
		m := &target{x: c.x, s: c.s, prior: NormalPrior(c.a)}
		ll0 := m.Observe([]float64{c.theta})
		grad := m.Gradient()
		ll := m.Observe([]float64{c.theta + dx})
		if dldx := (ll - ll0) / dx; math.Abs(grad[0]-dldx) > eps {
			t.Errorf("%d: dl/dtheta mismatch: got %.8f, want %.4f",
				i, dldx, grad[0])
		}
	}
}

// With x = 2, s = 1 and a unit normal prior the posterior is
// N(1, 1/2).
func TestSampleMoments(t *testing.T) {
	rand.Seed(1)
	smp := &Sampler{Prior: NormalPrior(1), Eps: 0.25, Burn: 500}
	draw := smp.Sample([]float64{2}, []float64{1})
	const k = 4000
	samples := draw(k)
	mean := 0.
	for _, row := range samples {
		mean += row[0] / k
	}
	vari := 0.
	for _, row := range samples {
		d := row[0] - mean
		vari += d * d / k
	}
	if math.Abs(mean-1) > 0.2 {
		t.Errorf("sample mean %v, want 1", mean)
	}
	if math.Abs(vari-0.5) > 0.2 {
		t.Errorf("sample variance %v, want 0.5", vari)
	}
}

// Exactly observed means pass through without a chain; the others
// keep their posterior ordering.
func TestSampleColumns(t *testing.T) {
	rand.Seed(1)
	smp := &Sampler{Prior: NormalPrior(1), Eps: 0.25, Burn: 200}
	x := []float64{-1, 0, 2, 3.5}
	s := []float64{1, 1, 1, 0}
	const k = 2000
	samples := smp.Sample(x, s)(k)
	if len(samples) != k {
		t.Fatalf("%d rows, want %d", len(samples), k)
	}
	mean := make([]float64, len(x))
	for _, row := range samples {
		if len(row) != len(x) {
			t.Fatalf("%d columns, want %d", len(row), len(x))
		}
		if row[3] != 3.5 {
			t.Fatalf("exactly observed column sampled as %v", row[3])
		}
		for i, y := range row {
			mean[i] += y / k
		}
	}
	for i, want := range []float64{-0.5, 0, 1} {
		if math.Abs(mean[i]-want) > 0.2 {
			t.Errorf("column %d mean %v, want %v", i, mean[i], want)
		}
	}
	if !(mean[0] < mean[1] && mean[1] < mean[2]) {
		t.Errorf("column means %v out of order", mean[:3])
	}
}
