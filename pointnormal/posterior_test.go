package pointnormal

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestWpostDegenerate(t *testing.T) {
	for i, c := range []struct {
		x, s, w, a float64
		want       float64
	}{
		{1.3, 1, 0, 1, 0},
		{1.3, 1, 1, 1, 1},
		{0, 1, 0, 1, 0},
		// an exactly observed zero is the point mass
		{0, 0, 0.5, 1, 0},
		// an exactly observed nonzero excludes the point mass
		{1.5, 0, 0.5, 1, 1},
		{-0.1, 0, 0.99, 1, 1},
	} {
		if wp := wpost(c.x, c.s, c.w, c.a); wp != c.want {
			t.Errorf("%d: wpost(%v, %v, %v, %v) = %v, want %v",
				i, c.x, c.s, c.w, c.a, wp, c.want)
		}
	}
}

// The responsibility of the normal component grows with the
// magnitude of the observation.
func TestWpostMonotone(t *testing.T) {
	prev := wpost(0, 1, 0.5, 1)
	if prev <= 0 || prev >= 1 {
		t.Errorf("wpost at zero is %v, want interior", prev)
	}
	for x := 0.5; x <= 5; x += 0.5 {
		wp := wpost(x, 1, 0.5, 1)
		if wp <= prev {
			t.Errorf("wpost(%v) = %v, want above %v", x, wp, prev)
		}
		if wn := wpost(-x, 1, 0.5, 1); wn != wp {
			t.Errorf("wpost(%v) = %v, want symmetric %v", -x, wn, wp)
		}
		prev = wp
	}
}

func TestZeroSEMoments(t *testing.T) {
	ms := posterior([]float64{0, 1.5, -0.3}, []float64{0, 0, 0}, 0.5, 1)
	for i, want := range []struct{ mean, m2 float64 }{
		{0, 0},
		{1.5, 2.25},
		{-0.3, 0.09},
	} {
		if ms[i].Mean != want.mean || ms[i].M2 != want.m2 {
			t.Errorf("%d: moments %+v, want {%v %v}",
				i, ms[i], want.mean, want.m2)
		}
	}
}

// Importance sampling from the prior, weighted by the likelihood,
// estimates the posterior moments without the conjugate shortcut.
func TestMomentsMonteCarlo(t *testing.T) {
	const k = 200000
	for i, c := range []struct{ x, s, w, a float64 }{
		{1.3, 1, 0.5, 1},
		{-2, 0.7, 0.2, 0.5},
		{0, 1, 0.8, 2},
		{4, 2, 0.9, 0.25},
	} {
		src := rand.NewSource(uint64(42 + i))
		ind := distuv.Bernoulli{P: c.w, Src: src}
		comp := distuv.Normal{Mu: 0, Sigma: 1 / math.Sqrt(c.a), Src: src}
		num1, num2, den := 0., 0., 0.
		for j := 0; j != k; j++ {
			theta := 0.
			if ind.Rand() == 1 {
				theta = comp.Rand()
			}
			d := (c.x - theta) / c.s
			wt := math.Exp(-0.5 * d * d)
			num1 += wt * theta
			num2 += wt * theta * theta
			den += wt
		}
		ms := posterior([]float64{c.x}, []float64{c.s}, c.w, c.a)
		if mean := num1 / den; math.Abs(ms[0].Mean-mean) > 0.05 {
			t.Errorf("%d: mean %v, Monte Carlo %v", i, ms[0].Mean, mean)
		}
		if m2 := num2 / den; math.Abs(ms[0].M2-m2) > 0.2 {
			t.Errorf("%d: second moment %v, Monte Carlo %v", i, ms[0].M2, m2)
		}
	}
}

func TestSampler(t *testing.T) {
	const k = 200000
	x := []float64{1.3, 0.8, 0}
	s := []float64{1, 0, 1}
	w, a := 0.5, 1.
	draw := sampler(x, s, w, a, rand.NewSource(1))
	samples := draw(k)
	if len(samples) != k {
		t.Fatalf("%d rows, want %d", len(samples), k)
	}
	ms := posterior(x, s, w, a)
	zeros := 0
	mean, m2 := make([]float64, len(x)), make([]float64, len(x))
	for _, row := range samples {
		if len(row) != len(x) {
			t.Fatalf("%d columns, want %d", len(row), len(x))
		}
		if row[1] != 0.8 {
			t.Fatalf("exactly observed column sampled as %v", row[1])
		}
		if row[2] == 0 {
			zeros++
		}
		for i, y := range row {
			mean[i] += y / k
			m2[i] += y * y / k
		}
	}
	for i := range x {
		if math.Abs(mean[i]-ms[i].Mean) > 0.05 {
			t.Errorf("%d: sample mean %v, want %v", i, mean[i], ms[i].Mean)
		}
		if math.Abs(m2[i]-ms[i].M2) > 0.1 {
			t.Errorf("%d: sample second moment %v, want %v", i, m2[i], ms[i].M2)
		}
	}
	wp := wpost(x[2], s[2], w, a)
	if f := float64(zeros) / k; math.Abs(f-(1-wp)) > 0.01 {
		t.Errorf("zero fraction %v, want %v", f, 1-wp)
	}
}

// Samplers with identically seeded sources draw identical samples.
func TestSamplerReproducible(t *testing.T) {
	x := []float64{1.3, -0.2, 4}
	s := []float64{1, 0.5, 2}
	a, b := sampler(x, s, 0.7, 0.5, rand.NewSource(7)),
		sampler(x, s, 0.7, 0.5, rand.NewSource(7))
	sa, sb := a(5), b(5)
	for j := range sa {
		for i := range sa[j] {
			if sa[j][i] != sb[j][i] {
				t.Errorf("draw %d, column %d: %v != %v",
					j, i, sa[j][i], sb[j][i])
			}
		}
	}
}
