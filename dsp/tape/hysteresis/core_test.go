package hysteresis

import (
	"math"
	"testing"
)

const fs = 48000.0

func TestProcessSineStaysFiniteAndBounded(t *testing.T) {
	c := NewCore(fs)
	bound := c.Parameters().Saturation * 1.1

	for i := 0; i < 48000; i++ {
		// Drive well into saturation territory.
		h := 60000 * math.Sin(2*math.Pi*1000*float64(i)/fs)

		m := c.Process(h)
		if math.IsNaN(m) || math.IsInf(m, 0) {
			t.Fatalf("sample %d: non-finite output %v", i, m)
		}

		if math.Abs(m) > bound {
			t.Fatalf("sample %d: |%g| exceeds bound %g", i, m, bound)
		}
	}
}

func TestProcessStepDiscontinuities(t *testing.T) {
	c := NewCore(fs)
	bound := c.Parameters().Saturation * 1.1

	inputs := []float64{0, 1e6, -1e6, 1e6, 0, -1e9, 1e9, 0.001, -0.001, 0}

	for rep := 0; rep < 200; rep++ {
		for i, h := range inputs {
			m := c.Process(h)
			if math.IsNaN(m) || math.IsInf(m, 0) {
				t.Fatalf("rep %d input %d: non-finite output", rep, i)
			}

			if math.Abs(m) > bound {
				t.Fatalf("rep %d input %d: |%g| exceeds bound %g", rep, i, m, bound)
			}
		}
	}
}

func TestProcessNonFiniteInputRecovers(t *testing.T) {
	c := NewCore(fs)

	for i := 0; i < 100; i++ {
		c.Process(30000 * math.Sin(2*math.Pi*100*float64(i)/fs))
	}

	if got := c.Process(math.NaN()); got != 0 {
		t.Fatalf("NaN input: got %g, want 0", got)
	}

	if got := c.Process(math.Inf(1)); got != 0 {
		t.Fatalf("Inf input: got %g, want 0", got)
	}

	// Subsequent finite samples must process cleanly.
	for i := 0; i < 1000; i++ {
		m := c.Process(30000 * math.Sin(2*math.Pi*100*float64(i)/fs))
		if math.IsNaN(m) || math.IsInf(m, 0) {
			t.Fatalf("sample %d after recovery: non-finite output", i)
		}
	}
}

func TestProcessRespondsToSignal(t *testing.T) {
	c := NewCore(fs)

	peak := 0.0
	for i := 0; i < 4800; i++ {
		h := 20000 * math.Sin(2*math.Pi*1000*float64(i)/fs)
		if m := math.Abs(c.Process(h)); m > peak {
			peak = m
		}
	}

	if peak == 0 {
		t.Fatal("solver produced silence for a strong driving field")
	}
}

func TestResetClearsSolverMemory(t *testing.T) {
	a := NewCore(fs)
	b := NewCore(fs)

	for i := 0; i < 500; i++ {
		a.Process(25000 * math.Sin(2*math.Pi*440*float64(i)/fs))
	}

	a.Reset()

	for i := 0; i < 500; i++ {
		h := 25000 * math.Sin(2*math.Pi*440*float64(i)/fs)
		if got, want := a.Process(h), b.Process(h); got != want {
			t.Fatalf("sample %d: reset core %g, fresh core %g", i, got, want)
		}
	}
}

func TestSetParametersChangesResponse(t *testing.T) {
	a := NewCore(fs)

	soft := DefaultParameters()
	soft.Saturation = 100000

	a.SetParameters(soft)
	a.Reset()

	bound := soft.Saturation * 1.1
	for i := 0; i < 4800; i++ {
		h := 1e6 * math.Sin(2*math.Pi*100*float64(i)/fs)

		if m := a.Process(h); math.Abs(m) > bound {
			t.Fatalf("sample %d: |%g| exceeds reduced bound %g", i, m, bound)
		}
	}
}

func TestLangevinTaylorMatchesClosedFormAtBoundary(t *testing.T) {
	// The Taylor branch and the closed form must agree near the switch
	// threshold, otherwise the solver sees a derivative discontinuity.
	for _, x := range []float64{0.0099, 0.0101, -0.0099, -0.0101} {
		l, ld := langevin(x)

		closedL := 1/math.Tanh(x) - 1/x
		closedLd := 1/(x*x) - 1/(math.Tanh(x)*math.Tanh(x)) + 1

		if math.Abs(l-closedL) > 1e-8 {
			t.Errorf("L(%g) = %g, closed form %g", x, l, closedL)
		}

		if math.Abs(ld-closedLd) > 1e-8 {
			t.Errorf("L'(%g) = %g, closed form %g", x, ld, closedLd)
		}
	}
}

func TestLangevinBounds(t *testing.T) {
	for _, x := range []float64{-50, -5, -0.5, -0.005, 0, 0.005, 0.5, 5, 50} {
		l, ld := langevin(x)

		if math.Abs(l) > 1 {
			t.Errorf("|L(%g)| = %g > 1", x, l)
		}

		if ld < 0 || ld > 1.0/3.0+0.01 {
			t.Errorf("L'(%g) = %g out of [0, 1/3+eps]", x, ld)
		}
	}
}
