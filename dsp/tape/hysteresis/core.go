// Package hysteresis implements a Jiles-Atherton magnetic hysteresis
// model solved per sample with a fixed-iteration Newton-Raphson scheme.
//
// The solver is real-time safe by construction: the iteration count is
// fixed (not convergence-driven), every intermediate is clamped, and a
// non-finite result resets the internal state instead of propagating.
// Output is always finite and bounded by the saturation magnetization
// plus a small headroom.
package hysteresis

import (
	"math"

	"github.com/cwbudde/algo-tape/dsp/core"
)

const (
	// newtonIterations is a correctness-relevant constant: the solver
	// always runs exactly this many steps, trading accuracy for a hard
	// per-sample cost ceiling.
	newtonIterations = 8

	// maxSlewRate limits the field derivative (units per second) so a
	// step discontinuity at the input cannot blow up the solver.
	maxSlewRate = 10000.0

	// langevinTaylorThreshold switches the Langevin function to its
	// Taylor expansion; the closed form has a removable singularity at
	// zero that is unstable in floating point.
	langevinTaylorThreshold = 0.01

	// outputHeadroom scales the saturation magnetization into the soft
	// limiter ceiling.
	outputHeadroom = 1.1

	denormalThreshold = 1e-15
)

// Parameters holds the five material constants of the model.
type Parameters struct {
	Saturation    float64 // saturation magnetization M_s
	WallDensity   float64 // domain wall density a
	Coercivity    float64 // coercivity k
	Reversibility float64 // reversibility c
	MeanField     float64 // mean field coupling alpha
}

// DefaultParameters returns the calibrated 30 IPS tape constants.
func DefaultParameters() Parameters {
	return Parameters{
		Saturation:    350000.0,
		WallDensity:   22000.0,
		Coercivity:    27500.0,
		Reversibility: 0.98,
		MeanField:     1.6e-3,
	}
}

// Core solves the hysteresis relation between an input field H and an
// output magnetization M, one sample at a time.
type Core struct {
	params Parameters

	invWallDensity float64
	cAlpha         float64

	period float64 // sample period T

	mPrev float64
	hPrev float64
}

// NewCore returns a Core with default material parameters.
func NewCore(sampleRate float64) *Core {
	c := &Core{period: 1.0 / 48000.0}
	if sampleRate > 0 {
		c.period = 1.0 / sampleRate
	}

	c.SetParameters(DefaultParameters())

	return c
}

// SetParameters replaces the material constants. Running state is kept;
// callers reset explicitly when the change is discontinuous.
func (c *Core) SetParameters(p Parameters) {
	c.params = p
	c.invWallDensity = 1.0 / p.WallDensity
	c.cAlpha = p.Reversibility * p.MeanField
}

// Parameters returns the active material constants.
func (c *Core) Parameters() Parameters {
	return c.params
}

// SetSampleRate updates the sample period.
func (c *Core) SetSampleRate(sampleRate float64) {
	if sampleRate > 0 {
		c.period = 1.0 / sampleRate
	}
}

// Reset clears the solver memory (previous field and magnetization).
func (c *Core) Reset() {
	c.mPrev = 0
	c.hPrev = 0
}

// Process advances the model by one sample of the input field and
// returns the new magnetization. The result is always finite; numerical
// failure resets the state to the current input and returns zero for
// that sample only.
func (c *Core) Process(h float64) float64 {
	if !core.IsFinite(h) {
		c.mPrev = 0
		c.hPrev = 0

		return 0
	}

	if math.Abs(h) < denormalThreshold {
		h = 0
	}

	// Field derivative with slew limiting.
	maxDelta := maxSlewRate * c.period
	delta := core.Clamp(h-c.hPrev, -maxDelta, maxDelta)
	hd := delta / c.period

	m := c.solve(h, hd)

	if !core.IsFinite(m) {
		c.mPrev = 0
		c.hPrev = h

		return 0
	}

	c.hPrev = h
	c.mPrev = m

	// Soft limit to mask numerical artifacts near full saturation.
	maxOutput := c.params.Saturation * outputHeadroom
	if math.Abs(m) > maxOutput*0.9 {
		m = maxOutput * tanh64(m/maxOutput)
	}

	return m
}

// solve runs the fixed Newton-Raphson iteration on the implicit
// relation M = M_prev + T * dM/dH * dH/dt.
func (c *Core) solve(h, hd float64) float64 {
	direction := 1.0
	if hd < 0 {
		direction = -1.0
	}

	m := c.mPrev

	denom := 1.0 - c.cAlpha
	if math.Abs(denom) < 1e-12 {
		denom = 1e-12
	}

	ms := c.params.Saturation
	stepLimit := ms * 0.1

	for i := 0; i < newtonIterations; i++ {
		hEff := h + c.params.MeanField*m
		x := hEff * c.invWallDensity

		l, ld := langevin(x)

		mAnhyst := ms * l
		dAnhyst := ms * ld * c.invWallDensity * c.params.MeanField
		mDiff := mAnhyst - m
		deltaK := direction * c.params.Coercivity

		denomDiff := deltaK - c.params.MeanField*mDiff
		if math.Abs(denomDiff) < 1e-10 {
			if denomDiff >= 0 {
				denomDiff = 1e-10
			} else {
				denomDiff = -1e-10
			}
		}

		var dMdH float64
		if math.Abs(mDiff) > 1e-12 && direction*mDiff > 0 {
			dMdH = (mDiff/denomDiff + c.params.Reversibility*dAnhyst) / denom
		} else {
			dMdH = c.params.Reversibility * dAnhyst / denom
		}

		f := m - c.mPrev - c.period*dMdH*hd

		var dfdM float64
		if math.Abs(denomDiff) > 1e-12 {
			dfdM = (dAnhyst - 1.0) / denomDiff / denom
		}

		fPrime := 1.0 - c.period*hd*dfdM

		if math.Abs(fPrime) > 1e-10 {
			update := core.Clamp(f/fPrime, -stepLimit, stepLimit)
			m -= update
		}

		m = core.Clamp(m, -ms, ms)
	}

	return m
}

// langevin evaluates L(x) = coth(x) - 1/x and its derivative in one
// pass. Below the Taylor threshold the truncated series is used:
//
//	L(x)  = x/3 - x^3/45 + 2x^5/945
//	L'(x) = 1/3 - x^2/15 + 2x^4/189
func langevin(x float64) (l, ld float64) {
	if math.Abs(x) < langevinTaylorThreshold {
		x2 := x * x
		l = x * (1.0/3.0 - x2*(1.0/45.0-x2*(2.0/945.0)))
		ld = 1.0/3.0 - x2*(1.0/15.0-x2*(2.0/189.0))

		return l, ld
	}

	tanhX := tanh64(x)

	// Intermediate x can still produce a tiny tanh; fall back to the
	// short series rather than dividing by it.
	if math.Abs(tanhX) < 1e-6 {
		x2 := x * x
		l = x * (1.0/3.0 - x2*(1.0/45.0))
		ld = 1.0/3.0 - x2*(1.0/15.0)

		return l, ld
	}

	cothX := 1.0 / tanhX
	invX := 1.0 / x
	l = cothX - invX
	ld = invX*invX - cothX*cothX + 1.0

	// L is bounded by +-1; L' peaks at 1/3 at the origin.
	l = core.Clamp(l, -1.0, 1.0)
	ld = core.Clamp(ld, 0.0, 1.0/3.0+0.01)

	return l, ld
}
