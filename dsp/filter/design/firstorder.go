package design

import (
	"math"

	"github.com/cwbudde/algo-tape/dsp/filter/biquad"
)

// FirstOrderLowpass designs a first-order lowpass section via the
// bilinear transform. B2 and A2 are zero.
func FirstOrderLowpass(freq, sampleRate float64) biquad.Coefficients {
	k, ok := bilinearK(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

// FirstOrderHighpass designs a first-order highpass section via the
// bilinear transform. B2 and A2 are zero.
func FirstOrderHighpass(freq, sampleRate float64) biquad.Coefficients {
	k, ok := bilinearK(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}
}

// FirstOrderAllpassCoefficient returns the coefficient a of the
// first-order allpass H(z) = (a + z^-1) / (1 + a*z^-1) whose 90-degree
// phase-shift point sits at freq. ok is false for corners at or above
// Nyquist, where no such section exists; callers skip the stage (a = 0
// is a valid coefficient, the quarter-rate section, so it cannot serve
// as a sentinel).
func FirstOrderAllpassCoefficient(freq, sampleRate float64) (a float64, ok bool) {
	k, ok := bilinearK(freq, sampleRate)
	if !ok {
		return 0, false
	}

	return (1 - k) / (1 + k), true
}

// bilinearK computes the bilinear transform frequency warping factor
// tan(pi*freq/sampleRate). Returns (0, false) for invalid parameters,
// including corners at or above Nyquist.
func bilinearK(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return math.Tan(math.Pi * freq / sampleRate), true
}
