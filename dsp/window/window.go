// Package window generates analysis window functions for the spectral
// measurement tooling (see measure/thd).
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeFlatTop
)

// Generate returns symmetric window coefficients of the given length.
func Generate(t Type, length int) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}

	n := float64(length - 1)
	for i := range out {
		x := float64(i) / n
		out[i] = eval(t, x)
	}

	return out
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64) {
	if len(buf) == 0 {
		return
	}

	coeffs := Generate(t, len(buf))
	vecmath.MulBlockInPlace(buf, coeffs)
}

// CoherentGain returns the mean of the window coefficients, the factor
// by which a windowed sine's spectral peak is scaled.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs))
}

// FirstMinimumBins returns the half-width of the window's main spectral
// lobe in FFT bins. Harmonic analyzers sum this many bins either side
// of a peak to capture the full smeared component.
func FirstMinimumBins(t Type) int {
	switch t {
	case TypeRectangular:
		return 1
	case TypeHann, TypeHamming:
		return 2
	case TypeBlackman:
		return 3
	case TypeFlatTop:
		return 5
	default:
		return 2
	}
}

func eval(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(2*math.Pi*x)
	case TypeHamming:
		return 0.54 - 0.46*math.Cos(2*math.Pi*x)
	case TypeBlackman:
		return 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
	case TypeFlatTop:
		return 0.21557895 -
			0.41663158*math.Cos(2*math.Pi*x) +
			0.277263158*math.Cos(4*math.Pi*x) -
			0.083578947*math.Cos(6*math.Pi*x) +
			0.006947368*math.Cos(8*math.Pi*x)
	default:
		return 1
	}
}
