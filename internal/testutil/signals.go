// Package testutil holds shared helpers for package tests: signal
// generators and numeric assertions.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave with zero initial phase.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise generates seeded white noise in [-amplitude, amplitude].
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse generates a unit impulse at pos.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// RMS returns the root-mean-square level of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range signal {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(signal)))
}

// ToneAtFrequency correlates the signal against a complex exponential
// at freqHz and returns the tone's amplitude and phase in radians.
// Phase is relative to a cosine starting at sample zero; comparing the
// phases of two captures of the same tone measures their relative
// delay.
func ToneAtFrequency(signal []float64, freqHz, sampleRate float64) (amplitude, phase float64) {
	if len(signal) == 0 {
		return 0, 0
	}

	step := 2 * math.Pi * freqHz / sampleRate

	var re, im float64
	for i, v := range signal {
		ph := step * float64(i)
		re += v * math.Cos(ph)
		im -= v * math.Sin(ph)
	}

	n := float64(len(signal))

	return 2 * math.Hypot(re, im) / n, math.Atan2(im, re)
}
