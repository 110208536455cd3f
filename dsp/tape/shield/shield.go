// Package shield models the frequency-dependent effectiveness of AC
// bias at linearizing the recording process ("bias shielding").
//
// The filter is a two-shelf-plus-bell cascade whose combined response
// is flat below roughly 5 kHz and rolls off smoothly above, matching
// published curves per machine. The cascade is normalized analytically
// to exactly unity gain at DC, so the orchestrator's complementary
// split (clean HF = input - shielded) removes only high-frequency
// content.
package shield

import (
	"math"

	"github.com/cwbudde/algo-tape/dsp/filter/biquad"
	"github.com/cwbudde/algo-tape/dsp/filter/design"
)

// ShelfSpec parameterizes one high-shelf stage.
type ShelfSpec struct {
	Freq   float64
	GainDB float64
	Q      float64
}

// BellSpec parameterizes the knee-shaping bell stage.
type BellSpec struct {
	Freq   float64
	GainDB float64
	Q      float64
}

// Params holds the full cascade parameterization for one machine.
type Params struct {
	Shelf1 ShelfSpec
	Shelf2 ShelfSpec
	Bell   BellSpec
}

// Ampex returns the ATR-102 shielding curve (432 kHz bias): more HF
// cut, so more of the top end bypasses saturation.
// Targets: 0 dB below 5k, -4 dB at 5k, -7 dB at 10k, -9 dB at 15k,
// -11 dB at 20k.
func Ampex() Params {
	return Params{
		Shelf1: ShelfSpec{Freq: 7000, GainDB: -7.0, Q: 1.0},
		Shelf2: ShelfSpec{Freq: 15000, GainDB: -4.0, Q: 1.0},
		Bell:   BellSpec{Freq: 5000, GainDB: -3.5, Q: 2.0},
	}
}

// Studer returns the A820 shielding curve (153.6 kHz bias): less HF
// cut, so more of the top end reaches saturation.
// Targets: 0 dB below 5k, -2 dB at 5k, -5 dB at 10k, -7 dB at 15k,
// -9 dB at 20k.
func Studer() Params {
	return Params{
		Shelf1: ShelfSpec{Freq: 7500, GainDB: -6.0, Q: 0.8},
		Shelf2: ShelfSpec{Freq: 16000, GainDB: -3.0, Q: 1.0},
		Bell:   BellSpec{Freq: 6000, GainDB: -2.0, Q: 2.0},
	}
}

// Filter is the three-stage shielding cascade with DC normalization.
type Filter struct {
	params     Params
	sampleRate float64

	shelf1 biquad.Section
	shelf2 biquad.Section
	bell   biquad.Section

	normGain float64
}

// New returns a Filter for the given parameter set and sample rate.
func New(params Params, sampleRate float64) *Filter {
	f := &Filter{
		params:     params,
		sampleRate: 48000,
		normGain:   1,
	}
	if sampleRate > 0 {
		f.sampleRate = sampleRate
	}

	f.updateCoefficients()

	return f
}

// SetParams switches the cascade parameterization. Filter memory is
// kept; the caller resets when the switch must be click-free.
func (f *Filter) SetParams(params Params) {
	if f.params == params {
		return
	}

	f.params = params
	f.updateCoefficients()
}

// Params returns the active parameterization.
func (f *Filter) Params() Params {
	return f.params
}

// SetSampleRate redesigns all stages for a new sample rate.
func (f *Filter) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	f.sampleRate = sampleRate
	f.updateCoefficients()
}

// Reset zeroes all stage delay registers.
func (f *Filter) Reset() {
	f.shelf1.Reset()
	f.shelf2.Reset()
	f.bell.Reset()
}

// ProcessSample runs one sample through the cascade and the DC
// normalization gain.
func (f *Filter) ProcessSample(x float64) float64 {
	x = f.shelf1.ProcessSample(x)
	x = f.shelf2.ProcessSample(x)
	x = f.bell.ProcessSample(x)

	return x * f.normGain
}

// DCGain returns the analytic gain of the normalized cascade at z=1.
// It is exactly 1 up to floating-point rounding, for any parameters.
func (f *Filter) DCGain() float64 {
	return f.rawDCGain() * f.normGain
}

// MagnitudeDB returns the normalized cascade magnitude response.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	mag := math.Sqrt(f.shelf1.MagnitudeSquared(freqHz, f.sampleRate) *
		f.shelf2.MagnitudeSquared(freqHz, f.sampleRate) *
		f.bell.MagnitudeSquared(freqHz, f.sampleRate))

	return 20 * math.Log10(mag*math.Abs(f.normGain))
}

func (f *Filter) rawDCGain() float64 {
	return f.shelf1.Coefficients.DCGain() *
		f.shelf2.Coefficients.DCGain() *
		f.bell.Coefficients.DCGain()
}

func (f *Filter) updateCoefficients() {
	p := f.params
	fs := f.sampleRate

	f.shelf1.Configure(design.HighShelf(p.Shelf1.Freq, p.Shelf1.GainDB, p.Shelf1.Q, fs))
	f.shelf2.Configure(design.HighShelf(p.Shelf2.Freq, p.Shelf2.GainDB, p.Shelf2.Q, fs))
	f.bell.Configure(design.Bell(p.Bell.Freq, p.Bell.GainDB, p.Bell.Q, fs))

	// Renormalize to exact unity at DC whenever coefficients change, so
	// low-frequency content reaches saturation at its natural level.
	f.normGain = 1.0 / f.rawDCGain()
}
