// Package eq implements the fixed per-machine playback equalizer: a
// cascade of high-pass and bell sections hand-tuned against measured
// head/electronics response curves for each machine.
package eq

import (
	"github.com/cwbudde/algo-tape/dsp/filter/biquad"
	"github.com/cwbudde/algo-tape/dsp/filter/design"
)

// Machine selects which coefficient table is active.
type Machine int

const (
	// Ampex models the ATR-102 mastering deck response.
	Ampex Machine = iota
	// Studer models the A820 multitrack response.
	Studer
)

// String returns the machine name.
func (m Machine) String() string {
	if m == Studer {
		return "studer"
	}

	return "ampex"
}

// stage describes one cascade entry in a coefficient table.
type stage struct {
	kind   stageKind
	freq   float64
	q      float64
	gainDB float64
}

type stageKind int

const (
	stageBell stageKind = iota
	stageHighpass
	stageHighpass1 // first-order
	stageLowpass
)

// ampexStages matches the ATR-102 target curve: a tight LF lift with
// head bump at 40 Hz, a shallow midrange contour, an air lift near
// 18 kHz, and a 30 kHz band edge (active only above 96 kHz rates).
var ampexStages = []stage{
	{kind: stageHighpass, freq: 16.0, q: 0.7071},
	{kind: stageBell, freq: 15.0, q: 6.0, gainDB: 2.0},
	{kind: stageBell, freq: 40.0, q: 2.0, gainDB: 1.2},
	{kind: stageBell, freq: 75.0, q: 2.0, gainDB: -0.1},
	{kind: stageBell, freq: 100.0, q: 2.0, gainDB: 0.3},
	{kind: stageBell, freq: 150.0, q: 2.0, gainDB: 0.0},
	{kind: stageBell, freq: 250.0, q: 2.0, gainDB: -0.1},
	{kind: stageBell, freq: 1000.0, q: 1.5, gainDB: 0.1},
	{kind: stageBell, freq: 5500.0, q: 1.0, gainDB: -0.25},
	{kind: stageBell, freq: 10500.0, q: 1.5, gainDB: 0.0},
	{kind: stageBell, freq: 18000.0, q: 1.0, gainDB: 0.35},
	{kind: stageLowpass, freq: 30000.0, q: 0.7},
}

// studerStages matches the A820 target curve: an 18 dB/oct low cut
// (second-order at 27 Hz plus first-order at 30.5 Hz), dual head bumps
// at 46 and 110 Hz, and a gentle presence/air contour.
var studerStages = []stage{
	{kind: stageHighpass, freq: 27.0, q: 1.0},
	{kind: stageHighpass1, freq: 30.5},
	{kind: stageBell, freq: 46.0, q: 1.4, gainDB: 1.10},
	{kind: stageBell, freq: 70.0, q: 2.0, gainDB: -0.50},
	{kind: stageBell, freq: 110.0, q: 2.0, gainDB: 1.20},
	{kind: stageBell, freq: 160.0, q: 1.5, gainDB: 0.30},
	{kind: stageBell, freq: 200.0, q: 2.0, gainDB: -0.30},
	{kind: stageBell, freq: 600.0, q: 1.5, gainDB: 0.20},
	{kind: stageBell, freq: 5000.0, q: 1.0, gainDB: 0.50},
	{kind: stageBell, freq: 10000.0, q: 1.5, gainDB: -0.25},
	{kind: stageBell, freq: 20000.0, q: 1.0, gainDB: 0.50},
}

// Equalizer runs the active machine's cascade. Both cascades are kept
// designed so a machine switch is just a pointer swap; stale state in
// the inactive cascade is cleared by Reset.
type Equalizer struct {
	machine    Machine
	sampleRate float64

	ampex  *biquad.Chain
	studer *biquad.Chain
}

// New returns an Equalizer for the given machine and sample rate.
func New(machine Machine, sampleRate float64) *Equalizer {
	e := &Equalizer{
		machine:    machine,
		sampleRate: 48000,
	}
	if sampleRate > 0 {
		e.sampleRate = sampleRate
	}

	e.ampex = biquad.NewChain(designStages(ampexStages, e.sampleRate))
	e.studer = biquad.NewChain(designStages(studerStages, e.sampleRate))

	return e
}

// SetMachine selects the active coefficient table. Takes effect on the
// next ProcessSample call.
func (e *Equalizer) SetMachine(machine Machine) {
	e.machine = machine
}

// Machine returns the active machine.
func (e *Equalizer) Machine() Machine {
	return e.machine
}

// SetSampleRate redesigns both cascades. Section counts are unchanged,
// so running filter state is preserved.
func (e *Equalizer) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	e.sampleRate = sampleRate
	e.ampex.UpdateCoefficients(designStages(ampexStages, sampleRate))
	e.studer.UpdateCoefficients(designStages(studerStages, sampleRate))
}

// Reset clears both cascades.
func (e *Equalizer) Reset() {
	e.ampex.Reset()
	e.studer.Reset()
}

// ProcessSample runs one sample through the active cascade.
func (e *Equalizer) ProcessSample(x float64) float64 {
	return e.active().ProcessSample(x)
}

// MagnitudeDB returns the active cascade's magnitude response.
func (e *Equalizer) MagnitudeDB(freqHz float64) float64 {
	return e.active().MagnitudeDB(freqHz, e.sampleRate)
}

func (e *Equalizer) active() *biquad.Chain {
	if e.machine == Studer {
		return e.studer
	}

	return e.ampex
}

func designStages(stages []stage, sampleRate float64) []biquad.Coefficients {
	coeffs := make([]biquad.Coefficients, len(stages))

	for i, s := range stages {
		switch s.kind {
		case stageHighpass:
			coeffs[i] = design.Highpass(s.freq, s.q, sampleRate)
		case stageHighpass1:
			coeffs[i] = design.FirstOrderHighpass(s.freq, sampleRate)
		case stageLowpass:
			coeffs[i] = design.Lowpass(s.freq, s.q, sampleRate)
		default:
			coeffs[i] = design.Bell(s.freq, s.gainDB, s.q, sampleRate)
		}
	}

	return coeffs
}
