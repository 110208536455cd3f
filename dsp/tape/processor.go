package tape

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tape/dsp/core"
	"github.com/cwbudde/algo-tape/dsp/delay"
	"github.com/cwbudde/algo-tape/dsp/filter/biquad"
	"github.com/cwbudde/algo-tape/dsp/filter/design"
	"github.com/cwbudde/algo-tape/dsp/tape/eq"
	"github.com/cwbudde/algo-tape/dsp/tape/hysteresis"
	"github.com/cwbudde/algo-tape/dsp/tape/shield"
)

const (
	// numDispersiveStages is the fixed depth of the phase-smear bank;
	// stage corners run in geometric progression from the configured
	// base corner.
	numDispersiveStages = 4

	// dcBlockerHz is the corner of the 4th-order Butterworth high-pass
	// that removes the DC offset introduced by the biased cubic.
	dcBlockerHz = 5.0

	// fadeInSeconds masks the DC-blocker settling transient after every
	// reset with a linear gain ramp.
	fadeInSeconds = 0.150

	// hysteresisOutputScale normalizes the core's magnetization to
	// unity at the 0 VU reference input (0.316).
	hysteresisOutputScale = 146.0

	// envelopeAttackSeconds / envelopeReleaseSeconds shape the blend
	// follower: fast attack to catch transients, slow release for a
	// smooth decay.
	envelopeAttackSeconds  = 0.001
	envelopeReleaseSeconds = 0.050

	// delayBypassThreshold skips the fractional delay entirely for
	// sub-0.1-sample offsets.
	delayBypassThreshold = 0.1

	// delayBufferSamples covers the longest configured azimuth offset
	// up to 384 kHz rates.
	delayBufferSamples = 16

	// saturationLowThreshold is the envelope level below which the
	// low-level a3 reduction engages.
	saturationLowThreshold = 0.5
)

// Processor is the per-channel tape saturation engine. It owns one
// instance of every stage and sequences the full per-sample transform;
// stereo operation uses two independent Processors.
//
// The processing contract is single-threaded: configuration calls and
// sample calls must come from one goroutine (or under caller-provided
// exclusion). Every per-sample call is allocation-free and O(1).
type Processor struct {
	sampleRate float64

	machine   Machine
	formula   Formula
	inputGain float64

	consts Constants

	shielding *shield.Filter
	hyst      *hysteresis.Core
	equalizer *eq.Equalizer

	// Dispersive allpass bank state: first-order sections
	// y = a*x + z; z = x - a*y. Only the first dispersiveActive
	// stages run; stages whose corner falls at or above Nyquist for
	// the current rate are skipped.
	dispersiveCoeff  [numDispersiveStages]float64
	dispersiveState  [numDispersiveStages]float64
	dispersiveActive int

	dcBlocker1 biquad.Section
	dcBlocker2 biquad.Section

	// Blend envelope follower (post-shielding level).
	blendEnvelope float64
	envAttack     float64
	envRelease    float64

	// Saturation envelope follower (pre-saturation level).
	satEnvelope float64

	fadeGain      float64
	fadeIncrement float64

	line          *delay.Line
	delaySamples  float64
	allpassMemory float64
}

// Option configures a Processor at construction time.
type Option func(*Processor) error

// WithMachine selects the initial machine.
func WithMachine(m Machine) Option {
	return func(p *Processor) error {
		if m != MachineAmpex && m != MachineStuder {
			return fmt.Errorf("tape: invalid machine: %d", m)
		}

		p.machine = m

		return nil
	}
}

// WithFormula selects the initial tape formula.
func WithFormula(f Formula) Option {
	return func(p *Processor) error {
		if f != FormulaGP9 && f != FormulaSM900 {
			return fmt.Errorf("tape: invalid formula: %d", f)
		}

		p.formula = f

		return nil
	}
}

// WithInputGain sets the initial input gain (linear).
func WithInputGain(gain float64) Option {
	return func(p *Processor) error {
		if !core.IsFinite(gain) || gain < 0 {
			return fmt.Errorf("tape: input gain must be finite and >= 0: %f", gain)
		}

		p.inputGain = gain

		return nil
	}
}

// NewProcessor creates a Processor at the given sample rate.
func NewProcessor(sampleRate float64, opts ...Option) (*Processor, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("tape: sample rate must be > 0 and finite: %f", sampleRate)
	}

	p := &Processor{
		sampleRate: sampleRate,
		machine:    MachineAmpex,
		formula:    FormulaGP9,
		inputGain:  1,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(p); err != nil {
			return nil, err
		}
	}

	p.shielding = shield.New(shieldParams(p.machine), sampleRate)
	p.hyst = hysteresis.NewCore(sampleRate)
	p.equalizer = eq.New(eqMachine(p.machine), sampleRate)

	line, err := delay.New(delayBufferSamples)
	if err != nil {
		return nil, err
	}
	p.line = line

	p.updateCachedValues()

	if err := p.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}

	p.Reset()

	return p, nil
}

// SampleRate returns the configured sample rate.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// Machine returns the active machine.
func (p *Processor) Machine() Machine { return p.machine }

// Formula returns the active tape formula.
func (p *Processor) Formula() Formula { return p.formula }

// InputGain returns the input gain.
func (p *Processor) InputGain() float64 { return p.inputGain }

// Config returns the active per-configuration constant set.
func (p *Processor) Config() Constants { return p.consts }

// SetSampleRate recomputes every rate-dependent coefficient in all
// owned stages. Call before first use and on any host rate change.
func (p *Processor) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("tape: sample rate must be > 0 and finite: %f", sampleRate)
	}

	p.sampleRate = sampleRate
	p.shielding.SetSampleRate(sampleRate)
	p.hyst.SetSampleRate(sampleRate)
	p.equalizer.SetSampleRate(sampleRate)

	p.envAttack = math.Exp(-1.0 / (envelopeAttackSeconds * sampleRate))
	p.envRelease = math.Exp(-1.0 / (envelopeReleaseSeconds * sampleRate))
	p.fadeIncrement = 1.0 / (fadeInSeconds * sampleRate)

	p.updateDispersiveBank()
	p.delaySamples = p.consts.ChannelDelayMicros * 1e-6 * sampleRate

	dc := design.Highpass(dcBlockerHz, 0.7071, sampleRate)
	p.dcBlocker1.Configure(dc)
	p.dcBlocker2.Configure(dc)

	return nil
}

// SetParameters updates machine, input gain and formula. Arguments are
// validated the same way the construction options validate them; an
// invalid value leaves the configuration untouched. A machine or
// formula change recomputes every cached per-configuration constant and
// takes effect on the very next sample call; it does NOT reset running
// filter state. Callers needing a click-free transition follow with
// Reset - configuration and state clearing are deliberately decoupled
// so a harness can measure raw responses without reset side effects.
func (p *Processor) SetParameters(machine Machine, inputGain float64, formula Formula) error {
	if machine != MachineAmpex && machine != MachineStuder {
		return fmt.Errorf("tape: invalid machine: %d", machine)
	}

	if formula != FormulaGP9 && formula != FormulaSM900 {
		return fmt.Errorf("tape: invalid formula: %d", formula)
	}

	if !core.IsFinite(inputGain) || inputGain < 0 {
		return fmt.Errorf("tape: input gain must be finite and >= 0: %f", inputGain)
	}

	p.inputGain = inputGain

	if machine == p.machine && formula == p.formula {
		return nil
	}

	p.machine = machine
	p.formula = formula
	p.updateCachedValues()

	return nil
}

// SetTestParameters overrides the four empirically fit saturation
// constants directly, bypassing the configuration lookup. Calibration
// harnesses use this for curve fitting against measured targets; call
// after SetParameters, which would otherwise reload the table values.
func (p *Processor) SetTestParameters(satA3, satPower, lowLevelScale, blend float64) {
	p.consts.SatA3 = satA3
	p.consts.SatPower = satPower
	p.consts.LowLevelScale = lowLevelScale
	p.consts.HysteresisBlend = blend
}

// Reset zeroes every owned filter's delay registers, both envelopes,
// the fade ramp, and the channel delay line. Call after a configuration
// change whenever an audible discontinuity must be masked.
func (p *Processor) Reset() {
	p.shielding.Reset()
	p.hyst.Reset()
	p.equalizer.Reset()
	p.dcBlocker1.Reset()
	p.dcBlocker2.Reset()

	for i := range p.dispersiveState {
		p.dispersiveState[i] = 0
	}

	p.blendEnvelope = 0
	p.satEnvelope = 0
	p.fadeGain = 0

	p.line.Reset()
	p.allpassMemory = 0
}

// updateCachedValues reloads every per-configuration constant from the
// lookup table and reconfigures the stages that depend on them.
func (p *Processor) updateCachedValues() {
	p.consts = ConfigConstants(p.machine, p.formula)

	p.hyst.SetParameters(hysteresis.DefaultParameters())
	p.shielding.SetParams(shieldParams(p.machine))
	p.equalizer.SetMachine(eqMachine(p.machine))

	p.updateDispersiveBank()
	p.delaySamples = p.consts.ChannelDelayMicros * 1e-6 * p.sampleRate
}

// updateDispersiveBank recomputes the allpass corners: base corner
// times 2^(i*0.5) per stage. Corners run upward, so the first one at
// or above Nyquist ends the bank.
func (p *Processor) updateDispersiveBank() {
	p.dispersiveActive = 0

	for i := 0; i < numDispersiveStages; i++ {
		freq := p.consts.DispersiveHz * math.Pow(2, float64(i)*0.5)

		a, ok := design.FirstOrderAllpassCoefficient(freq, p.sampleRate)
		if !ok {
			break
		}

		p.dispersiveCoeff[i] = a
		p.dispersiveActive++
	}
}

// ProcessSample executes the full per-sample pipeline: input gain,
// shielding split, envelope-weighted hysteresis blend, level-scaled
// cubic saturation, clean-HF recombination, machine EQ, dispersive
// phase smear, DC blocking, and the post-reset fade ramp.
func (p *Processor) ProcessSample(input float64) float64 {
	gained := input * p.inputGain

	// Complementary split: low frequencies go to saturation, the
	// removed high band bypasses it untouched.
	shielded := p.shielding.ProcessSample(gained)
	cleanHF := gained - shielded

	// Blend envelope follows the post-shielding level.
	absLevel := math.Abs(shielded)
	envCoeff := p.envRelease
	if absLevel > p.blendEnvelope {
		envCoeff = p.envAttack
	}
	p.blendEnvelope = envCoeff*p.blendEnvelope + (1-envCoeff)*absLevel

	// Hysteresis path, normalized to unity at 0 VU.
	hystOut := p.hyst.Process(shielded) * hysteresisOutputScale

	// The output scaling can amplify small numerical glitches; soft
	// limit well beyond the normal signal range.
	if abs := math.Abs(hystOut); abs > 1.5 {
		sign := 1.0
		if hystOut < 0 {
			sign = -1.0
		}

		hystOut = sign * (1.5 + 0.5*math.Tanh((abs-1.5)*2.0))
	}

	if !core.IsFinite(hystOut) {
		hystOut = shielded
	}

	blend := p.consts.HysteresisBlend
	blended := shielded*(1-blend) + hystOut*blend

	saturated := p.saturate(blended)

	out := saturated + cleanHF
	out = p.equalizer.ProcessSample(out)

	for i := 0; i < p.dispersiveActive; i++ {
		a := p.dispersiveCoeff[i]
		y := a*out + p.dispersiveState[i]
		p.dispersiveState[i] = out - a*y
		out = y
	}

	out = p.dcBlocker1.ProcessSample(out)
	out = p.dcBlocker2.ProcessSample(out)

	if p.fadeGain < 1 {
		out *= p.fadeGain

		p.fadeGain += p.fadeIncrement
		if p.fadeGain > 1 {
			p.fadeGain = 1
		}
	}

	return out
}

// ProcessSecondChannel runs the full pipeline and then the azimuth
// delay: a Thiran first-order allpass over a short circular buffer
// realizes the sub-sample inter-channel offset. Delays under 0.1
// samples are bypassed.
func (p *Processor) ProcessSecondChannel(input float64) float64 {
	processed := p.ProcessSample(input)

	p.line.Write(processed)

	if p.delaySamples < delayBypassThreshold {
		return processed
	}

	intDelay := int(p.delaySamples)
	frac := p.delaySamples - float64(intDelay)

	// Thiran coefficient for fractional delay d: a = (1-d)/(1+d).
	allpassCoeff := (1 - frac) / (1 + frac)

	xCurr := p.line.Read(intDelay + 1)
	xPrev := p.line.Read(intDelay + 2)

	delayed := allpassCoeff*xCurr + xPrev - allpassCoeff*p.allpassMemory
	p.allpassMemory = delayed

	return delayed
}

// saturate applies the level-scaled cubic with DC bias.
//
// The effective cubic coefficient is SatA3 * env^SatPower, giving a THD
// slope of (2 + SatPower) on a log-log scale - steeper than a pure
// cubic, matching measured tape behavior. Below the low threshold the
// coefficient is further reduced (squared curve, concentrating the
// reduction at very low levels); above the knee it is pulled down to
// flatten the curve at hot levels.
func (p *Processor) saturate(x float64) float64 {
	absLevel := math.Abs(x)

	satCoeff := 0.999
	if absLevel > p.satEnvelope {
		satCoeff = 0.9
	}
	p.satEnvelope = satCoeff*p.satEnvelope + (1-satCoeff)*absLevel

	biased := x + p.consts.DCBias

	env := math.Max(0.01, p.satEnvelope)
	effectiveA3 := p.consts.SatA3 * math.Pow(env, p.consts.SatPower)

	if env < saturationLowThreshold {
		t := env / saturationLowThreshold
		tSq := t * t
		effectiveA3 *= p.consts.LowLevelScale + (1-p.consts.LowLevelScale)*tSq
	}

	if knee := p.consts.HighKnee; env > knee {
		t := math.Min(1, (env-knee)/knee)
		effectiveA3 *= 1 - (1-p.consts.HighLevelScale)*t
	}

	return biased - effectiveA3*biased*biased*biased
}
