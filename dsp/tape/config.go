package tape

import (
	"github.com/cwbudde/algo-tape/dsp/tape/eq"
	"github.com/cwbudde/algo-tape/dsp/tape/shield"
)

// Machine selects the modeled tape deck.
type Machine int

const (
	// MachineAmpex is the ATR-102 mastering deck: 432 kHz bias, low
	// distortion, odd-dominant harmonics.
	MachineAmpex Machine = iota
	// MachineStuder is the A820 multitrack deck: 153.6 kHz bias, more
	// saturation character, even-dominant harmonics.
	MachineStuder
)

// String returns the machine name.
func (m Machine) String() string {
	if m == MachineStuder {
		return "studer"
	}

	return "ampex"
}

// Formula selects the modeled magnetic tape coating.
type Formula int

const (
	// FormulaGP9 models Quantegy GP9: clean, high output level, steep
	// distortion onset.
	FormulaGP9 Formula = iota
	// FormulaSM900 models EMTEC SM900: warmer, lower output level,
	// more gradual distortion.
	FormulaSM900
)

// String returns the formula name.
func (f Formula) String() string {
	if f == FormulaSM900 {
		return "sm900"
	}

	return "gp9"
}

// Constants is the per-configuration (machine x formula) constant set.
// The saturation values are empirically fit against measured THD
// targets at the 0 VU reference level; they parameterize the curve's
// functional form and are not derived analytically.
type Constants struct {
	// Level-scaled cubic saturation: effective a3 = SatA3 * env^SatPower.
	SatA3    float64
	SatPower float64

	// DCBias shifts the cubic's operating point to generate even
	// harmonics (even/odd ratio control).
	DCBias float64

	// LowLevelScale is the residual a3 fraction at very low envelope
	// levels; the reduction is concentrated below the low threshold by
	// a squared curve.
	LowLevelScale float64

	// HighKnee and HighLevelScale flatten the curve at hot levels:
	// above the knee the effective a3 is pulled toward HighLevelScale
	// of its nominal value.
	HighKnee       float64
	HighLevelScale float64

	// HysteresisBlend is the wet fraction of the hysteresis core mixed
	// into the shielded path. Higher bias frequency means more
	// linearization and therefore a smaller blend.
	HysteresisBlend float64

	// DispersiveHz is the base corner of the phase-smear allpass bank.
	DispersiveHz float64

	// ChannelDelayMicros is the inter-channel azimuth offset.
	ChannelDelayMicros float64
}

// configTable holds the four operating configurations, indexed by
// [Machine][Formula]. Values are fit offline against the published THD
// curves (0.09% / 0.15% / 0.18% / 0.30% at 0 VU).
var configTable = [2][2]Constants{
	MachineAmpex: {
		FormulaGP9: {
			SatA3:              0.0033,
			SatPower:           0.29,
			DCBias:             0.075,
			LowLevelScale:      0.79,
			HighKnee:           1.0,
			HighLevelScale:     0.85,
			HysteresisBlend:    0.007,
			DispersiveHz:       10000.0,
			ChannelDelayMicros: 8.0,
		},
		FormulaSM900: {
			SatA3:              0.0051,
			SatPower:           0.29,
			DCBias:             0.085,
			LowLevelScale:      0.79,
			HighKnee:           1.0,
			HighLevelScale:     0.85,
			HysteresisBlend:    0.007,
			DispersiveHz:       10000.0,
			ChannelDelayMicros: 8.0,
		},
	},
	MachineStuder: {
		FormulaGP9: {
			SatA3:              0.0047,
			SatPower:           0.45,
			DCBias:             0.18,
			LowLevelScale:      0.53,
			HighKnee:           1.0,
			HighLevelScale:     0.75,
			HysteresisBlend:    0.013,
			DispersiveHz:       2800.0,
			ChannelDelayMicros: 12.0,
		},
		FormulaSM900: {
			SatA3:              0.0077,
			SatPower:           0.45,
			DCBias:             0.19,
			LowLevelScale:      0.53,
			HighKnee:           1.0,
			HighLevelScale:     0.75,
			HysteresisBlend:    0.013,
			DispersiveHz:       2800.0,
			ChannelDelayMicros: 12.0,
		},
	},
}

// ConfigConstants returns the constant set for a machine and formula.
func ConfigConstants(machine Machine, formula Formula) Constants {
	m := 0
	if machine == MachineStuder {
		m = 1
	}

	f := 0
	if formula == FormulaSM900 {
		f = 1
	}

	return configTable[m][f]
}

func shieldParams(machine Machine) shield.Params {
	if machine == MachineStuder {
		return shield.Studer()
	}

	return shield.Ampex()
}

func eqMachine(machine Machine) eq.Machine {
	if machine == MachineStuder {
		return eq.Studer
	}

	return eq.Ampex
}
