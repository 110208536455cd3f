// Package thd measures total harmonic distortion of a time-domain
// signal. The saturation engine's calibration and regression tests use
// it to verify distortion levels against published tape targets.
package thd

import (
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-tape/dsp/window"
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
)

// Config holds the analysis parameters. Zero values select sensible
// defaults: Hann window, 20 Hz to 20 kHz band, auto-detected
// fundamental, capture width from the window's main-lobe half width.
type Config struct {
	SampleRate      float64
	FFTSize         int
	FundamentalFreq float64
	RangeLowerFreq  float64
	RangeUpperFreq  float64
	CaptureBins     int
	MaxHarmonics    int
	WindowType      window.Type
}

// Result holds the distortion metrics. Ratios are relative to the
// fundamental level (0.01 = 1%).
//
//nolint:revive
type Result struct {
	FundamentalFreq  float64
	FundamentalLevel float64
	THD              float64
	THDN             float64
	THD_dB           float64
	OddHD            float64
	EvenHD           float64
	Harmonics        []float64
}

// AnalyzeSignal windows the signal, transforms it, and evaluates the
// harmonic series against the fundamental.
func AnalyzeSignal(signal []float64, cfg Config) Result {
	if len(signal) == 0 {
		return Result{}
	}

	cfg = normalizeConfig(cfg)

	fftSize := cfg.FFTSize
	if fftSize <= 0 {
		fftSize = nextPowerOf2(len(signal))
	}

	if fftSize <= 1 {
		return Result{}
	}

	coeffs := window.Generate(cfg.WindowType, len(signal))

	inData := make([]complex128, fftSize)
	for i := range signal {
		inData[i] = complex(signal[i]*coeffs[i], 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, inData); err != nil {
		return Result{}
	}

	cfg.FFTSize = fftSize
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(fftSize)
	}

	binCount := fftSize/2 + 1
	magnitude := make([]float64, binCount)
	for i := range magnitude {
		magnitude[i] = math.Hypot(real(out[i]), imag(out[i]))
	}

	return calculate(magnitude, cfg)
}

//nolint:cyclop
func calculate(magnitude []float64, cfg Config) Result {
	maxBin := len(magnitude) - 1
	if maxBin < 1 {
		return Result{}
	}

	binHz := cfg.SampleRate / float64(cfg.FFTSize)

	lowerBin := clampInt(int(math.Round(cfg.RangeLowerFreq/binHz)), 1, maxBin)
	upperBin := clampInt(int(math.Round(cfg.RangeUpperFreq/binHz)), lowerBin, maxBin)

	fundamentalBin := findFundamentalBin(magnitude, lowerBin, upperBin, binHz, cfg.FundamentalFreq)

	captureBins := cfg.CaptureBins
	if captureBins <= 0 {
		captureBins = window.FirstMinimumBins(cfg.WindowType)
	}

	// Capture regions of adjacent harmonics must not overlap.
	if captureBins*2 > fundamentalBin {
		captureBins = fundamentalBin / 2
	}

	fundamentalLevel := binValue(magnitude, fundamentalBin, captureBins)
	if fundamentalLevel <= 0 {
		return Result{FundamentalFreq: float64(fundamentalBin) * binHz}
	}

	thdAbs := 0.0
	oddAbs := 0.0
	evenAbs := 0.0
	harmonics := make([]float64, 0, 8)

	for k := 2; ; k++ {
		if cfg.MaxHarmonics > 0 && k-1 > cfg.MaxHarmonics {
			break
		}

		bin := k * fundamentalBin
		if bin > upperBin {
			break
		}

		value := binValue(magnitude, bin, captureBins)

		thdAbs += value
		if k%2 == 0 {
			evenAbs += value
		} else {
			oddAbs += value
		}

		harmonics = append(harmonics, value/fundamentalLevel)
	}

	totalAbs := 0.0
	for i := lowerBin; i <= upperBin; i++ {
		totalAbs += magnitude[i]
	}

	thdnAbs := totalAbs - fundamentalLevel
	if thdnAbs < 0 {
		thdnAbs = 0
	}

	thd := thdAbs / fundamentalLevel

	return Result{
		FundamentalFreq:  float64(fundamentalBin) * binHz,
		FundamentalLevel: fundamentalLevel,
		THD:              thd,
		THDN:             thdnAbs / fundamentalLevel,
		THD_dB:           ratioToDB(thd),
		OddHD:            oddAbs / fundamentalLevel,
		EvenHD:           evenAbs / fundamentalLevel,
		Harmonics:        harmonics,
	}
}

func findFundamentalBin(magnitude []float64, lowerBin, upperBin int, binHz, fundamentalFreq float64) int {
	if fundamentalFreq > 0 {
		return clampInt(int(math.Round(fundamentalFreq/binHz)), lowerBin, upperBin)
	}

	bestBin := lowerBin
	bestVal := -1.0

	for i := lowerBin; i <= upperBin; i++ {
		if magnitude[i] > bestVal {
			bestVal = magnitude[i]
			bestBin = i
		}
	}

	return bestBin
}

// binValue sums magnitude over a capture region around bin to collect
// the full window-smeared component.
func binValue(magnitude []float64, bin, captureBins int) float64 {
	if bin < 0 || bin >= len(magnitude) {
		return 0
	}

	lo := bin - captureBins
	if lo < 0 {
		lo = 0
	}

	hi := bin + captureBins
	if hi >= len(magnitude) {
		hi = len(magnitude) - 1
	}

	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += magnitude[i]
	}

	return sum
}

func normalizeConfig(cfg Config) Config {
	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}

	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = defaultRangeUpperHz
	}

	if cfg.RangeUpperFreq < cfg.RangeLowerFreq {
		cfg.RangeUpperFreq = cfg.RangeLowerFreq
	}

	if cfg.WindowType == 0 && cfg.CaptureBins <= 0 {
		cfg.WindowType = window.TypeHann
	}

	return cfg
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}

	if val > hi {
		return hi
	}

	return val
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
