package thd

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-tape/internal/testutil"
)

// sampleRate equals the FFT length so every integer test frequency
// lands exactly on a bin and leakage stays out of the tolerances.
const sampleRate = 16384.0

func TestPureSineNearZeroTHD(t *testing.T) {
	signal := testutil.DeterministicSine(1000, sampleRate, 0.5, 16384)

	res := AnalyzeSignal(signal, Config{
		SampleRate:      sampleRate,
		FundamentalFreq: 1000,
	})

	if res.THD > 1e-4 {
		t.Errorf("pure sine THD = %g, want < 1e-4", res.THD)
	}

	if math.Abs(res.FundamentalFreq-1000) > 1.5 {
		t.Errorf("fundamental detected at %g Hz, want near 1000", res.FundamentalFreq)
	}
}

func TestKnownHarmonicMix(t *testing.T) {
	// Fundamental plus 1% second and 0.5% third harmonic. THD here is
	// the amplitude-sum convention: 1.5% total.
	n := 16384
	signal := make([]float64, n)

	for i := range signal {
		ph := 2 * math.Pi * 1000 * float64(i) / sampleRate
		signal[i] = math.Sin(ph) + 0.01*math.Sin(2*ph) + 0.005*math.Sin(3*ph)
	}

	res := AnalyzeSignal(signal, Config{
		SampleRate:      sampleRate,
		FundamentalFreq: 1000,
	})

	if math.Abs(res.THD-0.015) > 0.001 {
		t.Errorf("THD = %g, want about 0.015", res.THD)
	}

	if math.Abs(res.EvenHD-0.010) > 0.001 {
		t.Errorf("EvenHD = %g, want about 0.010", res.EvenHD)
	}

	if math.Abs(res.OddHD-0.005) > 0.0005 {
		t.Errorf("OddHD = %g, want about 0.005", res.OddHD)
	}

	if len(res.Harmonics) < 2 {
		t.Fatalf("got %d harmonic entries, want at least 2", len(res.Harmonics))
	}
}

func TestAutoDetectFundamental(t *testing.T) {
	signal := testutil.DeterministicSine(3000, sampleRate, 0.3, 8192)

	res := AnalyzeSignal(signal, Config{SampleRate: sampleRate})

	if math.Abs(res.FundamentalFreq-3000) > 2.5 {
		t.Errorf("detected %g Hz, want near 3000", res.FundamentalFreq)
	}
}

func TestMaxHarmonicsLimit(t *testing.T) {
	n := 16384
	signal := make([]float64, n)

	for i := range signal {
		ph := 2 * math.Pi * 1000 * float64(i) / sampleRate
		signal[i] = math.Sin(ph) + 0.01*math.Sin(2*ph) + 0.01*math.Sin(3*ph) + 0.01*math.Sin(4*ph)
	}

	res := AnalyzeSignal(signal, Config{
		SampleRate:      sampleRate,
		FundamentalFreq: 1000,
		MaxHarmonics:    2,
	})

	if len(res.Harmonics) != 2 {
		t.Fatalf("got %d harmonics with MaxHarmonics=2", len(res.Harmonics))
	}

	if math.Abs(res.THD-0.02) > 0.002 {
		t.Errorf("THD = %g, want about 0.02 (first two harmonics only)", res.THD)
	}
}

func TestEmptySignal(t *testing.T) {
	res := AnalyzeSignal(nil, Config{SampleRate: sampleRate})
	if res.THD != 0 || res.FundamentalLevel != 0 {
		t.Errorf("empty signal should yield zero result, got %+v", res)
	}
}

func TestTHDdBConsistent(t *testing.T) {
	n := 16384
	signal := make([]float64, n)

	for i := range signal {
		ph := 2 * math.Pi * 1000 * float64(i) / sampleRate
		signal[i] = math.Sin(ph) + 0.01*math.Sin(3*ph)
	}

	res := AnalyzeSignal(signal, Config{
		SampleRate:      sampleRate,
		FundamentalFreq: 1000,
	})

	want := 20 * math.Log10(res.THD)
	if math.Abs(res.THD_dB-want) > 1e-9 {
		t.Errorf("THD_dB = %g, want %g", res.THD_dB, want)
	}
}
