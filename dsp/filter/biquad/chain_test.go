package biquad

import (
	"math"
	"testing"
)

func testChainCoeffs() []Coefficients {
	return []Coefficients{
		{B0: 0.5, B1: 0.5},
		{B0: 0.9, B1: -0.1, A1: -0.2},
	}
}

func TestChainMatchesManualCascade(t *testing.T) {
	coeffs := testChainCoeffs()
	chain := NewChain(coeffs)
	s1 := NewSection(coeffs[0])
	s2 := NewSection(coeffs[1])

	for i := 0; i < 256; i++ {
		x := math.Sin(2 * math.Pi * float64(i) / 37)
		want := s2.ProcessSample(s1.ProcessSample(x))
		if got := chain.ProcessSample(x); math.Abs(got-want) > 1e-15 {
			t.Fatalf("sample %d: got %g, want %g", i, got, want)
		}
	}
}

func TestChainGainAppliedBeforeCascade(t *testing.T) {
	chain := NewChain([]Coefficients{Identity()})
	chain.SetGain(0.25)

	if got := chain.ProcessSample(2); got != 0.5 {
		t.Fatalf("got %g, want 0.5", got)
	}

	if chain.Gain() != 0.25 {
		t.Fatalf("Gain() = %g, want 0.25", chain.Gain())
	}
}

func TestChainDCGainIsProductOfSections(t *testing.T) {
	coeffs := testChainCoeffs()
	chain := NewChain(coeffs)

	want := coeffs[0].DCGain() * coeffs[1].DCGain()
	if got := chain.DCGain(); math.Abs(got-want) > 1e-15 {
		t.Fatalf("DCGain = %g, want %g", got, want)
	}
}

func TestChainUpdateCoefficientsPreservesState(t *testing.T) {
	coeffs := testChainCoeffs()
	chain := NewChain(coeffs)

	for i := 0; i < 16; i++ {
		chain.ProcessSample(1)
	}

	before := chain.Section(0).State()
	chain.UpdateCoefficients(coeffs)
	after := chain.Section(0).State()

	if before != after {
		t.Fatalf("state changed on same-size update: %v vs %v", before, after)
	}

	chain.UpdateCoefficients(append(coeffs, Identity()))
	if chain.NumSections() != 3 {
		t.Fatalf("NumSections = %d, want 3", chain.NumSections())
	}

	if got := chain.Section(2).State(); got != [2]float64{} {
		t.Fatalf("new sections should start with zero state, got %v", got)
	}
}

func TestChainResetClearsAllSections(t *testing.T) {
	chain := NewChain(testChainCoeffs())

	out1 := make([]float64, 64)
	for i := range out1 {
		out1[i] = chain.ProcessSample(1)
	}

	chain.Reset()

	for i := range out1 {
		if got := chain.ProcessSample(1); got != out1[i] {
			t.Fatalf("sample %d differs after reset", i)
		}
	}
}
