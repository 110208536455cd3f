package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		value, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-2, 0, 1, 0},
		{2, 0, 1, 1},
		{0.5, 1, 0, 0.5}, // swapped bounds
		{-1, -0.5, 0.5, -0.5},
	}

	for _, c := range cases {
		if got := Clamp(c.value, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%g, %g, %g) = %g, want %g", c.value, c.lo, c.hi, got, c.want)
		}
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Error("values within eps should compare equal")
	}

	if NearlyEqual(1.0, 1.1, 1e-12) {
		t.Error("values outside eps should not compare equal")
	}

	if !NearlyEqual(1e9, 1e9*(1+1e-13), 1e-12) {
		t.Error("large values should compare relatively")
	}
}

func TestFlushDenormals(t *testing.T) {
	if got := FlushDenormals(1e-35); got != 0 {
		t.Errorf("FlushDenormals(1e-35) = %g, want 0", got)
	}

	if got := FlushDenormals(1e-6); got != 1e-6 {
		t.Errorf("FlushDenormals(1e-6) = %g, want 1e-6", got)
	}

	if got := FlushDenormals(-1e-35); got != 0 {
		t.Errorf("FlushDenormals(-1e-35) = %g, want 0", got)
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(0) || !IsFinite(-1e300) {
		t.Error("finite values reported non-finite")
	}

	if IsFinite(math.NaN()) || IsFinite(math.Inf(1)) || IsFinite(math.Inf(-1)) {
		t.Error("non-finite values reported finite")
	}
}

func TestDBConversionsRoundTrip(t *testing.T) {
	for _, db := range []float64{-60, -20, -6, 0, 6, 20} {
		lin := DBToLinear(db)
		if got := LinearToDB(lin); math.Abs(got-db) > 1e-12 {
			t.Errorf("round trip %g dB: got %g", db, got)
		}
	}

	if !math.IsInf(LinearToDB(0), -1) {
		t.Error("LinearToDB(0) should be -Inf")
	}

	if !math.IsNaN(LinearToDB(-1)) {
		t.Error("LinearToDB(-1) should be NaN")
	}
}
