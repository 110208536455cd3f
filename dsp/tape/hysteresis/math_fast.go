//go:build fastmath

package hysteresis

import (
	"github.com/meko-christian/algo-approx"
)

// tanh64 evaluates tanh via the identity tanh(x) = 1 - 2/(e^2x + 1)
// using the fast exponential. Beyond |x| = 20 the function has fully
// saturated in float64.
func tanh64(x float64) float64 {
	if x > 20 {
		return 1
	}

	if x < -20 {
		return -1
	}

	return 1 - 2/(approx.FastExp(2*x)+1)
}
