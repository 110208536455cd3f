//go:build !fastmath

package hysteresis

import "math"

// tanh64 evaluates the hyperbolic tangent. The default build uses the
// standard library; build with -tags fastmath for an approximation.
func tanh64(x float64) float64 {
	return math.Tanh(x)
}
