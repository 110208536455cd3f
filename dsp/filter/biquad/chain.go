package biquad

// Chain is an ordered cascade of biquad sections processed in series.
// The machine equalizer and the shielding cascade are chains whose
// stage order is fixed per configuration.
type Chain struct {
	sections []Section
	gain     float64
}

// NewChain creates a cascade from one or more coefficient sets.
// Each Coefficients value becomes one Section in the cascade.
func NewChain(coeffs []Coefficients) *Chain {
	c := &Chain{
		sections: make([]Section, len(coeffs)),
		gain:     1,
	}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}

	return c
}

// ProcessSample cascades input through all sections in order.
// If gain != 1, the input is scaled before the first section.
func (c *Chain) ProcessSample(x float64) float64 {
	x *= c.gain
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// Reset clears all section states.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// NumSections returns the number of biquad sections.
func (c *Chain) NumSections() int {
	return len(c.sections)
}

// Gain returns the input gain applied before cascading.
func (c *Chain) Gain() float64 { return c.gain }

// SetGain updates the input gain applied before cascading.
func (c *Chain) SetGain(g float64) { c.gain = g }

// DCGain returns the cascade gain at z=1, the product of the section
// DC gains and the input gain.
func (c *Chain) DCGain() float64 {
	g := c.gain
	for i := range c.sections {
		g *= c.sections[i].Coefficients.DCGain()
	}

	return g
}

// UpdateCoefficients replaces the filter coefficients.
// If the number of sections is unchanged the delay-line state of each
// section is preserved, avoiding the output discontinuity that would
// result from starting a fresh chain with zero state. If the section
// count changes the sections are replaced and state starts at zero.
func (c *Chain) UpdateCoefficients(coeffs []Coefficients) {
	if len(coeffs) == len(c.sections) {
		for i := range c.sections {
			c.sections[i].Coefficients = coeffs[i]
		}

		return
	}

	c.sections = make([]Section, len(coeffs))
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}
}

// Section returns a pointer to the i-th section for inspection.
func (c *Chain) Section(i int) *Section {
	return &c.sections[i]
}
