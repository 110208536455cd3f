// Package biquad implements second-order IIR filter sections in Direct
// Form II Transposed, plus ordered cascades of sections.
//
// Every filter-based stage of the tape engine (bias shielding, machine
// equalizer, DC blocking) is built from these sections. Coefficients are
// designed externally (see dsp/filter/design); a Section only stores the
// normalized transfer function and two delay registers.
package biquad
