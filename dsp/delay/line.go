// Package delay provides a fixed-size circular delay line.
package delay

import "fmt"

// Line is a circular delay line. The tape engine uses one per second
// channel to realize the inter-channel azimuth offset; the fractional
// part of the delay is handled by a Thiran allpass outside this package.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns the internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample and advances the cursor.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples; Read(1) is the most recently
// written sample. Delays beyond the buffer length wrap.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	readPos := ((d.writePos-delay)%size + size) % size

	return d.buffer[readPos]
}

// Reset clears the buffer and the write cursor.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.writePos = 0
}
