package buffer

import "errors"

// ErrInvalidSize reports a non-positive frame size.
var ErrInvalidSize = errors.New("buffer: frame size must be > 0")

// Accumulator reassembles arbitrarily sized sample chunks into frames
// of a fixed size. It holds at most one partial frame between calls and
// never allocates after construction.
type Accumulator struct {
	size    int
	pending []float64
}

// NewAccumulator returns an accumulator emitting frames of size samples.
func NewAccumulator(size int) (*Accumulator, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	return &Accumulator{
		size:    size,
		pending: make([]float64, 0, size),
	}, nil
}

// Push consumes samples and calls emit once per completed frame, in
// order. The slice passed to emit is only valid during the call: it
// aliases either the accumulator's internal storage or the caller's
// samples, and both are reused afterwards. emit must not be nil.
func (a *Accumulator) Push(samples []float64, emit func(block []float64)) {
	for len(samples) > 0 {
		// Whole frames pass through without copying when nothing is
		// pending.
		if len(a.pending) == 0 && len(samples) >= a.size {
			emit(samples[:a.size])
			samples = samples[a.size:]
			continue
		}

		n := copy(a.pending[len(a.pending):a.size], samples)
		a.pending = a.pending[:len(a.pending)+n]
		samples = samples[n:]

		if len(a.pending) == a.size {
			emit(a.pending)
			a.pending = a.pending[:0]
		}
	}
}

// Size returns the frame size in samples.
func (a *Accumulator) Size() int {
	return a.size
}

// Pending returns the number of samples held back for the next frame.
func (a *Accumulator) Pending() int {
	return len(a.pending)
}

// Reset discards any partially assembled frame.
func (a *Accumulator) Reset() {
	a.pending = a.pending[:0]
}
