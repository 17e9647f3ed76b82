// Package frame carries fixed blocks of audio samples through the
// detection pipeline.
package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

// Errors returned by frame constructors.
var (
	ErrEmptyFrame        = errors.New("frame: samples must not be empty")
	ErrInvalidSampleRate = errors.New("frame: sample rate must be positive and finite")
)

// Frame is one block of time-ordered samples captured at a fixed rate.
// A frame is created once per detection cycle, read by the estimator,
// and discarded; it is never mutated after construction.
//
// The zero Frame is valid downstream input: estimators treat it as an
// unpitched empty block, so a mis-plumbed frame degrades to "no pitch"
// instead of crashing the loop.
type Frame struct {
	samples    []float64
	sampleRate float64
}

// New wraps samples in a Frame without copying. The caller hands the
// slice over for the duration of the detection cycle and must not
// modify it while the frame is in use.
func New(samples []float64, sampleRate float64) (Frame, error) {
	if len(samples) == 0 {
		return Frame{}, ErrEmptyFrame
	}

	if !core.IsFinitePositive(sampleRate) {
		return Frame{}, fmt.Errorf("%w: %g", ErrInvalidSampleRate, sampleRate)
	}

	return Frame{samples: samples, sampleRate: sampleRate}, nil
}

// FromFloat32 widens a 32-bit capture block into a new Frame. Capture
// APIs commonly deliver float32 blocks; the pipeline itself works in
// float64 throughout.
func FromFloat32(samples []float32, sampleRate float64) (Frame, error) {
	if len(samples) == 0 {
		return Frame{}, ErrEmptyFrame
	}

	widened := make([]float64, len(samples))
	for i, v := range samples {
		widened[i] = float64(v)
	}

	return New(widened, sampleRate)
}

// Samples returns the underlying sample slice. Treat it as read-only.
func (f Frame) Samples() []float64 {
	return f.samples
}

// SampleRate returns the capture rate in Hz, or 0 for the zero Frame.
func (f Frame) SampleRate() float64 {
	return f.sampleRate
}

// Len returns the number of samples in the frame.
func (f Frame) Len() int {
	return len(f.samples)
}

// Duration returns the time span the frame covers.
func (f Frame) Duration() time.Duration {
	if f.sampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(f.Len()) / f.sampleRate * float64(time.Second))
}
