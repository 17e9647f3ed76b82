package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

// ErrInvalidFrequency is returned when a probe frequency falls outside
// [0, Nyquist].
var ErrInvalidFrequency = errors.New("spectral: probe frequency must lie between 0 and Nyquist")

// Probe accumulates the signal energy at a single target frequency
// using the Goertzel recurrence. It answers a narrower question than
// PeakFrequency: how much of a block's energy sits at one exact
// frequency, for example a candidate note versus its octave neighbors.
//
// A Probe is bound to one frequency and sample rate for its lifetime.
// Feed may be called repeatedly to accumulate across blocks; Reset
// clears the accumulated state.
type Probe struct {
	coeff float64
	s0    float64
	s1    float64
}

// NewProbe creates a probe for the given frequency in Hz.
func NewProbe(freqHz, sampleRate float64) (*Probe, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSampleRate, sampleRate)
	}

	if freqHz < 0 || freqHz > sampleRate/2 || math.IsNaN(freqHz) {
		return nil, fmt.Errorf("%w: %g Hz at %g Hz sample rate", ErrInvalidFrequency, freqHz, sampleRate)
	}

	return &Probe{
		coeff: 2 * math.Cos(2*math.Pi*freqHz/sampleRate),
	}, nil
}

// Feed folds a block of samples into the probe state.
func (p *Probe) Feed(samples []float64) {
	s0, s1 := p.s0, p.s1

	for _, x := range samples {
		s0, s1 = x+p.coeff*s0-s1, s0
	}

	p.s0, p.s1 = s0, s1
}

// Power returns the accumulated squared magnitude at the probe frequency.
func (p *Probe) Power() float64 {
	return p.s0*p.s0 + p.s1*p.s1 - p.coeff*p.s0*p.s1
}

// Level returns the accumulated magnitude at the probe frequency.
func (p *Probe) Level() float64 {
	pw := p.Power()
	if pw <= 0 {
		return 0
	}

	return math.Sqrt(pw)
}

// Reset clears the accumulated state so the probe can process a fresh
// signal.
func (p *Probe) Reset() {
	p.s0 = 0
	p.s1 = 0
}

// Energy is a one-shot measurement of the power at freqHz over a single
// block.
func Energy(samples []float64, freqHz, sampleRate float64) (float64, error) {
	p, err := NewProbe(freqHz, sampleRate)
	if err != nil {
		return 0, err
	}

	p.Feed(samples)

	return p.Power(), nil
}
