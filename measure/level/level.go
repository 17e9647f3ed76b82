// Package level measures signal levels the way a capture meter would:
// RMS, peak, crest factor, and DC offset, accumulated in a single pass.
// Meter carries state across blocks so a whole take can be summarized
// without buffering it.
package level

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

// Summary holds the measured levels of a signal.
type Summary struct {
	// Samples is the number of samples measured.
	Samples int

	// DC is the mean sample value.
	DC float64

	// RMS and Peak are linear amplitudes; Crest is Peak/RMS.
	RMS   float64
	Peak  float64
	Crest float64

	// ZeroCrossings counts sign changes, including across block
	// boundaries.
	ZeroCrossings int

	RMSdB   float64
	PeakdB  float64
	CrestdB float64
}

// String renders the summary the way a level display would.
func (s Summary) String() string {
	return fmt.Sprintf("rms %.1f dBFS, peak %.1f dBFS, crest %.1f dB", s.RMSdB, s.PeakdB, s.CrestdB)
}

// CrossingRate returns zero crossings per second at the given sample
// rate. For a pure tone this is about twice its frequency, which makes
// it a cheap sanity check against a pitch reading.
func (s Summary) CrossingRate(sampleRate float64) float64 {
	if s.Samples == 0 || !core.IsFinitePositive(sampleRate) {
		return 0
	}

	return float64(s.ZeroCrossings) * sampleRate / float64(s.Samples)
}

// Meter accumulates level statistics over successive sample blocks.
// The zero value is ready to use.
type Meter struct {
	n         int
	sum       float64
	sumSq     float64
	peak      float64
	crossings int
	last      float64
	primed    bool
}

// NewMeter returns an empty meter.
func NewMeter() *Meter {
	return &Meter{}
}

// Feed accumulates one block of samples.
func (m *Meter) Feed(samples []float64) {
	for _, x := range samples {
		m.sum += x
		m.sumSq += x * x

		if a := math.Abs(x); a > m.peak {
			m.peak = a
		}

		if m.primed && m.last*x < 0 {
			m.crossings++
		}

		m.last = x
		m.primed = true
	}

	m.n += len(samples)
}

// Reset returns the meter to its empty state.
func (m *Meter) Reset() {
	*m = Meter{}
}

// Summary computes the levels accumulated so far. An empty meter
// reports zero linear levels and -Inf decibels.
func (m *Meter) Summary() Summary {
	s := Summary{
		Samples:       m.n,
		ZeroCrossings: m.crossings,
	}

	if m.n > 0 {
		nf := float64(m.n)
		s.DC = m.sum / nf
		s.RMS = math.Sqrt(m.sumSq / nf)
		s.Peak = m.peak
	}

	if s.RMS > 0 {
		s.Crest = s.Peak / s.RMS
	}

	s.RMSdB = core.LinearToDB(s.RMS)
	s.PeakdB = core.LinearToDB(s.Peak)
	s.CrestdB = core.LinearToDB(s.Crest)

	return s
}

// Measure computes the levels of samples in one call.
func Measure(samples []float64) Summary {
	var m Meter
	m.Feed(samples)
	return m.Summary()
}
