package pitch

import (
	"math"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/frame"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultSilenceRMS    = 0.01
	defaultTrimThreshold = 0.2
)

// Config holds pitch estimation parameters.
type Config struct {
	// SilenceRMS is the RMS level below which a frame counts as silent.
	SilenceRMS float64
	// TrimThreshold is the absolute amplitude below which a sample counts
	// as a zero crossing when trimming frame edges.
	TrimThreshold float64
}

// Result holds the outcome of one estimation pass.
//
// Frequency and Lag are only meaningful when Pitched is true. RMS is
// reported for every frame, pitched or not.
type Result struct {
	Frequency float64 // estimated fundamental in Hz
	Lag       int     // estimated period in samples
	RMS       float64 // frame level
	Pitched   bool
}

// Estimator detects the fundamental frequency of monophonic frames by
// time-domain autocorrelation. It keeps no per-frame state and is safe
// for concurrent use.
type Estimator struct {
	cfg Config
}

// NewEstimator creates a pitch estimator, applying defaults for unset
// config fields.
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{cfg: normalizeConfig(cfg)}
}

// Estimate is a one-shot estimation pass with the given config.
func Estimate(f frame.Frame, cfg Config) Result {
	return NewEstimator(cfg).Estimate(f)
}

// Estimate runs one detection pass over the frame. It never fails:
// silent, degenerate, and too-short frames (including the zero Frame)
// all come back unpitched.
func (e *Estimator) Estimate(f frame.Frame) Result {
	samples := f.Samples()
	rms := rmsLevel(samples)

	res := Result{RMS: rms}
	if len(samples) < 2 || rms < e.cfg.SilenceRMS {
		return res
	}

	buf := trimEdges(samples, e.cfg.TrimThreshold)

	n := len(buf)
	if n < 2 {
		return res
	}

	c := autocorrelate(buf)

	// Skip the zero-lag peak: advance to the first lag where the
	// correlation stops decreasing.
	d := 0
	for d < n-1 && c[d] > c[d+1] {
		d++
	}

	if d == n-1 {
		// Monotonic decay all the way out carries no periodicity.
		return res
	}

	maxpos := d
	for i := d + 1; i < n; i++ {
		if c[i] > c[maxpos] {
			maxpos = i
		}
	}

	if maxpos <= 0 {
		return res
	}

	res.Frequency = f.SampleRate() / float64(maxpos)
	res.Lag = maxpos
	res.Pitched = true

	return res
}

// trimEdges cuts the frame down to the span between the first
// low-amplitude sample from the start and the first one from the end,
// discarding attack transients and edge effects that would smear the
// correlation. Both scans stay within their half of the frame; if no
// sample drops below the threshold the bounds fall back to the full
// frame.
func trimEdges(samples []float64, threshold float64) []float64 {
	n := len(samples)
	r1, r2 := 0, n-1

	for i := 0; i < n/2; i++ {
		if math.Abs(samples[i]) < threshold {
			r1 = i
			break
		}
	}

	for i := n - 1; i > n/2; i-- {
		if math.Abs(samples[i]) < threshold {
			r2 = i
			break
		}
	}

	return samples[r1:r2]
}

// autocorrelate computes the positive-lag autocorrelation of buf:
// c[i] = sum over j of buf[j]*buf[j+i].
func autocorrelate(buf []float64) []float64 {
	n := len(buf)

	c := make([]float64, n)
	for i := range c {
		c[i] = vecmath.DotProduct(buf[:n-i], buf[i:])
	}

	return c
}

func rmsLevel(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	return math.Sqrt(vecmath.DotProduct(samples, samples) / float64(len(samples)))
}

func normalizeConfig(cfg Config) Config {
	if !core.IsFinitePositive(cfg.SilenceRMS) {
		cfg.SilenceRMS = defaultSilenceRMS
	}

	if !core.IsFinitePositive(cfg.TrimThreshold) {
		cfg.TrimThreshold = defaultTrimThreshold
	}

	return cfg
}
