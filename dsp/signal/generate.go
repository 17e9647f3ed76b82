package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

// pluckPartials approximates a plucked string's harmonic rolloff.
// Pluck scales by the reciprocal of their sum, so the tone peaks near
// the requested amplitude.
var pluckPartials = []float64{1, 0.55, 0.3, 0.15}

const (
	// pluckDecayRate is the fundamental's exponential decay per second;
	// harmonic k decays k times faster.
	pluckDecayRate = 3.0

	pluckAttackTime = 0.01
	pluckAttackGain = 0.8
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return &Generator{
		cfg:  core.ApplyProcessorOptions(opts...),
		seed: 1,
	}
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the current random seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// SetSeed changes the random seed for subsequent noise generation.
func (g *Generator) SetSeed(seed int64) {
	g.seed = seed
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sine sample rate must be > 0: %f", g.cfg.SampleRate)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// Harmonic generates a fundamental with overtones. partials[k] scales
// harmonic k+1, so {1, 0.5} yields the fundamental plus a half-strength
// octave. The output is amplitude times the raw partial sum; callers
// pick partials with the resulting peak in mind.
func (g *Generator) Harmonic(freqHz, amplitude float64, samples int, partials []float64) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("harmonic samples must be > 0: %d", samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("harmonic sample rate must be > 0: %f", g.cfg.SampleRate)
	}
	if freqHz <= 0 {
		return nil, fmt.Errorf("harmonic frequency must be > 0: %f", freqHz)
	}
	if len(partials) == 0 {
		return nil, fmt.Errorf("harmonic partials must not be empty")
	}
	out := make([]float64, samples)
	for k, a := range partials {
		if a == 0 {
			continue
		}
		step := 2 * math.Pi * freqHz * float64(k+1) / g.cfg.SampleRate
		for i := range out {
			out[i] += amplitude * a * math.Sin(step*float64(i))
		}
	}
	return out, nil
}

// Pluck synthesizes a plucked-string-like tone: a short noisy attack
// transient followed by harmonics decaying exponentially, upper
// partials fading faster than the fundamental. The transient is
// deterministic under the generator seed.
func (g *Generator) Pluck(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("pluck samples must be > 0: %d", samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("pluck sample rate must be > 0: %f", g.cfg.SampleRate)
	}
	if freqHz <= 0 {
		return nil, fmt.Errorf("pluck frequency must be > 0: %f", freqHz)
	}

	var partialSum float64
	for _, a := range pluckPartials {
		partialSum += a
	}
	scale := amplitude / partialSum

	out := make([]float64, samples)
	for i := range out {
		tSec := float64(i) / g.cfg.SampleRate
		v := 0.0
		for k, a := range pluckPartials {
			h := float64(k + 1)
			v += a * math.Exp(-pluckDecayRate*h*tSec) * math.Sin(2*math.Pi*freqHz*h*tSec)
		}
		out[i] = scale * v
	}

	rng := rand.New(rand.NewSource(g.seed))
	attackLen := int(pluckAttackTime * g.cfg.SampleRate)
	if attackLen > samples {
		attackLen = samples
	}
	for i := 0; i < attackLen; i++ {
		fade := 1 - float64(i)/float64(attackLen)
		out[i] += amplitude * pluckAttackGain * fade * (rng.Float64()*2 - 1)
	}

	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		av := math.Abs(v)
		if av > maxAbs {
			maxAbs = av
		}
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	vecmath.ScaleBlock(out, data, targetPeak/maxAbs)
	return out, nil
}
