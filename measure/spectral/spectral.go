package spectral

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-tuner/dsp/window"
)

var (
	// ErrEmptySignal is returned when the input block contains no samples.
	ErrEmptySignal = errors.New("spectral: signal is empty")

	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("spectral: sample rate must be positive and finite")

	// ErrEmptyBand is returned when the configured frequency band maps to no
	// FFT bins.
	ErrEmptyBand = errors.New("spectral: search band contains no bins")

	// ErrNoPeak is returned when the band carries no energy at all.
	ErrNoPeak = errors.New("spectral: no spectral peak found")
)

// Config holds peak search parameters.
type Config struct {
	// MinFrequency and MaxFrequency bound the search band in Hz. Zero
	// values leave the respective edge open.
	MinFrequency float64
	MaxFrequency float64

	// FFTSize overrides the transform length. Values smaller than the
	// input block are raised to the next power of two that fits; zero
	// selects that size directly.
	FFTSize int

	// WindowType selects the analysis window. The zero value selects
	// Hann; window.TypeRectangular shares the zero value and cannot
	// be selected here.
	WindowType window.Type
}

// Analyzer locates the dominant spectral component of sample blocks.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	cfg = normalizeConfig(cfg)
	return &Analyzer{cfg: cfg}
}

// PeakFrequency is a one-shot peak search with the given configuration.
func PeakFrequency(samples []float64, sampleRate float64, cfg Config) (float64, error) {
	return NewAnalyzer(cfg).PeakFrequency(samples, sampleRate)
}

// PeakFrequency returns the frequency of the strongest component within
// the configured band. The block is windowed, zero-padded to the FFT
// size, transformed, and the peak magnitude bin is refined by fitting a
// parabola through its neighbors.
func (a *Analyzer) PeakFrequency(samples []float64, sampleRate float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptySignal
	}

	if sampleRate <= 0 || math.IsInf(sampleRate, 1) || math.IsNaN(sampleRate) {
		return 0, fmt.Errorf("%w: %g", ErrInvalidSampleRate, sampleRate)
	}

	fftSize := a.cfg.FFTSize
	if fftSize < len(samples) {
		fftSize = nextPowerOf2(len(samples))
	}

	coeffs := window.Generate(a.cfg.WindowType, len(samples))

	inData := make([]complex128, fftSize)
	for i, v := range samples {
		inData[i] = complex(v*coeffs[i], 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0, fmt.Errorf("spectral: create FFT plan: %w", err)
	}

	out := make([]complex128, fftSize)

	if err := plan.Forward(out, inData); err != nil {
		return 0, fmt.Errorf("spectral: forward FFT: %w", err)
	}

	mags := binMagnitudes(out[:fftSize/2+1])

	binHz := sampleRate / float64(fftSize)

	lo, hi, err := a.bandBins(binHz, len(mags)-1)
	if err != nil {
		return 0, err
	}

	peak := lo
	for i := lo + 1; i <= hi; i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}

	if mags[peak] == 0 {
		return 0, ErrNoPeak
	}

	return (float64(peak) + peakOffset(mags, peak)) * binHz, nil
}

// bandBins maps the configured band onto [1, maxBin]. Bin 0 is excluded
// so a DC offset never wins the peak search.
func (a *Analyzer) bandBins(binHz float64, maxBin int) (int, int, error) {
	lo := 1
	if a.cfg.MinFrequency > 0 {
		lo = int(math.Ceil(a.cfg.MinFrequency / binHz))
		if lo < 1 {
			lo = 1
		}
	}

	hi := maxBin
	if a.cfg.MaxFrequency > 0 {
		hi = int(math.Floor(a.cfg.MaxFrequency / binHz))
	}

	if hi > maxBin {
		hi = maxBin
	}

	if lo > hi {
		return 0, 0, fmt.Errorf("%w: %g Hz to %g Hz at %g Hz per bin",
			ErrEmptyBand, a.cfg.MinFrequency, a.cfg.MaxFrequency, binHz)
	}

	return lo, hi, nil
}

// peakOffset fits a parabola through the peak bin and its neighbors and
// returns the sub-bin offset of the vertex, bounded to half a bin.
func peakOffset(mags []float64, peak int) float64 {
	if peak <= 0 || peak >= len(mags)-1 {
		return 0
	}

	left := mags[peak-1]
	center := mags[peak]
	right := mags[peak+1]

	den := left - 2*center + right
	if den == 0 {
		return 0
	}

	offset := 0.5 * (left - right) / den

	return math.Max(-0.5, math.Min(0.5, offset))
}

func binMagnitudes(bins []complex128) []float64 {
	re := make([]float64, len(bins))
	im := make([]float64, len(bins))

	for i, b := range bins {
		re[i] = real(b)
		im[i] = imag(b)
	}

	mags := make([]float64, len(bins))
	vecmath.Magnitude(mags, re, im)

	return mags
}

func normalizeConfig(cfg Config) Config {
	if cfg.WindowType == 0 {
		cfg.WindowType = window.TypeHann
	}

	if cfg.FFTSize < 0 {
		cfg.FFTSize = 0
	}

	if cfg.MinFrequency < 0 {
		cfg.MinFrequency = 0
	}

	if cfg.MaxFrequency < 0 {
		cfg.MaxFrequency = 0
	}

	if cfg.MaxFrequency > 0 && cfg.MaxFrequency < cfg.MinFrequency {
		cfg.MaxFrequency = cfg.MinFrequency
	}

	return cfg
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
