// Package window provides the window functions used by spectral
// measurements.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic selects the periodic (FFT) form instead of the symmetric one.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Cosine-sum coefficients, evaluated as sum of c[k]*cos(k*2*pi*x).
var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		x := samplePosition(i, length, cfg.periodic)
		out[i] = evalWindow(t, x)
	}

	return out
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	coeffs := Generate(t, len(buf), opts...)
	vecmath.MulBlockInPlace(buf, coeffs)
}

// Hann returns Hann window coefficients.
func Hann(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeHann, size, opts...), validateLength(size)
}

// Hamming returns Hamming window coefficients.
func Hamming(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeHamming, size, opts...), validateLength(size)
}

// Blackman returns Blackman window coefficients.
func Blackman(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeBlackman, size, opts...), validateLength(size)
}

// ApplyCoefficients multiplies samples with coefficients and returns a new slice.
func ApplyCoefficients(samples, coeffs []float64) ([]float64, error) {
	if len(samples) != len(coeffs) {
		return nil, errMismatchedLength
	}

	out := make([]float64, len(samples))
	vecmath.MulBlock(out, samples, coeffs)

	return out, nil
}

func evalWindow(t Type, x float64) float64 {
	switch t {
	case TypeRectangular:
		return 1
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
