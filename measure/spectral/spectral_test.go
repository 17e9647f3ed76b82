package spectral

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-tuner/dsp/window"
	"github.com/cwbudde/algo-tuner/internal/testutil"
)

func TestPeakFrequency_PureSine(t *testing.T) {
	tests := []struct {
		name       string
		freq       float64
		sampleRate float64
		length     int
		tolHz      float64
	}{
		{"A4_44k1", 440, 44100, 2048, 3},
		{"A3_44k1", 220, 44100, 2048, 3},
		{"1kHz_48k", 1000, 48000, 4096, 2},
		{"lowE_44k1", 82.41, 44100, 4096, 2},
		{"2kHz_96k", 2000, 96000, 2048, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := testutil.DeterministicSine(tt.freq, tt.sampleRate, 0.5, tt.length)

			got, err := PeakFrequency(sig, tt.sampleRate, Config{})
			if err != nil {
				t.Fatalf("PeakFrequency() error = %v", err)
			}

			if math.Abs(got-tt.freq) > tt.tolHz {
				t.Errorf("PeakFrequency() = %.2f Hz, want %.2f Hz within %.1f Hz", got, tt.freq, tt.tolHz)
			}
		})
	}
}

func TestPeakFrequency_ZeroPadsOddLengths(t *testing.T) {
	sig := testutil.DeterministicSine(440, 44100, 0.5, 1500)

	got, err := PeakFrequency(sig, 44100, Config{})
	if err != nil {
		t.Fatalf("PeakFrequency() error = %v", err)
	}

	if math.Abs(got-440) > 5 {
		t.Errorf("PeakFrequency() = %.2f Hz, want 440 Hz within 5 Hz", got)
	}
}

func TestPeakFrequency_BandSelectsComponent(t *testing.T) {
	low := testutil.DeterministicSine(200, 44100, 0.8, 4096)
	high := testutil.DeterministicSine(3000, 44100, 0.3, 4096)

	sig := make([]float64, len(low))
	for i := range sig {
		sig[i] = low[i] + high[i]
	}

	tests := []struct {
		name string
		cfg  Config
		want float64
	}{
		{"full_band_prefers_stronger", Config{}, 200},
		{"upper_bound_keeps_low_tone", Config{MaxFrequency: 1000}, 200},
		{"lower_bound_reveals_high_tone", Config{MinFrequency: 1000}, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PeakFrequency(sig, 44100, tt.cfg)
			if err != nil {
				t.Fatalf("PeakFrequency() error = %v", err)
			}

			if math.Abs(got-tt.want) > 5 {
				t.Errorf("PeakFrequency() = %.2f Hz, want %.2f Hz within 5 Hz", got, tt.want)
			}
		})
	}
}

func TestPeakFrequency_Errors(t *testing.T) {
	sine := testutil.DeterministicSine(440, 44100, 0.5, 2048)

	tests := []struct {
		name       string
		samples    []float64
		sampleRate float64
		cfg        Config
		wantErr    error
	}{
		{"empty_signal", nil, 44100, Config{}, ErrEmptySignal},
		{"zero_rate", sine, 0, Config{}, ErrInvalidSampleRate},
		{"nan_rate", sine, math.NaN(), Config{}, ErrInvalidSampleRate},
		{"band_above_nyquist", sine, 44100, Config{MinFrequency: 30000}, ErrEmptyBand},
		{"silence", make([]float64, 2048), 44100, Config{}, ErrNoPeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PeakFrequency(tt.samples, tt.sampleRate, tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("PeakFrequency() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzerIsReusable(t *testing.T) {
	a := NewAnalyzer(Config{})
	sig := testutil.DeterministicSine(440, 44100, 0.5, 2048)

	first, err := a.PeakFrequency(sig, 44100)
	if err != nil {
		t.Fatalf("first PeakFrequency() error = %v", err)
	}

	second, err := a.PeakFrequency(sig, 44100)
	if err != nil {
		t.Fatalf("second PeakFrequency() error = %v", err)
	}

	if first != second {
		t.Errorf("repeated analysis differs: %.6f vs %.6f", first, second)
	}
}

func TestNormalizeConfig(t *testing.T) {
	cfg := normalizeConfig(Config{})
	if cfg.WindowType != window.TypeHann {
		t.Errorf("default WindowType = %v, want %v", cfg.WindowType, window.TypeHann)
	}

	// TypeRectangular is the window.Type zero value and normalizes to
	// Hann like an unset field.
	cfg = normalizeConfig(Config{WindowType: window.TypeRectangular})
	if cfg.WindowType != window.TypeHann {
		t.Errorf("rectangular WindowType = %v, want %v", cfg.WindowType, window.TypeHann)
	}

	cfg = normalizeConfig(Config{WindowType: window.TypeBlackman})
	if cfg.WindowType != window.TypeBlackman {
		t.Errorf("explicit WindowType = %v, want %v", cfg.WindowType, window.TypeBlackman)
	}

	cfg = normalizeConfig(Config{FFTSize: -4, MinFrequency: -1, MaxFrequency: -1})
	if cfg.FFTSize != 0 || cfg.MinFrequency != 0 || cfg.MaxFrequency != 0 {
		t.Errorf("negative values not cleared: %+v", cfg)
	}

	cfg = normalizeConfig(Config{MinFrequency: 500, MaxFrequency: 100})
	if cfg.MaxFrequency != 500 {
		t.Errorf("inverted band MaxFrequency = %g, want 500", cfg.MaxFrequency)
	}
}

func TestProbe_MeasuresTargetEnergy(t *testing.T) {
	sig := testutil.DeterministicSine(440, 44100, 0.5, 2048)

	onTarget, err := Energy(sig, 440, 44100)
	if err != nil {
		t.Fatalf("Energy(440) error = %v", err)
	}

	offTarget, err := Energy(sig, 550, 44100)
	if err != nil {
		t.Fatalf("Energy(550) error = %v", err)
	}

	if onTarget <= 50*offTarget {
		t.Errorf("on-target energy %.2f not dominant over off-target %.2f", onTarget, offTarget)
	}
}

func TestProbe_SeparatesOctaves(t *testing.T) {
	sig := testutil.DeterministicSine(220, 44100, 0.5, 2048)

	fundamental, err := Energy(sig, 220, 44100)
	if err != nil {
		t.Fatalf("Energy(220) error = %v", err)
	}

	octave, err := Energy(sig, 440, 44100)
	if err != nil {
		t.Fatalf("Energy(440) error = %v", err)
	}

	if fundamental <= 50*octave {
		t.Errorf("fundamental energy %.2f not dominant over octave %.2f", fundamental, octave)
	}
}

func TestProbe_AccumulatesAcrossBlocks(t *testing.T) {
	sig := testutil.DeterministicSine(440, 44100, 0.5, 2048)

	whole, err := NewProbe(440, 44100)
	if err != nil {
		t.Fatalf("NewProbe() error = %v", err)
	}

	whole.Feed(sig)

	split, err := NewProbe(440, 44100)
	if err != nil {
		t.Fatalf("NewProbe() error = %v", err)
	}

	split.Feed(sig[:1024])
	split.Feed(sig[1024:])

	if whole.Power() != split.Power() {
		t.Errorf("split feeding changed power: %.6f vs %.6f", whole.Power(), split.Power())
	}
}

func TestProbe_Reset(t *testing.T) {
	p, err := NewProbe(440, 44100)
	if err != nil {
		t.Fatalf("NewProbe() error = %v", err)
	}

	p.Feed(testutil.DeterministicSine(440, 44100, 0.5, 2048))

	if p.Power() == 0 {
		t.Fatal("expected non-zero power before reset")
	}

	p.Reset()

	if p.Power() != 0 {
		t.Errorf("Power() after Reset = %g, want 0", p.Power())
	}

	if p.Level() != 0 {
		t.Errorf("Level() after Reset = %g, want 0", p.Level())
	}
}

func TestProbe_LevelIsRootOfPower(t *testing.T) {
	p, err := NewProbe(440, 44100)
	if err != nil {
		t.Fatalf("NewProbe() error = %v", err)
	}

	p.Feed(testutil.DeterministicSine(440, 44100, 0.5, 2048))

	want := math.Sqrt(p.Power())
	if math.Abs(p.Level()-want) > 1e-9 {
		t.Errorf("Level() = %g, want %g", p.Level(), want)
	}
}

func TestNewProbe_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		freq       float64
		sampleRate float64
		wantErr    error
	}{
		{"zero_rate", 440, 0, ErrInvalidSampleRate},
		{"negative_rate", 440, -44100, ErrInvalidSampleRate},
		{"nan_rate", 440, math.NaN(), ErrInvalidSampleRate},
		{"negative_freq", -1, 44100, ErrInvalidFrequency},
		{"above_nyquist", 30000, 44100, ErrInvalidFrequency},
		{"nan_freq", math.NaN(), 44100, ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProbe(tt.freq, tt.sampleRate)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewProbe(%g, %g) error = %v, want %v", tt.freq, tt.sampleRate, err, tt.wantErr)
			}
		})
	}
}

func BenchmarkPeakFrequency(b *testing.B) {
	sig := testutil.DeterministicSine(440, 44100, 0.5, 2048)
	a := NewAnalyzer(Config{})

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := a.PeakFrequency(sig, 44100); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProbeFeed(b *testing.B) {
	sig := testutil.DeterministicSine(440, 44100, 0.5, 2048)

	p, err := NewProbe(440, 44100)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(sig) * 8))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		p.Feed(sig)
	}
}
