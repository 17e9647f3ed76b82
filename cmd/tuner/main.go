// Command tuner analyzes audio for musical pitch and prints, frame by
// frame, how far each detected note sits from its tempered target.
//
// Usage:
//
//	tuner [flags]
//
// Without -wav it synthesizes a reference tone and analyzes that, which
// is handy for sanity checks and demos. Temperaments and reference
// pitches can be stored as named presets in a YAML file.
//
// Examples:
//
//	tuner -tone 196 -pluck
//	tuner -wav take.wav -verify
//	tuner -wav cello.wav -preset werckmeister3
//	tuner -a4 432 -offset A=-11.73 -save-preset baroque432
//	tuner -presets
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/measure/level"
	"github.com/cwbudde/algo-tuner/measure/pitch"
	"github.com/cwbudde/algo-tuner/measure/spectral"
	"github.com/cwbudde/algo-tuner/music/notes"
	"github.com/cwbudde/algo-tuner/music/temperament"
	"github.com/cwbudde/algo-tuner/preset"
	"github.com/cwbudde/algo-tuner/tuner"
)

func main() {
	os.Exit(run())
}

func run() int {
	wavPath := flag.String("wav", "", "analyze this WAV file instead of a synthesized tone")
	toneHz := flag.Float64("tone", tuner.DefaultA4, "frequency of the synthesized tone in Hz")
	pluckTone := flag.Bool("pluck", false, "synthesize a plucked-string tone instead of a pure sine")
	durSec := flag.Float64("dur", 2, "duration of the synthesized tone in seconds")
	rate := flag.Float64("rate", 44100, "sample rate of the synthesized tone in Hz")
	block := flag.Int("block", 2048, "analysis frame size in samples")
	a4 := flag.Float64("a4", tuner.DefaultA4, "reference pitch for A4 in Hz")
	presetName := flag.String("preset", "", "load reference pitch and temperament from this preset")
	listPresets := flag.Bool("presets", false, "list available presets and exit")
	saveName := flag.String("save-preset", "", "save the current -a4/-offset settings under this name and exit")
	storePath := flag.String("store", "presets.yaml", "preset store location")
	gateDB := flag.Float64("gate", -40, "silence gate in dBFS; quieter frames read as unpitched")
	trim := flag.Float64("trim", 0.2, "edge trim threshold as an absolute sample value")
	minHz := flag.Float64("min", tuner.DefaultMinFrequency, "lowest accepted pitch in Hz")
	maxHz := flag.Float64("max", tuner.DefaultMaxFrequency, "highest accepted pitch in Hz")
	verify := flag.Bool("verify", false, "add an FFT peak column as a cross-check on each reading")
	verbose := flag.Bool("v", false, "enable debug logging")

	offsets := make(map[notes.Note]float64)
	flag.Func("offset", "temperament offset as NOTE=CENTS, repeatable (e.g. -offset A=-11.73)", func(s string) error {
		name, centsStr, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("want NOTE=CENTS, got %q", s)
		}
		n, err := notes.Parse(name)
		if err != nil {
			return err
		}
		cents, err := strconv.ParseFloat(strings.TrimSpace(centsStr), 64)
		if err != nil {
			return fmt.Errorf("parse cents %q: %w", centsStr, err)
		}
		offsets[n] = core.Clamp(cents, -50, 50)
		return nil
	})

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tuner [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Analyzes audio for musical pitch and prints one reading per frame.\n")
		fmt.Fprintf(os.Stderr, "Without -wav it synthesizes a reference tone and analyzes that.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tuner -tone 196 -pluck\n")
		fmt.Fprintf(os.Stderr, "  tuner -wav take.wav -verify\n")
		fmt.Fprintf(os.Stderr, "  tuner -wav cello.wav -preset werckmeister3\n")
		fmt.Fprintf(os.Stderr, "  tuner -a4 432 -offset A=-11.73 -save-preset baroque432\n")
		fmt.Fprintf(os.Stderr, "  tuner -presets\n")
	}
	flag.Parse()

	setupLogger(*verbose)

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := preset.NewFileStore(*storePath)

	if *listPresets {
		if err := printPresets(store); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	settings, err := resolveSettings(store, *presetName, *a4, explicit["a4"], offsets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if *saveName != "" {
		p := preset.Preset{Name: *saveName, A4: settings.A4, Temperament: settings.Temperament}
		if err := store.Save(p); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Printf("saved preset %q to %s\n", p.Name, store.Path())
		return 0
	}

	samples, sampleRate, err := loadSamples(*wavPath, *toneHz, *durSec, *rate, *pluckTone, *block)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	cfg := tuner.Config{
		MinFrequency: *minHz,
		MaxFrequency: *maxHz,
		Detector: pitch.Config{
			SilenceRMS:    core.DBToLinear(*gateDB),
			TrimThreshold: *trim,
		},
	}

	t, err := tuner.New(cfg, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	src, err := tuner.NewSliceSource(samples, sampleRate, *block)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	slog.Debug("analysis starting",
		"frames", len(samples) / *block,
		"block", *block,
		"rate", sampleRate,
		"a4", settings.A4,
	)

	opt := analysisOptions{
		verify:     *verify,
		block:      *block,
		sampleRate: sampleRate,
		samples:    samples,
		minHz:      *minHz,
		maxHz:      *maxHz,
	}
	if err := analyze(ctx, t, src, opt); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("analysis failed", "err", err)
		return 1
	}

	fmt.Printf("\nlevel: %s\n", level.Measure(samples))
	if r, ok := t.Latest(); ok {
		fmt.Printf("final: %s (%.2f Hz)\n", r, r.Frequency)
	} else {
		fmt.Println("no pitch detected")
	}
	return 0
}

func setupLogger(verbose bool) {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

// resolveSettings layers the command line over an optional preset: the
// preset supplies the base, an explicit -a4 wins over its reference
// pitch, and -offset entries override individual notes.
func resolveSettings(store preset.Store, name string, a4 float64, a4Explicit bool, offsets map[notes.Note]float64) (tuner.Settings, error) {
	settings := tuner.DefaultSettings()

	if name != "" {
		p, err := findPreset(store, name)
		if err != nil {
			return tuner.Settings{}, err
		}

		settings.A4 = p.A4
		settings.Temperament = p.Temperament
		slog.Debug("preset loaded", "name", p.Name, "a4", p.A4)
	}

	if name == "" || a4Explicit {
		settings.A4 = a4
	}

	for n, cents := range offsets {
		settings.Temperament.Set(n, cents)
	}

	if err := settings.Validate(); err != nil {
		return tuner.Settings{}, err
	}

	return settings, nil
}

// findPreset looks in the store first so a stored preset can shadow a
// builtin of the same name.
func findPreset(store preset.Store, name string) (preset.Preset, error) {
	p, err := store.Load(name)
	if err == nil {
		return p, nil
	}

	if !errors.Is(err, preset.ErrNotFound) {
		return preset.Preset{}, err
	}

	for _, b := range preset.Builtins() {
		if b.Name == name {
			return b, nil
		}
	}

	return preset.Preset{}, fmt.Errorf("%w: %q (use -presets to list)", preset.ErrNotFound, name)
}

func printPresets(store preset.Store) error {
	stored, err := store.List()
	if err != nil {
		return err
	}

	type row struct {
		preset.Preset
		source string
	}

	rows := make([]row, 0, len(stored)+2)
	seen := make(map[string]bool, len(stored))
	for _, p := range stored {
		rows = append(rows, row{p, "stored"})
		seen[p.Name] = true
	}
	for _, b := range preset.Builtins() {
		if !seen[b.Name] {
			rows = append(rows, row{b, "builtin"})
		}
	}

	slices.SortFunc(rows, func(a, b row) int {
		return strings.Compare(a.Name, b.Name)
	})

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tA4 [Hz]\tTemperament\tSource\n")
	fmt.Fprintf(tw, "----\t-------\t-----------\t------\n")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\n", r.Name, r.A4, describeTemperament(r.Temperament), r.source)
	}
	return tw.Flush()
}

func describeTemperament(t temperament.Temperament) string {
	if t.IsEqual() {
		return "equal"
	}

	tempered := 0
	for _, cents := range t.Offsets() {
		if cents != 0 {
			tempered++
		}
	}
	return fmt.Sprintf("%d tempered notes", tempered)
}

type analysisOptions struct {
	verify     bool
	block      int
	sampleRate float64
	samples    []float64
	minHz      float64
	maxHz      float64
}

// analyze runs the capture loop and the printer concurrently: the tuner
// feeds updates into a channel while the printer formats them into a
// table. A signal cancels the context and drains cleanly.
func analyze(ctx context.Context, t *tuner.Tuner, src tuner.Source, opt analysisOptions) error {
	updates := make(chan tuner.Update, 16)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(updates)
		return t.Run(egCtx, src, func(u tuner.Update) {
			// Selecting on the group context keeps a failed printer
			// from wedging the capture loop.
			select {
			case updates <- u:
			case <-egCtx.Done():
			}
		})
	})

	eg.Go(func() error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		header := "Time [s]\tNote\tCents\tFreq [Hz]\tLevel [dBFS]\tState\n"
		dashes := "--------\t----\t-----\t---------\t------------\t-----\n"
		if opt.verify {
			header = "Time [s]\tNote\tCents\tFreq [Hz]\tLevel [dBFS]\tState\tFFT [Hz]\n"
			dashes = "--------\t----\t-----\t---------\t------------\t-----\t--------\n"
		}
		if _, err := fmt.Fprintf(tw, "%s%s", header, dashes); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		idx := 0
		for u := range updates {
			if err := printRow(tw, u, idx, opt); err != nil {
				return fmt.Errorf("write row %d: %w", idx, err)
			}
			idx++
		}

		slog.Debug("analysis drained", "frames", idx)
		return tw.Flush()
	})

	return eg.Wait()
}

func printRow(tw *tabwriter.Writer, u tuner.Update, idx int, opt analysisOptions) error {
	timeSec := float64(idx*opt.block) / opt.sampleRate

	note, cents, freq, state := "-", "-", "-", "unpitched"
	switch {
	case u.OK:
		r := u.Reading
		note = fmt.Sprintf("%s%d", r.Note, r.Octave)
		cents = fmt.Sprintf("%+.1f", r.AdjustedCents)
		freq = fmt.Sprintf("%.2f", r.Frequency)
		state = "ok"
	case u.Dropped:
		freq = fmt.Sprintf("%.2f", u.Estimate.Frequency)
		state = "out-of-band"
	}

	lvl := "-"
	if u.Estimate.RMS > 0 {
		lvl = fmt.Sprintf("%.1f", core.LinearToDB(u.Estimate.RMS))
	}

	if !opt.verify {
		_, err := fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%s\t%s\n", timeSec, note, cents, freq, lvl, state)
		return err
	}

	fftCol := "-"
	if peak, err := verifyPeak(u, idx, opt); err == nil {
		fftCol = fmt.Sprintf("%.1f", peak)
	}

	_, err := fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%s\t%s\t%s\n", timeSec, note, cents, freq, lvl, state, fftCol)
	return err
}

// verifyPeak re-measures the frame with a windowed FFT. Frame idx of the
// source aliases samples[idx*block : (idx+1)*block], so the printer can
// reach the raw audio without the update carrying it.
func verifyPeak(u tuner.Update, idx int, opt analysisOptions) (float64, error) {
	if !u.Estimate.Pitched {
		return 0, errors.New("unpitched")
	}

	start := idx * opt.block
	frameSamples := opt.samples[start : start+opt.block]

	return spectral.PeakFrequency(frameSamples, opt.sampleRate, spectral.Config{
		MinFrequency: opt.minHz,
		MaxFrequency: opt.maxHz,
	})
}
