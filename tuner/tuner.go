package tuner

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/frame"
	"github.com/cwbudde/algo-tuner/measure/pitch"
	"github.com/cwbudde/algo-tuner/music/notes"
	"github.com/cwbudde/algo-tuner/music/temperament"
)

const (
	// DefaultA4 is the standard concert pitch in Hz.
	DefaultA4 = 440.0

	// DefaultMinFrequency and DefaultMaxFrequency bound the accepted
	// detection band in Hz. The band covers everything from a bass low B
	// down-tuned a step up to the top of a piccolo's range.
	DefaultMinFrequency = 30.0
	DefaultMaxFrequency = 2500.0
)

// ErrInvalidA4 is returned when settings carry a non-positive or
// non-finite reference pitch.
var ErrInvalidA4 = errors.New("tuner: reference pitch must be positive and finite")

// Settings holds the musician-facing tuning parameters.
type Settings struct {
	// A4 is the reference pitch in Hz.
	A4 float64

	// Temperament holds per-note cent offsets relative to equal
	// temperament. The zero value is equal temperament.
	Temperament temperament.Temperament
}

// DefaultSettings returns equal temperament at standard concert pitch.
func DefaultSettings() Settings {
	return Settings{A4: DefaultA4}
}

// Validate reports whether the settings can drive a tuner.
func (s Settings) Validate() error {
	if !core.IsFinitePositive(s.A4) {
		return fmt.Errorf("%w: %g", ErrInvalidA4, s.A4)
	}

	return nil
}

// Reading is one displayable tuning measurement.
type Reading struct {
	// Frequency is the detected fundamental in Hz.
	Frequency float64

	// Note and Octave name the nearest note under the active settings.
	Note   notes.Note
	Octave int

	// RawCents is the deviation from the equal-tempered note, rounded
	// to whole cents.
	RawCents float64

	// AdjustedCents is RawCents minus the active temperament offset for
	// the note. This is the value a display should center on.
	AdjustedCents float64
}

// String renders the reading the way a tuner display would.
func (r Reading) String() string {
	return fmt.Sprintf("%s%d %+.1f cents", r.Note, r.Octave, r.AdjustedCents)
}

// Update is the outcome of processing one frame.
//
// Exactly one of three states holds: OK carries a fresh Reading,
// Dropped means a pitch was detected outside the accepted band and the
// previous display should stand, and neither means the frame was
// unpitched and the display should clear.
type Update struct {
	// Estimate is the raw detector output for the frame.
	Estimate pitch.Result

	// Reading is valid only when OK is true.
	Reading Reading

	OK      bool
	Dropped bool
}

// Config holds detection parameters fixed at construction.
type Config struct {
	// MinFrequency and MaxFrequency bound accepted detections in Hz.
	// Zero values select the defaults.
	MinFrequency float64
	MaxFrequency float64

	// Detector configures the pitch estimator.
	Detector pitch.Config
}

// Tuner converts frames into readings under swappable settings.
type Tuner struct {
	cfg       Config
	estimator *pitch.Estimator

	settings atomic.Pointer[Settings]
	latest   atomic.Pointer[Reading]
}

// New creates a tuner with the given configuration and settings.
func New(cfg Config, settings Settings) (*Tuner, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	cfg = normalizeConfig(cfg)

	t := &Tuner{
		cfg:       cfg,
		estimator: pitch.NewEstimator(cfg.Detector),
	}
	t.settings.Store(&settings)

	return t, nil
}

// Process runs one frame through the pipeline and returns the outcome.
// An in-band detection replaces the latest reading, an unpitched frame
// clears it, and an out-of-band detection leaves it untouched.
func (t *Tuner) Process(f frame.Frame) Update {
	est := t.estimator.Estimate(f)
	upd := Update{Estimate: est}

	if !est.Pitched {
		t.latest.Store(nil)
		return upd
	}

	if est.Frequency < t.cfg.MinFrequency || est.Frequency > t.cfg.MaxFrequency {
		upd.Dropped = true
		return upd
	}

	s := t.settings.Load()
	m := notes.Nearest(est.Frequency, s.A4)

	r := Reading{
		Frequency:     est.Frequency,
		Note:          m.Note,
		Octave:        m.Octave,
		RawCents:      m.RawCents,
		AdjustedCents: m.RawCents - s.Temperament.Get(m.Note),
	}

	upd.Reading = r
	upd.OK = true
	t.latest.Store(&r)

	return upd
}

// Apply validates and installs new settings. Frames processed after
// Apply returns see the new values.
func (t *Tuner) Apply(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	t.settings.Store(&s)

	return nil
}

// Settings returns a snapshot of the active settings.
func (t *Tuner) Settings() Settings {
	return *t.settings.Load()
}

// Latest returns the most recent in-band reading, if any.
func (t *Tuner) Latest() (Reading, bool) {
	r := t.latest.Load()
	if r == nil {
		return Reading{}, false
	}

	return *r, true
}

func normalizeConfig(cfg Config) Config {
	if cfg.MinFrequency <= 0 {
		cfg.MinFrequency = DefaultMinFrequency
	}

	if cfg.MaxFrequency <= 0 {
		cfg.MaxFrequency = DefaultMaxFrequency
	}

	if cfg.MaxFrequency < cfg.MinFrequency {
		cfg.MaxFrequency = cfg.MinFrequency
	}

	return cfg
}
