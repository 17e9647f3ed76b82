// Package preset persists named tuning configurations.
//
// A preset bundles a reference pitch with a temperament so a musician
// can switch between, say, modern concert pitch and a baroque well
// temperament without re-entering twelve offsets. Presets live in a
// single YAML document; see Decode for the format.
package preset

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/music/notes"
	"github.com/cwbudde/algo-tuner/music/temperament"
)

var (
	// ErrNotFound is returned by Load and Delete for unknown names.
	ErrNotFound = errors.New("preset: preset not found")

	// ErrEmptyName is returned for presets without a usable name.
	ErrEmptyName = errors.New("preset: name must not be empty")

	// ErrInvalidA4 is returned for non-positive or non-finite reference
	// pitches.
	ErrInvalidA4 = errors.New("preset: reference pitch must be positive and finite")

	// ErrInvalidOffset is returned for non-finite temperament offsets.
	ErrInvalidOffset = errors.New("preset: cent offsets must be finite")

	// ErrDuplicateName is returned when a document names a preset twice.
	ErrDuplicateName = errors.New("preset: duplicate preset name")
)

// Preset is a named tuning configuration.
type Preset struct {
	// Name identifies the preset. Comparison is exact; "Equal" and
	// "equal" are different presets.
	Name string

	// A4 is the reference pitch in Hz.
	A4 float64

	// Temperament holds the per-note cent offsets.
	Temperament temperament.Temperament
}

// Validate reports whether the preset can be stored and later drive a
// tuner.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}

	if !core.IsFinitePositive(p.A4) {
		return fmt.Errorf("%w: %g", ErrInvalidA4, p.A4)
	}

	for n, cents := range p.Temperament.Offsets() {
		if math.IsNaN(cents) || math.IsInf(cents, 0) {
			return fmt.Errorf("%w: %s is %g", ErrInvalidOffset, n, cents)
		}
	}

	return nil
}

// Builtins returns the presets every installation starts with: equal
// temperament at concert pitch and a Werckmeister III well temperament,
// both relative to A4 = 440 Hz.
func Builtins() []Preset {
	werckmeister := temperament.New(map[notes.Note]float64{
		notes.CSharp: -9.78,
		notes.D:      -7.82,
		notes.DSharp: -5.87,
		notes.E:      -9.78,
		notes.F:      -1.96,
		notes.FSharp: -11.73,
		notes.G:      -3.91,
		notes.GSharp: -7.82,
		notes.A:      -11.73,
		notes.ASharp: -3.91,
		notes.B:      -7.82,
	})

	return []Preset{
		{Name: "equal", A4: 440},
		{Name: "werckmeister3", A4: 440, Temperament: werckmeister},
	}
}
