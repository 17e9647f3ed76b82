// Package notes models the twelve-tone chromatic scale and maps
// frequencies onto it.
//
// The pitch class enumeration is rooted at C so that note indices line
// up with the usual keyboard layout; A sits at index 9. Nearest converts
// a measured frequency into the closest note, its octave, and the signed
// deviation in cents relative to a configurable A4 reference.
package notes

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Count is the number of pitch classes per octave.
const Count = 12

const (
	centsPerSemitone   = 100.0
	semitonesPerOctave = 12.0

	// A4 sits in octave 4 at pitch class index 9.
	referenceOctave = 4
)

// Note identifies a chromatic pitch class, rooted at C.
type Note int

// Pitch classes in keyboard order.
const (
	C Note = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// ErrUnknownNote is returned by Parse for unrecognized note names.
var ErrUnknownNote = errors.New("notes: unknown note name")

var noteNames = [Count]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// flatAliases maps flat spellings onto their sharp equivalents.
var flatAliases = map[string]Note{
	"Db": CSharp,
	"Eb": DSharp,
	"Gb": FSharp,
	"Ab": GSharp,
	"Bb": ASharp,
}

// Valid reports whether n is one of the twelve pitch classes.
func (n Note) Valid() bool {
	return n >= C && n < Note(Count)
}

// String returns the sharp-spelled note name ("C", "C#", ... "B").
func (n Note) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Note(%d)", int(n))
	}

	return noteNames[n]
}

// Parse converts a note name to a Note. It accepts sharp spellings
// ("C#", "f#") and the common flat aliases ("Db", "bb"), ignoring case
// and surrounding whitespace.
func Parse(s string) (Note, error) {
	name := canonicalName(s)

	for i, n := range noteNames {
		if n == name {
			return Note(i), nil
		}
	}

	if n, ok := flatAliases[name]; ok {
		return n, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownNote, s)
}

// canonicalName uppercases the note letter and lowercases a trailing
// flat marker, so "bb" becomes "Bb" and "c#" becomes "C#".
func canonicalName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	letter := strings.ToUpper(s[:1])
	rest := s[1:]
	if strings.EqualFold(rest, "b") {
		rest = "b"
	}

	return letter + rest
}

// Frequency returns the equal-tempered frequency of the note in the
// given octave for the given A4 reference, e.g. A.Frequency(4, 440)
// returns 440.
func (n Note) Frequency(octave int, a4 float64) float64 {
	semitones := float64((octave-referenceOctave)*Count + int(n) - int(A))
	return a4 * math.Pow(2, semitones/semitonesPerOctave)
}

// Mapping locates a frequency on the chromatic scale.
type Mapping struct {
	Note     Note
	Octave   int
	RawCents float64 // signed deviation from the named note, rounded to whole cents
}

// Nearest maps a frequency onto the closest equal-tempered note relative
// to the A4 reference. RawCents is the remaining deviation in [-50, 50].
//
// Both freqHz and a4 must be finite and positive; callers validate at
// their boundary.
func Nearest(freqHz, a4 float64) Mapping {
	semitones := semitonesPerOctave * math.Log2(freqHz/a4)
	rounded := math.Round(semitones)

	idx := (int(rounded) + int(A)) % Count
	if idx < 0 {
		idx += Count
	}

	return Mapping{
		Note:     Note(idx),
		Octave:   referenceOctave + int(math.Floor((rounded+float64(A))/Count)),
		RawCents: math.Round(centsPerSemitone * (semitones - rounded)),
	}
}
