// Package temperament models per-note tuning offsets in cents.
package temperament

import "github.com/cwbudde/algo-tuner/music/notes"

// Temperament assigns a cent offset to each of the twelve pitch classes.
// The zero value is equal temperament (every offset zero). Temperament is
// a plain value type, so a copy is a complete, independent snapshot of
// all twelve offsets.
type Temperament struct {
	offsets [notes.Count]float64
}

// Equal returns the equal-tempered tuning, with all offsets at zero.
func Equal() Temperament {
	return Temperament{}
}

// New builds a temperament from the given offsets. Notes absent from m
// stay at zero; invalid note keys are ignored.
func New(m map[notes.Note]float64) Temperament {
	var t Temperament
	t.ReplaceAll(m)
	return t
}

// Get returns the offset in cents for the note. Out-of-range notes
// always map to zero.
func (t Temperament) Get(n notes.Note) float64 {
	if !n.Valid() {
		return 0
	}

	return t.offsets[n]
}

// Set assigns the offset in cents for one note, leaving the other
// eleven untouched. Out-of-range notes are ignored.
func (t *Temperament) Set(n notes.Note, cents float64) {
	if !n.Valid() {
		return
	}

	t.offsets[n] = cents
}

// ReplaceAll resets every offset to zero and then applies the listed
// notes, so the result reflects exactly m regardless of prior state.
func (t *Temperament) ReplaceAll(m map[notes.Note]float64) {
	t.offsets = [notes.Count]float64{}
	for n, cents := range m {
		if n.Valid() {
			t.offsets[n] = cents
		}
	}
}

// Offsets returns all twelve offsets keyed by note.
func (t Temperament) Offsets() map[notes.Note]float64 {
	out := make(map[notes.Note]float64, notes.Count)
	for i := range t.offsets {
		out[notes.Note(i)] = t.offsets[i]
	}

	return out
}

// IsEqual reports whether every offset is zero.
func (t Temperament) IsEqual() bool {
	return t == Temperament{}
}
