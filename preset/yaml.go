package preset

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-tuner/music/notes"
	"github.com/cwbudde/algo-tuner/music/temperament"
)

// presetsFile is the on-disk document shape.
//
// Example:
//
//	presets:
//	  - name: equal
//	    a4: 440
//	  - name: werckmeister3
//	    a4: 440
//	    offsets:
//	      C#: -9.78
//	      D: -7.82
type presetsFile struct {
	Presets []presetDoc `yaml:"presets"`
}

type presetDoc struct {
	Name    string             `yaml:"name"`
	A4      float64            `yaml:"a4"`
	Offsets map[string]float64 `yaml:"offsets,omitempty"`
}

// Decode parses a preset document from r and validates every preset.
// Useful in tests where documents are constructed from string literals.
func Decode(r io.Reader) ([]Preset, error) {
	var file presetsFile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos

	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, fmt.Errorf("preset: decode yaml: %w", err)
	}

	presets := make([]Preset, 0, len(file.Presets))
	seen := make(map[string]struct{}, len(file.Presets))

	for i, doc := range file.Presets {
		p, err := docToPreset(doc)
		if err != nil {
			return nil, fmt.Errorf("preset: presets[%d]: %w", i, err)
		}

		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}

		seen[p.Name] = struct{}{}
		presets = append(presets, p)
	}

	return presets, nil
}

// Encode writes presets to w as a single YAML document.
func Encode(w io.Writer, presets []Preset) error {
	file := presetsFile{Presets: make([]presetDoc, 0, len(presets))}

	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return err
		}

		file.Presets = append(file.Presets, presetToDoc(p))
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()

	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("preset: encode yaml: %w", err)
	}

	return nil
}

func presetToDoc(p Preset) presetDoc {
	doc := presetDoc{Name: p.Name, A4: p.A4}

	for n, cents := range p.Temperament.Offsets() {
		if cents == 0 {
			continue
		}

		if doc.Offsets == nil {
			doc.Offsets = make(map[string]float64)
		}

		doc.Offsets[n.String()] = cents
	}

	return doc
}

func docToPreset(doc presetDoc) (Preset, error) {
	offsets := make(map[notes.Note]float64, len(doc.Offsets))

	for name, cents := range doc.Offsets {
		n, err := notes.Parse(name)
		if err != nil {
			return Preset{}, err
		}

		offsets[n] = cents
	}

	p := Preset{
		Name:        doc.Name,
		A4:          doc.A4,
		Temperament: temperament.New(offsets),
	}

	if err := p.Validate(); err != nil {
		return Preset{}, err
	}

	return p, nil
}
