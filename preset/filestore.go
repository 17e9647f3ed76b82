package preset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

var _ Store = (*FileStore)(nil)

// FileStore persists presets in a single YAML document on disk.
//
// Every mutation rewrites the whole document through a temp file and
// rename, so a crash mid-write never leaves a truncated document. A
// missing file reads as an empty store.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the YAML document at path.
// The file is created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Save implements [Store.Save].
func (s *FileStore) Save(p Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return err
	}

	replaced := false

	for i := range presets {
		if presets[i].Name == p.Name {
			presets[i] = p
			replaced = true

			break
		}
	}

	if !replaced {
		presets = append(presets, p)
	}

	return s.write(presets)
}

// Load implements [Store.Load].
func (s *FileStore) Load(name string) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return Preset{}, err
	}

	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}

	return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// List implements [Store.List].
func (s *FileStore) List() ([]Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return nil, err
	}

	sortPresets(presets)

	return presets, nil
}

// Delete implements [Store.Delete].
func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return err
	}

	kept := presets[:0]

	for _, p := range presets {
		if p.Name != name {
			kept = append(kept, p)
		}
	}

	if len(kept) == len(presets) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return s.write(kept)
}

func (s *FileStore) read() ([]Preset, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("preset: open %q: %w", s.path, err)
	}
	defer f.Close()

	presets, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("preset: read %q: %w", s.path, err)
	}

	return presets, nil
}

func (s *FileStore) write(presets []Preset) error {
	sortPresets(presets)

	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, ".presets-*.yaml")
	if err != nil {
		return fmt.Errorf("preset: create temp file in %q: %w", dir, err)
	}

	if err := Encode(tmp, presets); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("preset: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("preset: replace %q: %w", s.path, err)
	}

	return nil
}
