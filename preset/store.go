package preset

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Store persists presets by name.
//
// All implementations must be safe for concurrent use.
type Store interface {
	// Save validates and stores p, replacing any preset with the same
	// name.
	Save(p Preset) error

	// Load returns the named preset. Returns ErrNotFound when absent.
	Load(name string) (Preset, error)

	// List returns all stored presets sorted by name.
	List() ([]Preset, error)

	// Delete removes the named preset. Returns ErrNotFound when absent.
	Delete(name string) error
}

var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe in-memory Store. The zero value is ready to
// use.
type MemStore struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

// NewMemStore returns an initialized MemStore.
func NewMemStore() *MemStore {
	return &MemStore{presets: make(map[string]Preset)}
}

// Save implements [Store.Save].
func (s *MemStore) Save(p Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.presets == nil {
		s.presets = make(map[string]Preset)
	}

	s.presets[p.Name] = p

	return nil
}

// Load implements [Store.Load].
func (s *MemStore) Load(name string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return p, nil
}

// List implements [Store.List].
func (s *MemStore) List() ([]Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		result = append(result, p)
	}

	sortPresets(result)

	return result, nil
}

// Delete implements [Store.Delete].
func (s *MemStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.presets[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	delete(s.presets, name)

	return nil
}

func sortPresets(presets []Preset) {
	slices.SortFunc(presets, func(a, b Preset) int {
		return strings.Compare(a.Name, b.Name)
	})
}
