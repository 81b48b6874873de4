package store

import (
	"fmt"
	"sort"
	"time"
)

// SpecRecord is the stored metadata for one registered spec. The spec body
// itself lives in the cache, keyed by Source.
type SpecRecord struct {
	Name    string    `json:"name"`
	Source  string    `json:"source"` // URL or file path
	Title   string    `json:"title"`
	Version string    `json:"version"`
	AddedAt time.Time `json:"added_at"`
}

// SpecStore holds registered spec metadata keyed by name.
type SpecStore struct {
	file *jsonFile
}

// Add registers a new spec. Names are unique; adding an existing name fails
// so a typo cannot silently replace a registration.
func (s *SpecStore) Add(rec SpecRecord) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	records := map[string]SpecRecord{}
	if err := s.file.load(&records); err != nil {
		return err
	}
	if _, exists := records[rec.Name]; exists {
		return fmt.Errorf("spec %q already exists", rec.Name)
	}
	records[rec.Name] = rec
	return s.file.save(records)
}

// Update replaces an existing record, e.g. after a refresh.
func (s *SpecStore) Update(rec SpecRecord) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	records := map[string]SpecRecord{}
	if err := s.file.load(&records); err != nil {
		return err
	}
	if _, exists := records[rec.Name]; !exists {
		return fmt.Errorf("spec %q: %w", rec.Name, ErrNotFound)
	}
	records[rec.Name] = rec
	return s.file.save(records)
}

// Get returns the record for name.
func (s *SpecStore) Get(name string) (SpecRecord, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	records := map[string]SpecRecord{}
	if err := s.file.load(&records); err != nil {
		return SpecRecord{}, err
	}
	rec, ok := records[name]
	if !ok {
		return SpecRecord{}, fmt.Errorf("spec %q: %w", name, ErrNotFound)
	}
	return rec, nil
}

// List returns all records sorted by name.
func (s *SpecStore) List() ([]SpecRecord, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	records := map[string]SpecRecord{}
	if err := s.file.load(&records); err != nil {
		return nil, err
	}
	out := make([]SpecRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Remove deletes the record for name. The caller drops the cached body
// separately; the two writes are not transactional.
func (s *SpecStore) Remove(name string) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	records := map[string]SpecRecord{}
	if err := s.file.load(&records); err != nil {
		return err
	}
	if _, ok := records[name]; !ok {
		return fmt.Errorf("spec %q: %w", name, ErrNotFound)
	}
	delete(records, name)
	return s.file.save(records)
}
