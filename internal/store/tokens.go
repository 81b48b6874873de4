package store

import (
	"fmt"
	"sort"
)

// TokenRecord holds one stored credential. The value is an opaque string;
// basic-auth values are expected to be pre-encoded user:password pairs.
type TokenRecord struct {
	ID     string `json:"id"`
	Spec   string `json:"spec,omitempty"`   // optional spec name this token belongs to
	Type   string `json:"type"`             // bearer|api-key|basic
	Header string `json:"header,omitempty"` // custom header for api-key tokens
	Value  string `json:"value"`
}

// TokenStore holds credentials keyed by ID.
type TokenStore struct {
	file *jsonFile
}

// Set stores or replaces the token with rec.ID.
func (s *TokenStore) Set(rec TokenRecord) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	records := map[string]TokenRecord{}
	if err := s.file.load(&records); err != nil {
		return err
	}
	records[rec.ID] = rec
	return s.file.save(records)
}

// Get returns the token with the given ID.
func (s *TokenStore) Get(id string) (TokenRecord, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	records := map[string]TokenRecord{}
	if err := s.file.load(&records); err != nil {
		return TokenRecord{}, err
	}
	rec, ok := records[id]
	if !ok {
		return TokenRecord{}, fmt.Errorf("token %q: %w", id, ErrNotFound)
	}
	return rec, nil
}

// List returns all tokens sorted by ID.
func (s *TokenStore) List() ([]TokenRecord, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	records := map[string]TokenRecord{}
	if err := s.file.load(&records); err != nil {
		return nil, err
	}
	out := make([]TokenRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Remove deletes the token with the given ID.
func (s *TokenStore) Remove(id string) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	records := map[string]TokenRecord{}
	if err := s.file.load(&records); err != nil {
		return err
	}
	if _, ok := records[id]; !ok {
		return fmt.Errorf("token %q: %w", id, ErrNotFound)
	}
	delete(records, id)
	return s.file.save(records)
}
