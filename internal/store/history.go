package store

import "time"

const (
	// maxHistoryEntries caps the log; older entries fall off the end.
	maxHistoryEntries = 200
	// maxHistoryBody bounds how much response body one entry retains.
	maxHistoryBody = 4096
)

// HistoryEntry records one executed request. Headers are stored masked;
// entries exist for HTTP error responses too, but not for transport-level
// failures (there is no response to record).
type HistoryEntry struct {
	Time       time.Time           `json:"time"`
	Method     string              `json:"method"`
	URL        string              `json:"url"`
	Status     int                 `json:"status"`
	DurationMS int64               `json:"duration_ms"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Body       string              `json:"body,omitempty"`
}

// HistoryStore is the append-only request log, newest first.
type HistoryStore struct {
	file *jsonFile
}

// Append records an entry, truncating oversized bodies and trimming the log
// to its cap.
func (s *HistoryStore) Append(e HistoryEntry) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	var entries []HistoryEntry
	if err := s.file.load(&entries); err != nil {
		return err
	}
	if len(e.Body) > maxHistoryBody {
		e.Body = e.Body[:maxHistoryBody]
	}
	entries = append([]HistoryEntry{e}, entries...)
	if len(entries) > maxHistoryEntries {
		entries = entries[:maxHistoryEntries]
	}
	return s.file.save(entries)
}

// List returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (s *HistoryStore) List(limit int) ([]HistoryEntry, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	var entries []HistoryEntry
	if err := s.file.load(&entries); err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Clear empties the log.
func (s *HistoryStore) Clear() error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	return s.file.save([]HistoryEntry{})
}
