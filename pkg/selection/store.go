// Package selection holds the set of selected records and the bulk
// "select the first K records" operation that fills it.
package selection

import (
	"sync"

	"github.com/Sternrassler/artwork-select/pkg/record"
)

// Snapshot is a read-only copy of the selection in selection order.
type Snapshot struct {
	Records []record.Record `json:"records"`
}

// Len returns the number of selected records.
func (s Snapshot) Len() int {
	return len(s.Records)
}

// IDs returns the selected identifiers in selection order.
func (s Snapshot) IDs() []record.ID {
	ids := make([]record.ID, len(s.Records))
	for i, r := range s.Records {
		ids[i] = r.ID
	}
	return ids
}

// Contains reports whether id is selected.
func (s Snapshot) Contains(id record.ID) bool {
	for _, r := range s.Records {
		if r.ID == id {
			return true
		}
	}
	return false
}

// Store is the selection set. Membership is by record ID only, so a re-fetched
// copy of a row with stale attributes is still recognised as selected.
type Store struct {
	mu    sync.RWMutex
	order []record.ID
	byID  map[record.ID]record.Record
}

// NewStore creates an empty selection.
func NewStore() *Store {
	return &Store{byID: make(map[record.ID]record.Record)}
}

// Toggle adds r if its ID is absent, removes it otherwise.
// Returns true if r is selected afterwards.
func (s *Store) Toggle(r record.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[r.ID]; ok {
		delete(s.byID, r.ID)
		for i, id := range s.order {
			if id == r.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}

	s.byID[r.ID] = r
	s.order = append(s.order, r.ID)
	return true
}

// ReplaceAll swaps the whole selection for records, keeping their order.
// A repeated ID keeps its first occurrence.
func (s *Store) ReplaceAll(records []record.Record) {
	order := make([]record.ID, 0, len(records))
	byID := make(map[record.ID]record.Record, len(records))
	for _, r := range records {
		if _, dup := byID[r.ID]; dup {
			continue
		}
		byID[r.ID] = r
		order = append(order, r.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
	s.byID = byID
}

// Clear empties the selection.
func (s *Store) Clear() {
	s.ReplaceAll(nil)
}

// Contains reports whether a record with id is selected.
func (s *Store) Contains(id record.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of selected records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Current returns a snapshot of the selection.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]record.Record, len(s.order))
	for i, id := range s.order {
		records[i] = s.byID[id]
	}
	return Snapshot{Records: records}
}
