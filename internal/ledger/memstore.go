package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// MemStore is an in-memory Store. Positions start at 1 and keep growing
// after deletes, like a table rowid.
type MemStore struct {
	mu   sync.Mutex
	rows []Row
	next int
}

func NewMemStore(entries ...models.LogEntry) *MemStore {
	s := &MemStore{next: 1}
	s.appendLocked(entries)
	return s
}

func (s *MemStore) ReadAll(_ context.Context) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows), nil
}

func (s *MemStore) Append(_ context.Context, entries []models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(entries)
	return nil
}

func (s *MemStore) appendLocked(entries []models.LogEntry) {
	for _, e := range entries {
		s.rows = append(s.rows, Row{Position: s.next, Entry: e})
		s.next++
	}
}

func (s *MemStore) Delete(_ context.Context, positions []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pos := range positions {
		idx := slices.IndexFunc(s.rows, func(r Row) bool { return r.Position == pos })
		if idx < 0 {
			return fmt.Errorf("no row at position %d", pos)
		}
		s.rows = slices.Delete(s.rows, idx, idx+1)
	}
	return nil
}

// Entries returns the stored entries in position order.
func (s *MemStore) Entries() []models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LogEntry, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Entry
	}
	return out
}

// MemCatalog is a fixed Catalog.
type MemCatalog []models.ItemDefinition

func (c MemCatalog) Items(_ context.Context) ([]models.ItemDefinition, error) {
	return slices.Clone(c), nil
}
