package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu      sync.RWMutex
	records map[domain.Fingerprint]domain.DocumentRecord
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		records: make(map[domain.Fingerprint]domain.DocumentRecord),
	}
}

// Get retrieves the record for fp.
func (s *DocumentStore) Get(_ context.Context, fp domain.Fingerprint) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[fp]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// Exists reports whether a record is stored for fp.
func (s *DocumentStore) Exists(_ context.Context, fp domain.Fingerprint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[fp]
	return ok, nil
}

// Put stores or overwrites the record for fp.
func (s *DocumentStore) Put(_ context.Context, fp domain.Fingerprint, record *domain.DocumentRecord) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[fp] = *record
	return nil
}

// Delete removes the record for fp.
func (s *DocumentStore) Delete(_ context.Context, fp domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, fp)
	return nil
}

// List returns every stored fingerprint in sorted order.
func (s *DocumentStore) List(_ context.Context) ([]domain.Fingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fps := make([]domain.Fingerprint, 0, len(s.records))
	for fp := range s.records {
		fps = append(fps, fp)
	}
	sort.Slice(fps, func(i, j int) bool { return fps[i] < fps[j] })
	return fps, nil
}
