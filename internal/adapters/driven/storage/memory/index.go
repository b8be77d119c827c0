package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

// Ensure DocumentIndex implements the interface.
var _ driven.DocumentIndex = (*DocumentIndex)(nil)

// DocumentIndex is an in-memory implementation of driven.DocumentIndex.
type DocumentIndex struct {
	mu    sync.RWMutex
	index domain.Index
	saves int
}

// NewDocumentIndex creates an empty in-memory index.
func NewDocumentIndex() *DocumentIndex {
	return &DocumentIndex{index: domain.Index{}}
}

// Load returns a copy of the stored index.
func (s *DocumentIndex) Load(_ context.Context) (domain.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Clone(), nil
}

// Save replaces the stored index with a copy of index.
func (s *DocumentIndex) Save(_ context.Context, index domain.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = index.Clone()
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *DocumentIndex) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
