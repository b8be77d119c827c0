package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

// IndexFileName is the name of the index file inside the data directory.
const IndexFileName = "index.json"

// Ensure DocumentIndex implements the interface.
var _ driven.DocumentIndex = (*DocumentIndex)(nil)

// DocumentIndex stores the path to fingerprint mapping as one JSON object.
// encoding/json writes map keys sorted, so the file diffs cleanly.
type DocumentIndex struct {
	path string
}

// NewDocumentIndex creates an index stored at <dataDir>/index.json.
func NewDocumentIndex(dataDir string) *DocumentIndex {
	return &DocumentIndex{path: filepath.Join(dataDir, IndexFileName)}
}

// Path returns the index file path.
func (s *DocumentIndex) Path() string {
	return s.path
}

// Load reads the index. A missing file is an empty index.
func (s *DocumentIndex) Load(_ context.Context) (domain.Index, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	index := domain.Index{}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return index, nil
}

// Save replaces the index file atomically.
func (s *DocumentIndex) Save(_ context.Context, index domain.Index) error {
	if index == nil {
		index = domain.Index{}
	}
	if err := writeJSON(s.path, index); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}
