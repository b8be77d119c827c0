package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

const recordExt = ".json"

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps one JSON file per fingerprint under <dataDir>/documents.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates a store rooted at <dataDir>/documents.
func NewDocumentStore(dataDir string) *DocumentStore {
	return &DocumentStore{dir: filepath.Join(dataDir, "documents")}
}

// Dir returns the records directory.
func (s *DocumentStore) Dir() string {
	return s.dir
}

func (s *DocumentStore) recordPath(fp domain.Fingerprint) (string, error) {
	if !fp.IsValid() {
		return "", fmt.Errorf("%w: fingerprint %q", domain.ErrInvalidInput, fp)
	}
	return filepath.Join(s.dir, fp.String()+recordExt), nil
}

// Get reads the record for fp.
func (s *DocumentStore) Get(_ context.Context, fp domain.Fingerprint) (*domain.DocumentRecord, error) {
	path, err := s.recordPath(fp)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: record %s", domain.ErrNotFound, fp.Short())
	}
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", fp.Short(), err)
	}

	var rec domain.DocumentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", fp.Short(), err)
	}
	return &rec, nil
}

// Exists reports whether a record file exists for fp.
func (s *DocumentStore) Exists(_ context.Context, fp domain.Fingerprint) (bool, error) {
	path, err := s.recordPath(fp)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat record %s: %w", fp.Short(), err)
	}
}

// Put writes the record for fp atomically.
func (s *DocumentStore) Put(_ context.Context, fp domain.Fingerprint, record *domain.DocumentRecord) error {
	if record == nil {
		return fmt.Errorf("%w: nil record", domain.ErrInvalidInput)
	}
	path, err := s.recordPath(fp)
	if err != nil {
		return err
	}
	if err := writeJSON(path, record); err != nil {
		return fmt.Errorf("write record %s: %w", fp.Short(), err)
	}
	return nil
}

// Delete removes the record file for fp. A missing file is not an error.
func (s *DocumentStore) Delete(_ context.Context, fp domain.Fingerprint) error {
	path, err := s.recordPath(fp)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete record %s: %w", fp.Short(), err)
	}
	return nil
}

// List returns the fingerprints of every record file, sorted.
// Files that are not named after a fingerprint are ignored.
func (s *DocumentStore) List(_ context.Context) ([]domain.Fingerprint, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	var fps []domain.Fingerprint
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		fp := domain.Fingerprint(strings.TrimSuffix(e.Name(), recordExt))
		if fp.IsValid() {
			fps = append(fps, fp)
		}
	}
	sort.Slice(fps, func(i, j int) bool { return fps[i] < fps[j] })
	return fps, nil
}
