package driven

import (
	"context"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

// DocumentIndex persists the path to fingerprint mapping as a whole.
type DocumentIndex interface {
	// Load returns the stored index, or an empty index if none exists yet.
	Load(ctx context.Context) (domain.Index, error)

	// Save atomically replaces the stored index.
	Save(ctx context.Context, index domain.Index) error
}

// DocumentStore persists one record per fingerprint.
type DocumentStore interface {
	// Get returns the record for fp, or domain.ErrNotFound.
	Get(ctx context.Context, fp domain.Fingerprint) (*domain.DocumentRecord, error)

	// Exists reports whether a record is stored for fp.
	Exists(ctx context.Context, fp domain.Fingerprint) (bool, error)

	// Put stores or overwrites the record for fp.
	Put(ctx context.Context, fp domain.Fingerprint, record *domain.DocumentRecord) error

	// Delete removes the record for fp. Deleting a missing record is not an error.
	Delete(ctx context.Context, fp domain.Fingerprint) error

	// List returns every stored fingerprint in sorted order.
	List(ctx context.Context) ([]domain.Fingerprint, error)
}
