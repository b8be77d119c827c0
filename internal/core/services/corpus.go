package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

// Corpus is a read-through view of every stored document record.
// Records are loaded on first use and shared by the retriever and the
// ask flow for the rest of the invocation.
type Corpus struct {
	store driven.DocumentStore

	mu     sync.Mutex
	loaded bool
	docs   []domain.Document
}

// NewCorpus creates a corpus backed by store.
func NewCorpus(store driven.DocumentStore) *Corpus {
	return &Corpus{store: store}
}

// Documents returns all stored documents ordered by fingerprint.
// Records retained without an index entry are included until pruned.
func (c *Corpus) Documents(ctx context.Context) ([]domain.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.docs, nil
	}

	fps, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	docs := make([]domain.Document, 0, len(fps))
	for _, fp := range fps {
		rec, err := c.store.Get(ctx, fp)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read record %s: %w", fp.Short(), err)
		}
		docs = append(docs, domain.Document{Fingerprint: fp, Record: rec})
	}

	logger.Debug("Corpus loaded: %d documents", len(docs))
	c.docs = docs
	c.loaded = true
	return c.docs, nil
}

// Reset drops the loaded records so the next call reads the store again.
func (c *Corpus) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.docs = nil
}

// Find returns the documents whose header satisfies the directive.
func (c *Corpus) Find(ctx context.Context, d domain.Directive, namePrefix string) ([]domain.Document, error) {
	docs, err := c.Documents(ctx)
	if err != nil {
		return nil, err
	}

	var found []domain.Document
	for _, doc := range docs {
		if d.Matches(doc.Record.Frontmatter, namePrefix) {
			found = append(found, doc)
		}
	}
	return found, nil
}
