package driving

import (
	"context"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

// RetrievalService selects relevant documents for free-text queries.
type RetrievalService interface {
	// Retrieve ranks the corpus by votes accumulated across queries and
	// drops documents with fewer than half the top document's votes.
	Retrieve(ctx context.Context, queries []string) ([]domain.VotedDocument, error)

	// Rank orders every document by raw similarity to a single query.
	Rank(ctx context.Context, query string) ([]domain.RankedDocument, error)
}
