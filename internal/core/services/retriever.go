package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultVoteLimit is the number of top candidates that receive votes per query.
const DefaultVoteLimit = 2

// RetrievalService selects documents by rank-weighted votes across queries.
type RetrievalService struct {
	corpus    *Corpus
	embedder  driven.EmbeddingService
	voteLimit int
}

// NewRetrievalService creates a retriever. A voteLimit below 1 selects
// DefaultVoteLimit.
func NewRetrievalService(corpus *Corpus, embedder driven.EmbeddingService, voteLimit int) *RetrievalService {
	if voteLimit < 1 {
		voteLimit = DefaultVoteLimit
	}
	return &RetrievalService{
		corpus:    corpus,
		embedder:  embedder,
		voteLimit: voteLimit,
	}
}

// Retrieve embeds the queries in one batch and, per query, awards K votes
// to the most similar document, K-1 to the next and so on down to 1.
// Documents are ordered by accumulated votes (stable on corpus order) and
// those with fewer than half the top document's votes are dropped.
func (s *RetrievalService) Retrieve(ctx context.Context, queries []string) ([]domain.VotedDocument, error) {
	logger.Section("Retrieval")

	queries = nonEmpty(queries)
	if len(queries) == 0 {
		logger.Debug("No queries, returning no documents")
		return []domain.VotedDocument{}, nil
	}

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}

	vectors, err := s.embedder.EmbedBatch(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("embed queries: %w", err)
	}
	if len(vectors) != len(queries) {
		return nil, fmt.Errorf("%w: %d vectors for %d queries", domain.ErrProviderResponse, len(vectors), len(queries))
	}

	votes := make(map[domain.Fingerprint]int, len(candidates))
	for qi, qv := range vectors {
		ranked, err := rank(qv, candidates)
		if err != nil {
			return nil, err
		}
		for i := 0; i < s.voteLimit && i < len(ranked); i++ {
			fp := ranked[i].Document.Fingerprint
			votes[fp] += s.voteLimit - i
			logger.Debug("Query %d: %s +%d (%.4f)", qi, ranked[i].Document.Path(), s.voteLimit-i, ranked[i].Similarity)
		}
	}

	return threshold(candidates, votes), nil
}

// Rank orders every embedded document by similarity to query.
func (s *RetrievalService) Rank(ctx context.Context, query string) ([]domain.RankedDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.RankedDocument{}, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}

	qv, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return rank(qv, candidates)
}

// candidates returns the corpus documents embedded by the current model.
// Records without a model name are assumed current.
func (s *RetrievalService) candidates(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.corpus.Documents(ctx)
	if err != nil {
		return nil, err
	}

	model := s.embedder.ModelName()
	candidates := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if !doc.Record.HasEmbedding() {
			logger.Warn("Skipping %s: no embedding, run 'docent ingest' to fill it", doc.Path())
			continue
		}
		if m := doc.Record.EmbeddingModel; m != "" && m != model {
			logger.Warn("Skipping %s: embedded with %s, not %s; run 'docent ingest' to refresh", doc.Path(), m, model)
			continue
		}
		candidates = append(candidates, doc)
	}
	if len(candidates) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	return candidates, nil
}

// threshold orders candidates by votes and keeps those at or above half
// the top count. candidates must not be empty.
func threshold(candidates []domain.Document, votes map[domain.Fingerprint]int) []domain.VotedDocument {
	ordered := make([]domain.VotedDocument, len(candidates))
	for i, doc := range candidates {
		ordered[i] = domain.VotedDocument{Votes: votes[doc.Fingerprint], Document: doc}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Votes > ordered[j].Votes
	})

	half := float64(ordered[0].Votes) / 2
	kept := ordered[:0]
	for _, vd := range ordered {
		if float64(vd.Votes) >= half {
			kept = append(kept, vd)
		}
	}
	logger.Debug("Vote threshold %.1f keeps %d of %d documents", half, len(kept), len(ordered))
	return kept
}

// rank scores every document against qv, most similar first.
func rank(qv []float32, docs []domain.Document) ([]domain.RankedDocument, error) {
	ranked := make([]domain.RankedDocument, len(docs))
	for i, doc := range docs {
		sim, err := CosineSimilarity(qv, doc.Record.Embedding)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", doc.Path(), err)
		}
		ranked[i] = domain.RankedDocument{Similarity: sim, Document: doc}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	return ranked, nil
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either norm is zero.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
