package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as a
	// missing ingestion directory.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCacheCorruption indicates a cache entry was found under a request
	// hash but its stored request differs from the recomputed one.
	// The entry is never overwritten.
	ErrCacheCorruption = errors.New("cache corruption")

	// ErrMalformedFrontmatter indicates a document header could not be parsed.
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")

	// ErrEmptyCorpus indicates retrieval was attempted with no candidate documents.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrEmptyReply indicates the answering completion had no Reply body.
	ErrEmptyReply = errors.New("empty reply")

	// ErrUnknownDirective indicates a lookup item with an unrecognised kind.
	ErrUnknownDirective = errors.New("unknown directive")

	// ErrDimensionMismatch indicates two embeddings of different lengths were compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCompletionUnavailable indicates the completion service is not configured.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Provider Errors.

	// ErrProviderResponse indicates a provider returned an error or an unusable payload.
	ErrProviderResponse = errors.New("provider response error")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
