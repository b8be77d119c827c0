package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

// Ensure the cached services implement the provider ports.
var (
	_ driven.CompletionService = (*CachedCompletionService)(nil)
	_ driven.EmbeddingService  = (*CachedEmbeddingService)(nil)
)

// CompletionDescriptor returns the canonical request for a completion:
// [model, [[role, content], ...], top_p, frequency_penalty].
// Messages are ordered pairs so identical requests always hash identically.
func CompletionDescriptor(model string, messages []domain.ChatMessage, sampling domain.Sampling) []any {
	pairs := make([]any, len(messages))
	for i, m := range messages {
		pairs[i] = []any{m.Role, m.Content}
	}
	return []any{model, pairs, sampling.TopP, sampling.FrequencyPenalty}
}

// EmbeddingDescriptor returns the canonical request for a single text: [text, model].
func EmbeddingDescriptor(text, model string) []any {
	return []any{text, model}
}

// EmbeddingBatchDescriptor returns the canonical request for a batch: [[texts...], model].
func EmbeddingBatchDescriptor(texts []string, model string) []any {
	items := make([]any, len(texts))
	for i, t := range texts {
		items[i] = t
	}
	return []any{items, model}
}

// CachedCompletionService answers repeated requests from a ResponseCache.
// A miss makes exactly one provider call; a hit makes none.
type CachedCompletionService struct {
	inner driven.CompletionService
	cache driven.ResponseCache
}

// NewCachedCompletionService wraps inner with cache.
func NewCachedCompletionService(inner driven.CompletionService, cache driven.ResponseCache) *CachedCompletionService {
	return &CachedCompletionService{inner: inner, cache: cache}
}

// Complete returns the cached choices for the request, calling the provider on a miss.
func (s *CachedCompletionService) Complete(
	ctx context.Context,
	messages []domain.ChatMessage,
	sampling domain.Sampling,
) ([]domain.Choice, error) {
	desc := CompletionDescriptor(s.inner.ModelName(), messages, sampling)

	var choices []domain.Choice
	found, err := s.cache.Lookup(desc, &choices)
	if err != nil {
		return nil, fmt.Errorf("completion cache: %w", err)
	}
	if found {
		logger.Debug("Completion cache hit (%s, %d messages)", s.inner.ModelName(), len(messages))
		return choices, nil
	}

	logger.Info("Completion cache miss (%s, %d messages)", s.inner.ModelName(), len(messages))
	choices, err = s.inner.Complete(ctx, messages, sampling)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Store(desc, choices); err != nil {
		return nil, fmt.Errorf("completion cache: %w", err)
	}
	return choices, nil
}

// ProviderName returns the wrapped provider name.
func (s *CachedCompletionService) ProviderName() string {
	return s.inner.ProviderName()
}

// ModelName returns the wrapped model name.
func (s *CachedCompletionService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates to the wrapped service.
func (s *CachedCompletionService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the wrapped service.
func (s *CachedCompletionService) Close() error {
	return s.inner.Close()
}

// CachedEmbeddingService answers repeated requests from a ResponseCache.
// A miss makes exactly one provider call; a hit makes none.
type CachedEmbeddingService struct {
	inner driven.EmbeddingService
	cache driven.ResponseCache
}

// NewCachedEmbeddingService wraps inner with cache.
func NewCachedEmbeddingService(inner driven.EmbeddingService, cache driven.ResponseCache) *CachedEmbeddingService {
	return &CachedEmbeddingService{inner: inner, cache: cache}
}

// Embed returns the cached vector for text, calling the provider on a miss.
func (s *CachedEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.cached(EmbeddingDescriptor(text, s.inner.ModelName()), 1, func() ([][]float32, error) {
		v, err := s.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		return [][]float32{v}, nil
	})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns the cached vectors for texts, calling the provider on a miss.
func (s *CachedEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	desc := EmbeddingBatchDescriptor(texts, s.inner.ModelName())
	return s.cached(desc, len(texts), func() ([][]float32, error) {
		return s.inner.EmbedBatch(ctx, texts)
	})
}

// cached resolves desc from the cache or, on a miss, from call.
func (s *CachedEmbeddingService) cached(desc []any, want int, call func() ([][]float32, error)) ([][]float32, error) {
	var vectors [][]float32
	found, err := s.cache.Lookup(desc, &vectors)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}
	if found && len(vectors) == want {
		logger.Debug("Embedding cache hit (%s, %d texts)", s.inner.ModelName(), want)
		return vectors, nil
	}
	if found {
		return nil, fmt.Errorf("embedding cache: %w: expected %d vectors, found %d",
			domain.ErrCacheCorruption, want, len(vectors))
	}

	logger.Info("Embedding cache miss (%s, %d texts)", s.inner.ModelName(), want)
	vectors, err = call()
	if err != nil {
		return nil, err
	}
	if len(vectors) != want {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", domain.ErrProviderResponse, want, len(vectors))
	}

	if err := s.cache.Store(desc, vectors); err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}
	return vectors, nil
}

// ProviderName returns the wrapped provider name.
func (s *CachedEmbeddingService) ProviderName() string {
	return s.inner.ProviderName()
}

// ModelName returns the wrapped model name.
func (s *CachedEmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates to the wrapped service.
func (s *CachedEmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the wrapped service.
func (s *CachedEmbeddingService) Close() error {
	return s.inner.Close()
}
