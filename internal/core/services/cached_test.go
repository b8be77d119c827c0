package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

func TestCompletionDescriptor_Ordered(t *testing.T) {
	msgs := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleUser, Content: "q"},
	}
	desc := CompletionDescriptor("m", msgs, domain.Sampling{TopP: 0.3, FrequencyPenalty: 0.1})

	assert.Equal(t, []any{
		"m",
		[]any{[]any{"system", "sys"}, []any{"user", "q"}},
		0.3,
		0.1,
	}, desc)
}

func TestEmbeddingDescriptors(t *testing.T) {
	assert.Equal(t, []any{"text", "m"}, EmbeddingDescriptor("text", "m"))
	assert.Equal(t, []any{[]any{"a", "b"}, "m"}, EmbeddingBatchDescriptor([]string{"a", "b"}, "m"))
}

func TestCachedCompletionService_SecondCallIsHit(t *testing.T) {
	inner := &fakeCompleter{replies: []string{"first", "second"}}
	svc := NewCachedCompletionService(inner, memory.NewResponseCache())
	ctx := context.Background()
	msgs := []domain.ChatMessage{{Role: domain.RoleUser, Content: "hello"}}

	a, err := svc.Complete(ctx, msgs, domain.Sampling{TopP: 0.3})
	require.NoError(t, err)
	b, err := svc.Complete(ctx, msgs, domain.Sampling{TopP: 0.3})
	require.NoError(t, err)

	assert.Len(t, inner.requests, 1)
	assert.Equal(t, a, b)
	assert.Equal(t, "first", domain.FirstContent(b))
}

func TestCachedCompletionService_DifferentSamplingMisses(t *testing.T) {
	inner := &fakeCompleter{replies: []string{"first", "second"}}
	svc := NewCachedCompletionService(inner, memory.NewResponseCache())
	ctx := context.Background()
	msgs := []domain.ChatMessage{{Role: domain.RoleUser, Content: "hello"}}

	_, err := svc.Complete(ctx, msgs, domain.Sampling{TopP: 0.3})
	require.NoError(t, err)
	b, err := svc.Complete(ctx, msgs, domain.Sampling{TopP: 0.3, FrequencyPenalty: 0.1})
	require.NoError(t, err)

	assert.Len(t, inner.requests, 2)
	assert.Equal(t, "second", domain.FirstContent(b))
}

func TestCachedCompletionService_ProviderErrorNotCached(t *testing.T) {
	inner := &fakeCompleter{err: errProvider}
	cache := memory.NewResponseCache()
	svc := NewCachedCompletionService(inner, cache)

	_, err := svc.Complete(context.Background(), nil, domain.Sampling{})
	assert.ErrorIs(t, err, errProvider)
	assert.Equal(t, 0, cache.Len())
}

func TestCachedCompletionService_CorruptionPropagates(t *testing.T) {
	inner := &fakeCompleter{replies: []string{"x"}}
	svc := NewCachedCompletionService(inner, &fakeCache{lookupErr: domain.ErrCacheCorruption})

	_, err := svc.Complete(context.Background(), nil, domain.Sampling{})
	assert.ErrorIs(t, err, domain.ErrCacheCorruption)
	assert.Empty(t, inner.requests, "provider must not be called after a corrupt lookup")
}

func TestCachedCompletionService_Delegates(t *testing.T) {
	svc := NewCachedCompletionService(&fakeCompleter{}, memory.NewResponseCache())
	assert.Equal(t, "fake", svc.ProviderName())
	assert.Equal(t, "fake-chat", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestCachedEmbeddingService_Embed(t *testing.T) {
	inner := newFakeEmbedder(map[string][]float32{"a": {0, 1}})
	svc := NewCachedEmbeddingService(inner, memory.NewResponseCache())
	ctx := context.Background()

	v1, err := svc.Embed(ctx, "a")
	require.NoError(t, err)
	v2, err := svc.Embed(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 1}, v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, inner.calls())
}

func TestCachedEmbeddingService_EmbedBatch(t *testing.T) {
	inner := newFakeEmbedder(map[string][]float32{"a": {0, 1}, "b": {1, 0}})
	svc := NewCachedEmbeddingService(inner, memory.NewResponseCache())
	ctx := context.Background()

	v, err := svc.EmbedBatch(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {1, 0}}, v)

	_, err = svc.EmbedBatch(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls())

	// A different batch order is a different request.
	_, err = svc.EmbedBatch(ctx, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls())
}

func TestCachedEmbeddingService_EmptyBatch(t *testing.T) {
	inner := newFakeEmbedder(nil)
	svc := NewCachedEmbeddingService(inner, memory.NewResponseCache())

	v, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 0, inner.calls())
}

func TestCachedEmbeddingService_WrongLengthHit(t *testing.T) {
	cache := memory.NewResponseCache()
	require.NoError(t, cache.Store(EmbeddingBatchDescriptor([]string{"a", "b"}, "fake-embed"), [][]float32{{1}}))

	inner := newFakeEmbedder(nil)
	svc := NewCachedEmbeddingService(inner, cache)

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrCacheCorruption)
	assert.Equal(t, 0, inner.calls())
}

func TestCachedEmbeddingService_ErrorsPropagate(t *testing.T) {
	inner := newFakeEmbedder(nil)
	inner.err = errProvider
	svc := NewCachedEmbeddingService(inner, memory.NewResponseCache())
	_, err := svc.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, errProvider)

	svc = NewCachedEmbeddingService(newFakeEmbedder(nil), &fakeCache{storeErr: domain.ErrCacheCorruption})
	_, err = svc.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrCacheCorruption)
}
