package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

var errProvider = errors.New("provider down")

// fakeEmbedder implements driven.EmbeddingService with fixed vectors per text.
type fakeEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	fallback   []float32
	err        error
	embedCalls int
	batchCalls int
	texts      []string
}

func newFakeEmbedder(vectors map[string][]float32) *fakeEmbedder {
	return &fakeEmbedder{vectors: vectors, fallback: []float32{1, 0, 0}}
}

func (f *fakeEmbedder) vector(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return f.fallback
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	f.texts = append(f.texts, texts...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

func (f *fakeEmbedder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.embedCalls + f.batchCalls
}

func (f *fakeEmbedder) ProviderName() string { return "fake" }
func (f *fakeEmbedder) ModelName() string { return "fake-embed" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error { return nil }

// fakeCompleter implements driven.CompletionService, answering each call with
// the next scripted reply.
type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	err      error
	empty    bool
	requests [][]domain.ChatMessage
	sampling []domain.Sampling
}

func (f *fakeCompleter) Complete(_ context.Context, messages []domain.ChatMessage, sampling domain.Sampling) ([]domain.Choice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, messages)
	f.sampling = append(f.sampling, sampling)
	if f.err != nil {
		return nil, f.err
	}
	if f.empty {
		return nil, nil
	}
	i := len(f.requests) - 1
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return []domain.Choice{{Message: domain.ChatMessage{Role: domain.RoleAssistant, Content: reply}}}, nil
}

func (f *fakeCompleter) ProviderName() string { return "fake" }
func (f *fakeCompleter) ModelName() string { return "fake-chat" }
func (f *fakeCompleter) Ping(_ context.Context) error { return nil }
func (f *fakeCompleter) Close() error { return nil }

// fakeTokenizer encodes one token per whitespace-separated word.
type fakeTokenizer struct {
	err error
}

func (f *fakeTokenizer) Encode(_ string, text string) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	words := strings.Fields(text)
	ids := make([]int, len(words))
	for i, w := range words {
		ids[i] = len(w)
	}
	return ids, nil
}

// fakeCache implements driven.ResponseCache and fails every operation.
type fakeCache struct {
	lookupErr error
	storeErr  error
	found     bool
}

func (f *fakeCache) Lookup(_ any, _ any) (bool, error) { return f.found, f.lookupErr }
func (f *fakeCache) Store(_ any, _ any) error { return f.storeErr }

// fakePrompts implements driven.PromptStore from a map.
type fakePrompts map[string]string

func (f fakePrompts) Load(name string) (string, error) {
	p, ok := f[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (f fakePrompts) Reload() {}

var (
	_ driven.EmbeddingService  = (*fakeEmbedder)(nil)
	_ driven.CompletionService = (*fakeCompleter)(nil)
	_ driven.Tokenizer         = (*fakeTokenizer)(nil)
	_ driven.ResponseCache     = (*fakeCache)(nil)
	_ driven.PromptStore       = fakePrompts(nil)
)
