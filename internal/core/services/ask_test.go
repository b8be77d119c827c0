package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

func testPrompts() fakePrompts {
	return fakePrompts{
		driven.PromptPlanningSystem:  "plan system",
		driven.PromptPlanningUser:    "plan prefix",
		driven.PromptAnsweringSystem: "docs:\n" + driven.RelevantDocumentsPlaceholder,
		driven.PromptAnsweringUser:   "pre " + driven.RelevantDocumentsPlaceholder,
	}
}

type askFixture struct {
	store     *memory.DocumentStore
	completer *fakeCompleter
	embedder  *fakeEmbedder
	svc       *AskService
	addFP     domain.Fingerprint
	vectorFP  domain.Fingerprint
}

func newAskFixture(t *testing.T, replies ...string) *askFixture {
	t.Helper()
	store := memory.NewDocumentStore()
	f := &askFixture{store: store}

	f.addFP = putRecord(t, store, "fn/add.md", "---\ntype: function\nname: v3d.add\n---\nAdds two vectors.", []float32{1, 0})
	f.vectorFP = putRecord(t, store, "types/vector.md", "---\ntype: class\nname: Vector\n---\nA vector.", []float32{0, 1})
	putRecord(t, store, "snippets/loop.md", "---\ntype: snippet\nsnippet: loop\n---\nfor {}", []float32{-1, 0})

	f.embedder = newFakeEmbedder(map[string][]float32{
		"adding": {1, 0},
		"types":  {0, 1},
	})
	f.completer = &fakeCompleter{replies: replies}

	corpus := NewCorpus(store)
	retriever := NewRetrievalService(corpus, f.embedder, 2)
	f.svc = NewAskService(f.completer, retriever, corpus, testPrompts(), AskConfig{
		Planning:   domain.Sampling{TopP: 0.3},
		Answering:  domain.Sampling{TopP: 0.3, FrequencyPenalty: 0.1},
		NamePrefix: "v3d.",
	})
	return f
}

func TestAsk_TwoPhases(t *testing.T) {
	plan := "# Topics\n* adding\n\n# Lookup\n* TYPE_INFO Vector\n* FUNCTION_INFO add\n\n# Relevant\n* add: for sums\n"
	f := newAskFixture(t, plan, "# Reply\nUse add.\n# Notes\nignored")

	answer, err := f.svc.Ask(context.Background(), "How do I add vectors?")
	require.NoError(t, err)

	assert.Equal(t, []string{"adding"}, answer.Topics)
	assert.Equal(t, []string{"add"}, answer.Relevant)
	require.Len(t, answer.Lookups, 2)
	assert.Equal(t, "Use add.", answer.Reply)

	// Retrieval result first, then the lookup; the duplicate add is dropped.
	require.Len(t, answer.Documents, 2)
	assert.Equal(t, "fn/add.md", answer.Documents[0].Path())
	assert.Equal(t, "types/vector.md", answer.Documents[1].Path())

	require.Len(t, f.completer.requests, 2)

	planning := f.completer.requests[0]
	require.Len(t, planning, 2)
	assert.Equal(t, domain.RoleSystem, planning[0].Role)
	assert.Equal(t, "plan system", planning[0].Content)
	assert.True(t, strings.HasPrefix(planning[1].Content, "plan prefix\n\nTypes:\n* Vector\n"))
	assert.Contains(t, planning[1].Content, "\n\nFunctions:\n* v3d.add\n")
	assert.Contains(t, planning[1].Content, "\n\nSnippets:\n* loop\n")
	assert.True(t, strings.HasSuffix(planning[1].Content, "\n\nUser question:How do I add vectors?"))
	assert.Equal(t, domain.Sampling{TopP: 0.3}, f.completer.sampling[0])

	answering := f.completer.requests[1]
	require.Len(t, answering, 3)
	articles := "<article id=\"" + f.addFP.Short() + "\">\nAdds two vectors.\n</article>\n\n" +
		"<article id=\"" + f.vectorFP.Short() + "\">\nA vector.\n</article>"
	assert.Equal(t, "docs:\n"+articles, answering[0].Content)
	assert.Equal(t, "pre "+articles, answering[1].Content)
	assert.Equal(t, domain.ChatMessage{Role: domain.RoleUser, Content: "How do I add vectors?"}, answering[2])
	assert.Equal(t, domain.Sampling{TopP: 0.3, FrequencyPenalty: 0.1}, f.completer.sampling[1])
}

func TestAsk_EmptyReply(t *testing.T) {
	f := newAskFixture(t, "# Topics\n* types\n", "I don't know")

	answer, err := f.svc.Ask(context.Background(), "What is a vector?")
	assert.ErrorIs(t, err, domain.ErrEmptyReply)
	require.NotNil(t, answer)
	assert.Equal(t, "I don't know", answer.Raw)
	assert.Empty(t, answer.Reply)
}

func TestAsk_MalformedPlanIsTolerated(t *testing.T) {
	captureLog(t)
	f := newAskFixture(t, "# Lookup\n* NOPE x\nrandom text\n", "# Reply\nok")

	answer, err := f.svc.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, answer.Topics)
	assert.Empty(t, answer.Lookups)
	assert.Empty(t, answer.Documents)
	assert.Equal(t, 0, f.embedder.calls())
}

func TestAsk_RequestedTokens(t *testing.T) {
	f := newAskFixture(t, "# Lookup\n* SNIPPET loop\n", "# Reply\nok")
	ctx := context.Background()

	fp := domain.NewFingerprint("snippets/loop.md", []byte("---\ntype: snippet\nsnippet: loop\n---\nfor {}"))
	rec, err := f.store.Get(ctx, fp)
	require.NoError(t, err)
	rec.TokenCounts = map[string]domain.TokenCount{domain.EncodingCl100kBase: domain.NewTokenCount([]int{1, 2, 3})}
	require.NoError(t, f.store.Put(ctx, fp, rec))

	answer, err := f.svc.Ask(ctx, "loop?")
	require.NoError(t, err)
	assert.Equal(t, 3, answer.RequestedTokens)
}

func TestAsk_Errors(t *testing.T) {
	f := newAskFixture(t)
	_, err := f.svc.Ask(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.completer.err = errProvider
	_, err = f.svc.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, errProvider)

	f = newAskFixture(t)
	f.completer.empty = true
	_, err = f.svc.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrProviderResponse)

	f = newAskFixture(t)
	f.svc.prompts = fakePrompts{}
	_, err = f.svc.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	svc := NewAskService(nil, nil, nil, testPrompts(), DefaultAskConfig())
	_, err = svc.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrCompletionUnavailable)
}

func TestAsk_EmptyCorpusRecovered(t *testing.T) {
	captureLog(t)
	store := memory.NewDocumentStore()
	corpus := NewCorpus(store)
	completer := &fakeCompleter{replies: []string{"# Topics\n* a\n* b\n", "# Reply\nnothing indexed"}}
	svc := NewAskService(completer, NewRetrievalService(corpus, newFakeEmbedder(nil), 2), corpus, testPrompts(), DefaultAskConfig())

	answer, err := svc.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, answer.Documents)
	assert.Equal(t, "nothing indexed", answer.Reply)
}

func TestDefaultAskConfig(t *testing.T) {
	cfg := DefaultAskConfig()
	assert.Equal(t, domain.Sampling{TopP: 0.3}, cfg.Planning)
	assert.Equal(t, domain.Sampling{TopP: 0.3, FrequencyPenalty: 0.1}, cfg.Answering)
}
