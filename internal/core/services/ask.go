package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskConfig holds the tunables of the two-phase ask.
type AskConfig struct {
	// Planning is the sampling of the first completion.
	Planning domain.Sampling

	// Answering is the sampling of the second completion.
	Answering domain.Sampling

	// NamePrefix is the namespace function names may carry in frontmatter.
	NamePrefix string
}

// DefaultAskConfig returns the sampling used by the original prompts.
func DefaultAskConfig() AskConfig {
	defaults := domain.DefaultAppSettings()
	return AskConfig{
		Planning:  defaults.Ask.Planning,
		Answering: defaults.Ask.Answering,
	}
}

// AskService answers a question in two completions: a planning call that
// names what to look up, and an answering call over the found documents.
type AskService struct {
	completer driven.CompletionService
	retriever driving.RetrievalService
	corpus    *Corpus
	prompts   driven.PromptStore
	config    AskConfig
}

// NewAskService creates an ask orchestrator.
func NewAskService(
	completer driven.CompletionService,
	retriever driving.RetrievalService,
	corpus *Corpus,
	prompts driven.PromptStore,
	config AskConfig,
) *AskService {
	return &AskService{
		completer: completer,
		retriever: retriever,
		corpus:    corpus,
		prompts:   prompts,
		config:    config,
	}
}

// Ask runs both phases for question. When the answering completion has no
// Reply body the partially filled answer is returned with ErrEmptyReply so
// the caller can show the raw completion.
func (s *AskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.completer == nil {
		return nil, domain.ErrCompletionUnavailable
	}

	answer := &domain.Answer{Question: question}

	logger.Section("Planning")
	if err := s.plan(ctx, answer); err != nil {
		return nil, err
	}

	docs, err := s.gather(ctx, answer)
	if err != nil {
		return nil, err
	}
	answer.Documents = docs
	for _, doc := range docs {
		answer.RequestedTokens += doc.Record.TokenLength(domain.EncodingCl100kBase)
	}
	logger.Debug("Passing %d documents (%d tokens)", len(docs), answer.RequestedTokens)

	logger.Section("Answering")
	if err := s.answer(ctx, answer); err != nil {
		return answer, err
	}
	return answer, nil
}

// plan runs the planning completion and parses its sections into answer.
func (s *AskService) plan(ctx context.Context, answer *domain.Answer) error {
	system, err := s.prompts.Load(driven.PromptPlanningSystem)
	if err != nil {
		return fmt.Errorf("load planning prompt: %w", err)
	}
	prefix, err := s.prompts.Load(driven.PromptPlanningUser)
	if err != nil {
		return fmt.Errorf("load planning prompt: %w", err)
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return err
	}

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: prefix + catalog + "\n\nUser question:" + answer.Question},
	}

	content, err := s.complete(ctx, messages, s.config.Planning)
	if err != nil {
		return fmt.Errorf("planning: %w", err)
	}

	answer.Plan = content
	answer.Topics = ParseSection(SectionTopics, content)
	answer.Lookups = ParseLookups(content)
	answer.Relevant = ParseRelevant(content)
	logger.Debug("Plan: %d topics, %d lookups, %d relevant",
		len(answer.Topics), len(answer.Lookups), len(answer.Relevant))
	return nil
}

// gather retrieves documents for each topic and appends explicit lookups,
// keeping the first occurrence of each fingerprint.
func (s *AskService) gather(ctx context.Context, answer *domain.Answer) ([]domain.Document, error) {
	var found []domain.Document

	for _, topic := range answer.Topics {
		voted, err := s.retriever.Retrieve(ctx, []string{topic})
		if errors.Is(err, domain.ErrEmptyCorpus) {
			logger.Warn("No embedded documents to retrieve from")
			break
		}
		if err != nil {
			return nil, fmt.Errorf("retrieve %q: %w", topic, err)
		}
		for _, vd := range voted {
			found = append(found, vd.Document)
		}
	}

	for _, d := range answer.Lookups {
		docs, err := s.corpus.Find(ctx, d, s.config.NamePrefix)
		if err != nil {
			return nil, fmt.Errorf("lookup %s %s: %w", d.Kind, d.Identifier, err)
		}
		if len(docs) == 0 {
			logger.Debug("Lookup %s %s matched nothing", d.Kind, d.Identifier)
		}
		found = append(found, docs...)
	}

	return dedupe(found), nil
}

// answer runs the answering completion over answer.Documents.
func (s *AskService) answer(ctx context.Context, answer *domain.Answer) error {
	system, err := s.prompts.Load(driven.PromptAnsweringSystem)
	if err != nil {
		return fmt.Errorf("load answering prompt: %w", err)
	}
	pre, err := s.prompts.Load(driven.PromptAnsweringUser)
	if err != nil {
		return fmt.Errorf("load answering prompt: %w", err)
	}

	articles := FormatArticles(answer.Documents)
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: strings.ReplaceAll(system, driven.RelevantDocumentsPlaceholder, articles)},
		{Role: domain.RoleUser, Content: strings.ReplaceAll(pre, driven.RelevantDocumentsPlaceholder, articles)},
		{Role: domain.RoleUser, Content: answer.Question},
	}

	content, err := s.complete(ctx, messages, s.config.Answering)
	if err != nil {
		return fmt.Errorf("answering: %w", err)
	}

	answer.Raw = content
	answer.Reply = ParseBodyAfter(SectionReply, content)
	if strings.TrimSpace(answer.Reply) == "" {
		return domain.ErrEmptyReply
	}
	return nil
}

func (s *AskService) complete(ctx context.Context, messages []domain.ChatMessage, sampling domain.Sampling) (string, error) {
	choices, err := s.completer.Complete(ctx, messages, sampling)
	if err != nil {
		return "", err
	}
	if len(choices) == 0 {
		return "", fmt.Errorf("%w: no choices", domain.ErrProviderResponse)
	}
	return domain.FirstContent(choices), nil
}

// catalog lists the types, functions and snippets declared in the corpus.
func (s *AskService) catalog(ctx context.Context) (string, error) {
	docs, err := s.corpus.Documents(ctx)
	if err != nil {
		return "", err
	}

	types := map[string]bool{}
	functions := map[string]bool{}
	snippets := map[string]bool{}
	for _, doc := range docs {
		fm := doc.Record.Frontmatter
		switch fm.Type() {
		case "class", "alias":
			types[fm.Name()] = true
		case "function":
			functions[fm.Name()] = true
		case "snippet":
			snippets[fm.Get(domain.FrontmatterSnippet)] = true
		}
	}

	var b strings.Builder
	writeListing(&b, "Types", types)
	writeListing(&b, "Functions", functions)
	writeListing(&b, "Snippets", snippets)
	return b.String(), nil
}

func writeListing(b *strings.Builder, title string, names map[string]bool) {
	sorted := make([]string, 0, len(names))
	for n := range names {
		if n != "" {
			sorted = append(sorted, n)
		}
	}
	sort.Strings(sorted)

	b.WriteString("\n\n" + title + ":\n")
	for _, n := range sorted {
		b.WriteString("* " + n + "\n")
	}
}

// FormatArticles wraps each document body in an article element keyed by
// its short fingerprint, separated by blank lines.
func FormatArticles(docs []domain.Document) string {
	articles := make([]string, len(docs))
	for i, doc := range docs {
		articles[i] = fmt.Sprintf("<article id=\"%s\">\n%s\n</article>", doc.Fingerprint.Short(), doc.Record.Body())
	}
	return strings.Join(articles, "\n\n")
}

func dedupe(docs []domain.Document) []domain.Document {
	seen := make(map[domain.Fingerprint]bool, len(docs))
	out := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if seen[doc.Fingerprint] {
			continue
		}
		seen[doc.Fingerprint] = true
		out = append(out, doc)
	}
	return out
}
