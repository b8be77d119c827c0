package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driving"
)

// Ensure TokenStatsService implements the interface.
var _ driving.TokenStatsService = (*TokenStatsService)(nil)

var (
	codeFencePattern   = regexp.MustCompile("(?s)```.*?```")
	punctuationPattern = regexp.MustCompile(`[^\s\p{L}\p{N}_]+`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// Wordy strips code fences and punctuation from text and collapses
// whitespace, leaving only the prose words.
func Wordy(text string) string {
	text = codeFencePattern.ReplaceAllString(text, "")
	text = punctuationPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// TokenStatsService compares full and prose-only token counts of files.
type TokenStatsService struct {
	tree      driven.SourceTree
	tokenizer driven.Tokenizer
	encoding  string
}

// NewTokenStatsService creates a token statistics service counting with
// encoding, or cl100k_base when encoding is empty.
func NewTokenStatsService(tree driven.SourceTree, tokenizer driven.Tokenizer, encoding string) *TokenStatsService {
	if encoding == "" {
		encoding = domain.EncodingCl100kBase
	}
	return &TokenStatsService{tree: tree, tokenizer: tokenizer, encoding: encoding}
}

// Analyse counts tokens for every file under dir.
func (s *TokenStatsService) Analyse(ctx context.Context, dir string) (*domain.TokenReport, error) {
	root, err := s.tree.Rel(dir)
	if err != nil {
		return nil, err
	}

	files, err := s.tree.Walk(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	report := &domain.TokenReport{Encoding: s.encoding, Files: make([]domain.TokenStat, 0, len(files))}
	for _, f := range files {
		content := string(f.Content)

		full, err := s.tokenizer.Encode(s.encoding, content)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.Path, err)
		}
		wordy, err := s.tokenizer.Encode(s.encoding, Wordy(content))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.Path, err)
		}

		report.Files = append(report.Files, domain.TokenStat{
			Path:  f.Path,
			Full:  len(full),
			Wordy: len(wordy),
		})
	}
	return report, nil
}
