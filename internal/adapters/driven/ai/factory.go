// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/docent-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docent-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docent-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docent-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docent-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil when the provider is not configured (for example a missing API key).
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateCompletionService creates the completion service selected by settings.
// Returns nil when the provider is not configured.
func CreateCompletionService(settings *domain.CompletionSettings) (driven.CompletionService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewCompletionService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewCompletionService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewCompletionService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", settings.Provider)
	}
}

// Providers holds the services built from application settings.
// Either field is nil when its provider is not configured.
type Providers struct {
	Completion driven.CompletionService
	Embedding  driven.EmbeddingService
}

// Close releases both services.
func (p *Providers) Close() {
	if p.Completion != nil {
		p.Completion.Close()
	}
	if p.Embedding != nil {
		p.Embedding.Close()
	}
}

// NewProviders builds both services from settings. When
// RequestsPerMinute is positive they share one rate limiter.
func NewProviders(settings *domain.AppSettings) (*Providers, error) {
	completion, err := CreateCompletionService(&settings.Completion)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCompletionUnavailable, err)
	}

	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		if completion != nil {
			completion.Close()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	if limiter := NewLimiter(settings.Limits.RequestsPerMinute); limiter != nil {
		if completion != nil {
			completion = NewRateLimitedCompletion(completion, limiter)
		}
		if embedding != nil {
			embedding = NewRateLimitedEmbedding(embedding, limiter)
		}
	}

	return &Providers{Completion: completion, Embedding: embedding}, nil
}

// ValidateEmbeddingConfig creates the configured embedding service and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateCompletionConfig creates the configured completion service and pings it.
func ValidateCompletionConfig(settings *domain.CompletionSettings) error {
	svc, err := CreateCompletionService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
