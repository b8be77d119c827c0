// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

// CompletionService produces chat completions from a language model.
//
// Implementations may include:
//   - OpenAI (gpt-3.5-turbo, gpt-4o)
//   - Anthropic (Claude)
//   - Ollama (local models)
type CompletionService interface {
	// Complete sends the ordered messages and returns the ranked choices.
	// Identical requests to the same model must be cache-equivalent.
	Complete(ctx context.Context, messages []domain.ChatMessage, sampling domain.Sampling) ([]domain.Choice, error)

	// ProviderName returns the provider identifier (for example "openai").
	ProviderName() string

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
