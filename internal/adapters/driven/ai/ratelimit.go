package ai

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

// maxRateLimitRetries is how many times a call rejected with
// domain.ErrRateLimited is retried after waiting for the limiter.
const maxRateLimitRetries = 2

// Ensure the wrappers implement the provider ports.
var (
	_ driven.CompletionService = (*RateLimitedCompletion)(nil)
	_ driven.EmbeddingService  = (*RateLimitedEmbedding)(nil)
)

// NewLimiter returns a token bucket allowing perMinute calls per minute,
// or nil when perMinute is not positive.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// throttled waits for the limiter before each attempt of call and retries
// provider rate limit rejections.
func throttled(ctx context.Context, limiter *rate.Limiter, call func() error) error {
	for attempt := 0; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		err := call()
		if !errors.Is(err, domain.ErrRateLimited) || attempt == maxRateLimitRetries {
			return err
		}
		logger.Warn("Provider rate limited, retrying (%d/%d)", attempt+1, maxRateLimitRetries)
	}
}

// RateLimitedCompletion throttles a completion service.
type RateLimitedCompletion struct {
	driven.CompletionService
	limiter *rate.Limiter
}

// NewRateLimitedCompletion wraps inner with limiter.
func NewRateLimitedCompletion(inner driven.CompletionService, limiter *rate.Limiter) *RateLimitedCompletion {
	return &RateLimitedCompletion{CompletionService: inner, limiter: limiter}
}

// Complete waits for the limiter, then delegates.
func (s *RateLimitedCompletion) Complete(
	ctx context.Context,
	messages []domain.ChatMessage,
	sampling domain.Sampling,
) ([]domain.Choice, error) {
	var choices []domain.Choice
	err := throttled(ctx, s.limiter, func() error {
		var err error
		choices, err = s.CompletionService.Complete(ctx, messages, sampling)
		return err
	})
	return choices, err
}

// RateLimitedEmbedding throttles an embedding service.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimitedEmbedding wraps inner with limiter.
func NewRateLimitedEmbedding(inner driven.EmbeddingService, limiter *rate.Limiter) *RateLimitedEmbedding {
	return &RateLimitedEmbedding{EmbeddingService: inner, limiter: limiter}
}

// Embed waits for the limiter, then delegates.
func (s *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := throttled(ctx, s.limiter, func() error {
		var err error
		vector, err = s.EmbeddingService.Embed(ctx, text)
		return err
	})
	return vector, err
}

// EmbedBatch waits for the limiter, then delegates.
func (s *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := throttled(ctx, s.limiter, func() error {
		var err error
		vectors, err = s.EmbeddingService.EmbedBatch(ctx, texts)
		return err
	})
	return vectors, err
}
