package driving

import (
	"context"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

// AskService answers a question with a planning and an answering completion.
type AskService interface {
	// Ask runs both phases. When the answering completion has no Reply
	// body it returns the partial Answer together with domain.ErrEmptyReply.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}
