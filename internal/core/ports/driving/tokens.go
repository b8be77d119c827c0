package driving

import (
	"context"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

// TokenStatsService reports how much of a corpus is prose.
type TokenStatsService interface {
	// Analyse compares full and wordy token counts of every file under dir.
	Analyse(ctx context.Context, dir string) (*domain.TokenReport, error)
}
