package driving

import (
	"context"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

// IngestService reconciles a source directory with the document index.
type IngestService interface {
	// Plan classifies every file under dir (and every indexed path under
	// it) as new, changed, removed or unchanged. Plan never mutates state.
	Plan(ctx context.Context, dir string) (*domain.IngestPlan, error)

	// Apply resolves the plan with the given policy. In speculative mode
	// it derives token counts and frontmatter but persists nothing and
	// makes no embedding calls.
	Apply(
		ctx context.Context,
		plan *domain.IngestPlan,
		policy domain.ReconciliationPolicy,
		opts domain.IngestOptions,
	) (*domain.IngestReport, error)

	// Prune deletes stored records that no index entry references and
	// returns their fingerprints. With dryRun nothing is deleted.
	Prune(ctx context.Context, dryRun bool) ([]domain.Fingerprint, error)
}
