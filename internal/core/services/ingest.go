package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestConfig holds ingestion settings.
type IngestConfig struct {
	// Encodings are the token encodings counted for every document.
	Encodings []string
}

// IngestService reconciles source trees with the document index and store.
type IngestService struct {
	tree      driven.SourceTree
	index     driven.DocumentIndex
	store     driven.DocumentStore
	embedder  driven.EmbeddingService
	tokenizer driven.Tokenizer
	config    IngestConfig
}

// NewIngestService creates an ingestion engine. embedder may be nil for
// speculative runs; a run that needs an embedding then fails with
// ErrEmbeddingUnavailable.
func NewIngestService(
	tree driven.SourceTree,
	index driven.DocumentIndex,
	store driven.DocumentStore,
	embedder driven.EmbeddingService,
	tokenizer driven.Tokenizer,
	config IngestConfig,
) *IngestService {
	if len(config.Encodings) == 0 {
		config.Encodings = domain.DefaultAppSettings().Ingest.Encodings
	}
	return &IngestService{
		tree:      tree,
		index:     index,
		store:     store,
		embedder:  embedder,
		tokenizer: tokenizer,
		config:    config,
	}
}

// Plan classifies the files under dir against the current index.
func (s *IngestService) Plan(ctx context.Context, dir string) (*domain.IngestPlan, error) {
	root, err := s.tree.Rel(dir)
	if err != nil {
		return nil, err
	}

	files, err := s.tree.Walk(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	index, err := s.index.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	plan := &domain.IngestPlan{Root: root, Index: index}
	c := &plan.Classification

	onDisk := make(map[string]bool, len(files))
	for _, f := range files {
		onDisk[f.Path] = true
		change := domain.FileChange{
			Path:    f.Path,
			New:     domain.NewFingerprint(f.Path, f.Content),
			Content: f.Content,
		}

		old, indexed := index[f.Path]
		if !indexed {
			change.Kind = domain.ChangeNew
			c.New = append(c.New, change)
			continue
		}

		change.Old = old
		if old != change.New {
			exists, err := s.store.Exists(ctx, old)
			if err != nil {
				return nil, fmt.Errorf("check record %s: %w", old.Short(), err)
			}
			change.RecordMissing = !exists
			change.Kind = domain.ChangeChanged
			c.Changed = append(c.Changed, change)
			continue
		}

		rec, err := s.store.Get(ctx, old)
		if errors.Is(err, domain.ErrNotFound) {
			change.RecordMissing = true
			change.Kind = domain.ChangeChanged
			c.Changed = append(c.Changed, change)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read record %s: %w", old.Short(), err)
		}

		change.Content = nil
		if s.stale(rec) {
			change.Kind = domain.ChangeStale
			c.Stale = append(c.Stale, change)
			continue
		}
		change.Kind = domain.ChangeUnchanged
		c.Unchanged = append(c.Unchanged, change)
	}

	for _, p := range index.PathsUnder(root) {
		if !onDisk[p] {
			c.Removed = append(c.Removed, domain.FileChange{
				Path: p,
				Kind: domain.ChangeRemoved,
				Old:  index[p],
			})
		}
	}

	logger.Debug("Plan %s: %d new, %d changed, %d removed, %d unchanged, %d stale",
		root, len(c.New), len(c.Changed), len(c.Removed), len(c.Unchanged), len(c.Stale))
	return plan, nil
}

// stale reports whether rec needs its embedding filled or recomputed. Without
// an embedder only a missing embedding can be detected.
func (s *IngestService) stale(rec *domain.DocumentRecord) bool {
	if !rec.HasEmbedding() {
		return true
	}
	return s.embedder != nil && rec.EmbeddingModel != s.embedder.ModelName()
}

// Apply resolves plan with policy. Per-file derivation failures are
// collected in the report and do not stop the run. Provider and store
// failures are fatal; the index is saved first so records already
// written stay reachable.
func (s *IngestService) Apply(
	ctx context.Context,
	plan *domain.IngestPlan,
	policy domain.ReconciliationPolicy,
	opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: nil plan", domain.ErrInvalidInput)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	run := &ingestRun{
		IngestService: s,
		dry:           opts.Speculative,
		entries:       plan.Index.Clone(),
		report: &domain.IngestReport{
			RunID:          uuid.NewString(),
			Root:           plan.Root,
			Speculative:    opts.Speculative,
			Policy:         policy,
			Classification: plan.Classification,
			TokenTotals:    map[string]int{},
		},
	}
	logger.Section("Ingest " + run.report.RunID)

	err := run.apply(ctx, plan.Classification, policy)

	if !run.dry && plan.Classification.HasPending() {
		if saveErr := s.index.Save(ctx, run.entries); saveErr != nil {
			err = errors.Join(err, fmt.Errorf("save index: %w", saveErr))
		}
	}

	run.report.Duration = time.Since(start)
	return run.report, err
}

// Prune deletes stored records that the index does not reference.
func (s *IngestService) Prune(ctx context.Context, dryRun bool) ([]domain.Fingerprint, error) {
	index, err := s.index.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	fps, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	referenced := make(map[domain.Fingerprint]bool, len(index))
	for _, fp := range index {
		referenced[fp] = true
	}

	var orphans []domain.Fingerprint
	for _, fp := range fps {
		if referenced[fp] {
			continue
		}
		orphans = append(orphans, fp)
		if dryRun {
			continue
		}
		if err := s.store.Delete(ctx, fp); err != nil {
			return orphans, fmt.Errorf("delete record %s: %w", fp.Short(), err)
		}
		logger.Debug("Pruned %s", fp.Short())
	}
	return orphans, nil
}

// ingestRun is the mutable state of one Apply call.
type ingestRun struct {
	*IngestService
	dry     bool
	entries domain.Index
	report  *domain.IngestReport
}

func (r *ingestRun) apply(ctx context.Context, c domain.Classification, policy domain.ReconciliationPolicy) error {
	for _, change := range c.Removed {
		if err := r.remove(ctx, change, policy.Removed); err != nil {
			return err
		}
	}

	for _, change := range c.Changed {
		if err := r.change(ctx, change, policy.Changed); err != nil {
			return err
		}
	}

	for _, change := range c.New {
		if err := r.generate(ctx, change); err != nil {
			return err
		}
	}

	for _, change := range c.Stale {
		if err := r.refresh(ctx, change); err != nil {
			return err
		}
	}
	return nil
}

func (r *ingestRun) remove(ctx context.Context, change domain.FileChange, action domain.RemovedAction) error {
	delete(r.entries, change.Path)

	if action == domain.RemovedKeep {
		r.report.Orphaned = append(r.report.Orphaned, change.Old)
		return nil
	}

	if !r.dry {
		if err := r.store.Delete(ctx, change.Old); err != nil {
			return fmt.Errorf("delete record %s: %w", change.Old.Short(), err)
		}
	}
	logger.Debug("Removed %s (%s)", change.Path, change.Old.Short())
	r.report.Deleted = append(r.report.Deleted, change.Old)
	return nil
}

func (r *ingestRun) change(ctx context.Context, change domain.FileChange, action domain.ChangedAction) error {
	if change.RecordMissing {
		return r.generate(ctx, change)
	}

	switch action {
	case domain.ChangedSkip:
		logger.Debug("Skipped %s, index stays at %s", change.Path, change.Old.Short())
		r.report.Skipped = append(r.report.Skipped, change)
		return nil

	case domain.ChangedKeep:
		generated := len(r.report.Generated)
		if err := r.generate(ctx, change); err != nil {
			return err
		}
		if len(r.report.Generated) > generated {
			r.report.Orphaned = append(r.report.Orphaned, change.Old)
		}
		return nil

	case domain.ChangedRemap:
		return r.remap(ctx, change)

	default:
		return r.replace(ctx, change)
	}
}

// replace writes the new record before deleting the old one, so a failed
// derivation leaves the old record and index entry in place.
func (r *ingestRun) replace(ctx context.Context, change domain.FileChange) error {
	generated := len(r.report.Generated)
	if err := r.generate(ctx, change); err != nil {
		return err
	}
	if len(r.report.Generated) == generated {
		return nil
	}

	if !r.dry {
		if err := r.store.Delete(ctx, change.Old); err != nil {
			return fmt.Errorf("delete record %s: %w", change.Old.Short(), err)
		}
	}
	r.report.Deleted = append(r.report.Deleted, change.Old)
	return nil
}

// remap moves the old record's embedding onto freshly derived local data.
func (r *ingestRun) remap(ctx context.Context, change domain.FileChange) error {
	old, err := r.store.Get(ctx, change.Old)
	if errors.Is(err, domain.ErrNotFound) {
		return r.generate(ctx, change)
	}
	if err != nil {
		return fmt.Errorf("read record %s: %w", change.Old.Short(), err)
	}

	rec, ok := r.derive(change)
	if !ok {
		return nil
	}
	rec.Embedding = old.Embedding
	rec.EmbeddingModel = old.EmbeddingModel

	if !r.dry {
		if err := r.store.Put(ctx, change.New, rec); err != nil {
			return fmt.Errorf("write record %s: %w", change.New.Short(), err)
		}
		if err := r.store.Delete(ctx, change.Old); err != nil {
			return fmt.Errorf("delete record %s: %w", change.Old.Short(), err)
		}
	}
	r.entries[change.Path] = change.New
	logger.Debug("Remapped %s (%s -> %s)", change.Path, change.Old.Short(), change.New.Short())
	r.report.Remapped = append(r.report.Remapped, change)
	return nil
}

// refresh embeds an unchanged record again and stores it under the same
// fingerprint. Content, frontmatter and token counts are left as stored.
func (r *ingestRun) refresh(ctx context.Context, change domain.FileChange) error {
	if !r.dry {
		if r.embedder == nil {
			return domain.ErrEmbeddingUnavailable
		}
		rec, err := r.store.Get(ctx, change.Old)
		if err != nil {
			return fmt.Errorf("read record %s: %w", change.Old.Short(), err)
		}
		vector, err := r.embedder.Embed(ctx, rec.Content)
		if err != nil {
			return fmt.Errorf("embed %s: %w", change.Path, err)
		}
		rec.Embedding = vector
		rec.EmbeddingModel = r.embedder.ModelName()

		if err := r.store.Put(ctx, change.Old, rec); err != nil {
			return fmt.Errorf("write record %s: %w", change.Old.Short(), err)
		}
	}

	logger.Debug("Refreshed embedding of %s (%s)", change.Path, change.Old.Short())
	r.report.Refreshed = append(r.report.Refreshed, change)
	return nil
}

// generate derives, embeds and stores the record for change. A derivation
// failure is recorded in the report and returns nil.
func (r *ingestRun) generate(ctx context.Context, change domain.FileChange) error {
	rec, ok := r.derive(change)
	if !ok {
		return nil
	}

	if !r.dry {
		if r.embedder == nil {
			return domain.ErrEmbeddingUnavailable
		}
		vector, err := r.embedder.Embed(ctx, rec.Content)
		if err != nil {
			return fmt.Errorf("embed %s: %w", change.Path, err)
		}
		rec.Embedding = vector
		rec.EmbeddingModel = r.embedder.ModelName()

		if err := r.store.Put(ctx, change.New, rec); err != nil {
			return fmt.Errorf("write record %s: %w", change.New.Short(), err)
		}
	}

	r.entries[change.Path] = change.New
	logger.Debug("Generated %s (%s)", change.Path, change.New.Short())
	r.report.Generated = append(r.report.Generated, change)
	for enc, tc := range rec.TokenCounts {
		r.report.TokenTotals[enc] += tc.Length
	}
	return nil
}

// derive computes the local fields of a record: frontmatter and token counts.
func (r *ingestRun) derive(change domain.FileChange) (*domain.DocumentRecord, bool) {
	content := string(change.Content)

	fm, err := domain.ParseFrontmatter(content)
	if err != nil {
		r.fail(change.Path, err)
		return nil, false
	}

	counts := make(map[string]domain.TokenCount, len(r.config.Encodings))
	for _, enc := range r.config.Encodings {
		ids, err := r.tokenizer.Encode(enc, content)
		if err != nil {
			r.fail(change.Path, fmt.Errorf("encode %s: %w", enc, err))
			return nil, false
		}
		counts[enc] = domain.NewTokenCount(ids)
	}

	return &domain.DocumentRecord{
		Path:        change.Path,
		Content:     content,
		Frontmatter: fm,
		TokenCounts: counts,
	}, true
}

func (r *ingestRun) fail(path string, err error) {
	logger.Warn("Skipping %s: %v", path, err)
	r.report.Failures = append(r.report.Failures, domain.IngestFailure{Path: path, Err: err})
}
