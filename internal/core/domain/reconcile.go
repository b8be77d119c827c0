package domain

import (
	"errors"
	"fmt"
	"time"
)

// ChangeKind classifies a path during ingestion reconciliation.
type ChangeKind string

// Reconciliation classes.
const (
	ChangeNew       ChangeKind = "new"
	ChangeChanged   ChangeKind = "changed"
	ChangeRemoved   ChangeKind = "removed"
	ChangeUnchanged ChangeKind = "unchanged"

	// ChangeStale is unchanged content whose record has no embedding, or
	// one from a different embedding model.
	ChangeStale ChangeKind = "stale"
)

// FileChange is one classified path.
type FileChange struct {
	// Path is the workspace-relative, slash-separated path.
	Path string

	// Kind is the reconciliation class.
	Kind ChangeKind

	// Old is the indexed fingerprint (empty for new files).
	Old Fingerprint

	// New is the on-disk fingerprint (empty for removed files).
	New Fingerprint

	// RecordMissing marks an indexed path whose fingerprint has no stored
	// record. Such files are changed even when their content is not.
	RecordMissing bool

	// Content is the raw file content for new and changed files.
	Content []byte
}

// Classification is the result of comparing the index with a directory tree.
type Classification struct {
	New       []FileChange
	Changed   []FileChange
	Removed   []FileChange
	Unchanged []FileChange
	Stale     []FileChange
}

// HasPending reports whether any path needs work.
func (c Classification) HasPending() bool {
	return len(c.New) > 0 || len(c.Changed) > 0 || len(c.Removed) > 0 || len(c.Stale) > 0
}

// Total returns the number of classified paths.
func (c Classification) Total() int {
	return len(c.New) + len(c.Changed) + len(c.Removed) + len(c.Unchanged) + len(c.Stale)
}

// RemovedAction resolves indexed paths that no longer exist on disk.
type RemovedAction string

// Removed policies.
const (
	// RemovedKeep prunes the index entry but retains the stored record.
	// The record becomes an orphan until "docent prune" collects it.
	RemovedKeep RemovedAction = "keep"

	// RemovedDelete removes both the record and the index entry.
	RemovedDelete RemovedAction = "delete"
)

// IsValid returns true if the action is recognised.
func (a RemovedAction) IsValid() bool {
	return a == RemovedKeep || a == RemovedDelete
}

// String returns the string representation.
func (a RemovedAction) String() string {
	return string(a)
}

// Description returns a human-readable description of the action.
func (a RemovedAction) Description() string {
	switch a {
	case RemovedKeep:
		return "Keep stored records, drop index entries"
	case RemovedDelete:
		return "Delete stored records and index entries"
	default:
		return unknownDescription
	}
}

// ChangedAction resolves indexed paths whose content changed.
type ChangedAction string

// Changed policies.
const (
	// ChangedSkip keeps the old record and leaves the index on the old
	// fingerprint. Content and index diverge until the next re-ingestion.
	ChangedSkip ChangedAction = "skip"

	// ChangedKeep keeps the old record and also generates a new one.
	ChangedKeep ChangedAction = "keep"

	// ChangedReplace deletes the old record and generates a new one.
	ChangedReplace ChangedAction = "replace"

	// ChangedRemap moves the old record to the new fingerprint. Frontmatter
	// and token counts are derived again; only the embedding is carried over.
	ChangedRemap ChangedAction = "remap"
)

// IsValid returns true if the action is recognised.
func (a ChangedAction) IsValid() bool {
	switch a {
	case ChangedSkip, ChangedKeep, ChangedReplace, ChangedRemap:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (a ChangedAction) String() string {
	return string(a)
}

// Description returns a human-readable description of the action.
func (a ChangedAction) Description() string {
	switch a {
	case ChangedSkip:
		return "Keep current records, skip new ones"
	case ChangedKeep:
		return "Keep current records and generate new ones"
	case ChangedReplace:
		return "Delete current records and generate new ones"
	case ChangedRemap:
		return "Move current records to the new content without regenerating"
	default:
		return unknownDescription
	}
}

// AllRemovedActions returns every removed policy in menu order.
func AllRemovedActions() []RemovedAction {
	return []RemovedAction{RemovedDelete, RemovedKeep}
}

// AllChangedActions returns every changed policy in menu order.
func AllChangedActions() []ChangedAction {
	return []ChangedAction{ChangedReplace, ChangedKeep, ChangedSkip, ChangedRemap}
}

// ReconciliationPolicy is the operator's choice for each pending class.
type ReconciliationPolicy struct {
	Removed RemovedAction
	Changed ChangedAction
}

// DefaultReconciliationPolicy deletes removed records and replaces changed ones.
func DefaultReconciliationPolicy() ReconciliationPolicy {
	return ReconciliationPolicy{
		Removed: RemovedDelete,
		Changed: ChangedReplace,
	}
}

// Validate checks both actions are recognised.
func (p ReconciliationPolicy) Validate() error {
	if !p.Removed.IsValid() {
		return fmt.Errorf("%w: removed action %q", ErrInvalidInput, p.Removed)
	}
	if !p.Changed.IsValid() {
		return fmt.Errorf("%w: changed action %q", ErrInvalidInput, p.Changed)
	}
	return nil
}

// IngestOptions configures one ingestion run.
type IngestOptions struct {
	// Speculative classifies and derives cheap data without persisting
	// anything or calling the embedding provider.
	Speculative bool
}

// IngestFailure records a file that could not be ingested.
type IngestFailure struct {
	Path string
	Err  error
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// RunID identifies the run in logs.
	RunID string

	// Root is the ingestion root relative to the workspace.
	Root string

	// Speculative is true for dry runs.
	Speculative bool

	// Policy is the policy applied to removed and changed files.
	Policy ReconciliationPolicy

	// Classification is the reconciliation result.
	Classification Classification

	// Generated are the files whose records were (or would be) written.
	Generated []FileChange

	// Remapped are changed files whose old record moved to the new fingerprint.
	Remapped []FileChange

	// Skipped are changed files left on their old fingerprint.
	Skipped []FileChange

	// Refreshed are stale records whose embedding was (or would be) filled.
	Refreshed []FileChange

	// Deleted are record fingerprints removed from the store.
	Deleted []Fingerprint

	// Orphaned are record fingerprints retained without an index entry.
	Orphaned []Fingerprint

	// TokenTotals sums token counts per encoding over generated files.
	TokenTotals map[string]int

	// Failures are per-file errors. Other files are still persisted.
	Failures []IngestFailure

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Err joins per-file failures, or returns nil when every file succeeded.
func (r *IngestReport) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
	}
	return errors.Join(errs...)
}

// IngestPlan is the classification of one ingestion root against a snapshot
// of the index. Applying a plan mutates only the paths it classified.
type IngestPlan struct {
	// Root is the ingestion root relative to the workspace.
	Root string

	// Index is the index snapshot the plan was computed against.
	Index Index

	// Classification is the reconciliation result.
	Classification Classification
}
