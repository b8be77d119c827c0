package driven

import "context"

// SourceFile is one file found under an ingestion root.
type SourceFile struct {
	// Path is relative to the workspace root, slash-separated.
	Path string

	// Content is the raw file bytes.
	Content []byte
}

// SourceTree enumerates source files for ingestion.
type SourceTree interface {
	// Root returns the absolute workspace root all paths are relative to.
	Root() string

	// Rel converts dir to a workspace-relative, slash-separated path.
	// Returns domain.ErrInvalidInput when dir is not an existing directory
	// inside the workspace.
	Rel(dir string) (string, error)

	// Walk returns every regular file under the workspace-relative dir,
	// sorted by path.
	Walk(ctx context.Context, dir string) ([]SourceFile, error)
}

// Watcher reports changes under a directory tree.
type Watcher interface {
	// Watch emits one value per settled burst of changes under dir until
	// ctx is cancelled. The channel is closed when watching stops.
	Watch(ctx context.Context, dir string) (<-chan struct{}, error)
}
