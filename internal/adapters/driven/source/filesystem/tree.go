// Package filesystem provides the local source tree and directory watcher
// used by ingestion.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

// Ensure Tree implements the interface.
var _ driven.SourceTree = (*Tree)(nil)

// Tree reads source files below a workspace root. Hidden files and
// directories (a leading dot) are skipped, which keeps the data directory
// out of the corpus.
type Tree struct {
	root string
}

// NewTree creates a tree rooted at root.
func NewTree(root string) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: workspace root %s: %v", domain.ErrInvalidInput, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: workspace root %s is not a directory", domain.ErrInvalidInput, abs)
	}
	return &Tree{root: abs}, nil
}

// Root returns the absolute workspace root.
func (t *Tree) Root() string {
	return t.root
}

// Rel converts dir, absolute or relative to the working directory, to a
// slash-separated path relative to the workspace root.
func (t *Tree) Rel(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s does not exist", domain.ErrInvalidInput, dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	rel, err := filepath.Rel(t.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the workspace %s", domain.ErrInvalidInput, dir, t.root)
	}
	return filepath.ToSlash(rel), nil
}

// Walk reads every visible regular file under the workspace-relative dir.
func (t *Tree) Walk(ctx context.Context, dir string) ([]driven.SourceFile, error) {
	start := filepath.Join(t.root, filepath.FromSlash(dir))

	var files []driven.SourceFile
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path != start && IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(t.root, path)
		if err != nil {
			return err
		}
		files = append(files, driven.SourceFile{Path: filepath.ToSlash(rel), Content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// IsHidden reports whether a file or directory name starts with a dot.
// "." and ".." are not hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
