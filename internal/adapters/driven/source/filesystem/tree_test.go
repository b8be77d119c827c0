package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestTree(t *testing.T) (*Tree, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "b.md"), "b")
	writeFile(t, filepath.Join(root, "docs", "a.md"), "a")
	writeFile(t, filepath.Join(root, "docs", "fn", "add.md"), "add")
	writeFile(t, filepath.Join(root, "docs", ".draft.md"), "hidden")
	writeFile(t, filepath.Join(root, ".docent", "index.json"), "{}")
	writeFile(t, filepath.Join(root, "other", "c.md"), "c")

	tree, err := NewTree(root)
	require.NoError(t, err)
	return tree, root
}

func TestNewTree(t *testing.T) {
	_, err := NewTree(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "x")
	_, err = NewTree(file)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTree_Rel(t *testing.T) {
	tree, root := newTestTree(t)

	tests := []struct {
		name    string
		dir     string
		want    string
		wantErr bool
	}{
		{name: "root", dir: root, want: "."},
		{name: "subdir", dir: filepath.Join(root, "docs"), want: "docs"},
		{name: "nested", dir: filepath.Join(root, "docs", "fn"), want: "docs/fn"},
		{name: "missing", dir: filepath.Join(root, "nope"), wantErr: true},
		{name: "file", dir: filepath.Join(root, "docs", "a.md"), wantErr: true},
		{name: "outside", dir: t.TempDir(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tree.Rel(tt.dir)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTree_Walk(t *testing.T) {
	tree, _ := newTestTree(t)

	files, err := tree.Walk(context.Background(), "docs")
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"docs/a.md", "docs/b.md", "docs/fn/add.md"}, paths)
	assert.Equal(t, "a", string(files[0].Content))
}

func TestTree_WalkRootSkipsHidden(t *testing.T) {
	tree, _ := newTestTree(t)

	files, err := tree.Walk(context.Background(), ".")
	require.NoError(t, err)
	require.Len(t, files, 4)
	for _, f := range files {
		assert.NotContains(t, f.Path, ".docent")
		assert.NotContains(t, f.Path, ".draft")
	}
}

func TestTree_WalkCancelled(t *testing.T) {
	tree, _ := newTestTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tree.Walk(ctx, "docs")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".hidden", true},
		{".docent", true},
		{"file.md", false},
		{"file.hidden", false},
		{".", false},
		{"..", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsHidden(tt.name), tt.name)
	}
}
