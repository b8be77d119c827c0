package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.records)
}

func TestDocumentStore_PutGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	fp := domain.NewFingerprint("docs/a.md", []byte("x"))

	rec := &domain.DocumentRecord{
		Path:        "docs/a.md",
		Content:     "x",
		Frontmatter: domain.Frontmatter{"type": "function"},
		Embedding:   []float32{1, 0},
	}
	require.NoError(t, store.Put(ctx, fp, rec))

	got, err := store.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// Callers get a copy of the struct, not the stored value.
	got.Path = "changed"
	again, err := store.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "docs/a.md", again.Path)
}

func TestDocumentStore_Get_NotFound(t *testing.T) {
	store := NewDocumentStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Put_Nil(t *testing.T) {
	store := NewDocumentStore()
	err := store.Put(context.Background(), "fp", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStore_ExistsDelete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	ok, err := store.Exists(ctx, "fp")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "fp", &domain.DocumentRecord{Path: "a.md"}))
	ok, err = store.Exists(ctx, "fp")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "fp"))
	require.NoError(t, store.Delete(ctx, "fp"), "deleting twice is not an error")

	ok, err = store.Exists(ctx, "fp")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentStore_List_Sorted(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	for _, fp := range []domain.Fingerprint{"cc", "aa", "bb"} {
		require.NoError(t, store.Put(ctx, fp, &domain.DocumentRecord{}))
	}

	fps, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Fingerprint{"aa", "bb", "cc"}, fps)
}

func TestDocumentIndex_LoadSave(t *testing.T) {
	idx := NewDocumentIndex()
	ctx := context.Background()

	loaded, err := idx.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	in := domain.Index{"a.md": "h1"}
	require.NoError(t, idx.Save(ctx, in))
	in["b.md"] = "h2"

	loaded, err = idx.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Index{"a.md": "h1"}, loaded)
	assert.Equal(t, 1, idx.Saves())
}
