package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const waitFor = 5 * time.Second

func expectChange(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case _, ok := <-changes:
		require.True(t, ok, "channel closed before a change was reported")
	case <-time.After(waitFor):
		t.Fatal("no change reported")
	}
}

func TestWatcher_ReportsSettledChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := NewWatcher(50*time.Millisecond).Watch(ctx, dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte('a' + i)}, 0644))
	}
	expectChange(t, changes)

	cancel()
	for range changes {
	}
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := NewWatcher(50*time.Millisecond).Watch(ctx, dir)
	require.NoError(t, err)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	expectChange(t, changes)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.md"), []byte("b"), 0644))
	expectChange(t, changes)

	cancel()
	for range changes {
	}
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := NewWatcher(0).Watch(ctx, t.TempDir())
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(waitFor):
		t.Fatal("channel not closed")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := NewWatcher(0).Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewWatcher_DefaultDebounce(t *testing.T) {
	assert.Equal(t, DefaultDebounce, NewWatcher(0).debounce)
	assert.Equal(t, time.Second, NewWatcher(time.Second).debounce)
}
