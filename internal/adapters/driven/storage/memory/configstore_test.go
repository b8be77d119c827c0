package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Typed(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("completion.model", "gpt-3.5-turbo"))
	require.NoError(t, s.Set("retrieval.vote_limit", int64(3)))
	require.NoError(t, s.Set("ask.planning_top_p", 0.3))
	require.NoError(t, s.Set("ingest.encodings", []any{"cl100k_base", 1, "p50k_base"}))

	assert.Equal(t, "gpt-3.5-turbo", s.GetString("completion.model"))
	assert.Equal(t, 3, s.GetInt("retrieval.vote_limit"))
	assert.InDelta(t, 0.3, s.GetFloat("ask.planning_top_p"), 1e-9)
	assert.InDelta(t, 3.0, s.GetFloat("retrieval.vote_limit"), 1e-9)
	assert.Equal(t, []string{"cl100k_base", "p50k_base"}, s.GetStringSlice("ingest.encodings"))
}

func TestConfigStore_Missing(t *testing.T) {
	s := NewConfigStore()
	assert.Equal(t, "", s.GetString("x"))
	assert.Equal(t, 0, s.GetInt("x"))
	assert.Zero(t, s.GetFloat("x"))
	assert.Nil(t, s.GetStringSlice("x"))
	_, ok := s.Get("x")
	assert.False(t, ok)
}

func TestConfigStore_WrongType(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("k", true))
	assert.Equal(t, "", s.GetString("k"))
	assert.Zero(t, s.GetFloat("k"))
	assert.Equal(t, ":memory:", s.Path())
	assert.NoError(t, s.Load())
}
