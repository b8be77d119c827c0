package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

func TestTokensCmd(t *testing.T) {
	setupTestServices(t)
	tokenStatsService = &fakeTokenStats{report: &domain.TokenReport{
		Encoding: domain.EncodingCl100kBase,
		Files: []domain.TokenStat{
			{Path: "docs/a.md", Full: 100, Wordy: 50},
			{Path: "docs/b.md", Full: 200, Wordy: 20},
		},
	}}

	out, err := execute(t, nil, "tokens", "docs")
	require.NoError(t, err)

	assert.Contains(t, out, "Wordy Tokens")
	assert.Contains(t, out, "docs/a.md")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "10%")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "300")
	assert.Contains(t, out, "23%")
	assert.Contains(t, out, "Average")
	assert.Contains(t, out, "150")
}

func TestTokensCmd_Empty(t *testing.T) {
	setupTestServices(t)
	tokenStatsService = &fakeTokenStats{report: &domain.TokenReport{}}

	out, err := execute(t, nil, "tokens", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "No files found.")
}

func TestTokensCmd_Errors(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, nil, "tokens", "docs")
	assert.EqualError(t, err, "token statistics service not configured")

	tokenStatsService = &fakeTokenStats{err: domain.ErrInvalidInput}
	_, err = execute(t, nil, "tokens", "docs")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTokenRow(t *testing.T) {
	row := tokenRow(domain.TokenStat{Path: "Average", Full: 7, Wordy: 3}, 42)
	assert.Equal(t, []string{"Average", "7", "3", "42%"}, row)
}
