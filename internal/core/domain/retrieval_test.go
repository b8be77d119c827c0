package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenStat_Ratio(t *testing.T) {
	assert.Equal(t, 0, TokenStat{}.Ratio())
	assert.Equal(t, 66, TokenStat{Full: 3, Wordy: 2}.Ratio())
	assert.Equal(t, 100, TokenStat{Full: 5, Wordy: 5}.Ratio())
}

func TestTokenReport_TotalAndAverage(t *testing.T) {
	r := TokenReport{Files: []TokenStat{
		{Path: "a", Full: 10, Wordy: 5},
		{Path: "b", Full: 5, Wordy: 4},
	}}

	assert.Equal(t, TokenStat{Path: "Total", Full: 15, Wordy: 9}, r.Total())
	assert.Equal(t, TokenStat{Path: "Average", Full: 7, Wordy: 4}, r.Average())
	assert.Equal(t, 60, r.Total().Ratio())

	assert.Equal(t, TokenStat{Path: "Average"}, TokenReport{}.Average())
}
