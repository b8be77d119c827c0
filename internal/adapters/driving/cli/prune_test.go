package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

func TestPruneCmd(t *testing.T) {
	fp := domain.NewFingerprint("a.md", []byte("a"))

	tests := []struct {
		name    string
		args    []string
		orphans []domain.Fingerprint
		dryRun  bool
		want    string
	}{
		{name: "nothing", args: nil, want: "No unreferenced records."},
		{name: "delete", args: nil, orphans: []domain.Fingerprint{fp}, want: "Deleted 1 records."},
		{name: "dry run", args: []string{"--dry-run"}, orphans: []domain.Fingerprint{fp}, dryRun: true, want: "Would delete 1 records."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestServices(t)
			fake := &fakeIngest{orphans: tt.orphans}
			ingestService = fake

			out, err := execute(t, nil, append([]string{"prune"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, []bool{tt.dryRun}, fake.dryRuns)
			assert.Contains(t, out, tt.want)
			for _, o := range tt.orphans {
				assert.Contains(t, out, o.String())
			}
		})
	}
}

func TestPruneCmd_Errors(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, nil, "prune")
	assert.EqualError(t, err, "ingest service not configured")

	ingestService = &fakeIngest{pruneErr: domain.ErrNotFound}
	_, err = execute(t, nil, "prune")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
