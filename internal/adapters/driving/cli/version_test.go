package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, nil, "version")
	defer rootCmd.SetArgs(nil)

	require.NoError(t, err)
	assert.Contains(t, out, "docent version test-version-1.0.0")
}

func TestVersionCmd_SkipsWiring(t *testing.T) {
	setupTestServices(t)
	wired := false
	wire = func(*cobra.Command) error {
		wired = true
		return nil
	}

	_, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.False(t, wired)
}

func TestNeedsServices(t *testing.T) {
	root := &cobra.Command{Use: "docent"}
	completion := &cobra.Command{Use: "completion"}
	bash := &cobra.Command{Use: "bash"}
	settings := &cobra.Command{Use: "settings"}
	settingsCompletion := &cobra.Command{Use: "completion"}
	ask := &cobra.Command{Use: "ask"}
	root.AddCommand(completion, settings, ask)
	completion.AddCommand(bash)
	settings.AddCommand(settingsCompletion)

	assert.False(t, needsServices(completion))
	assert.False(t, needsServices(bash))
	assert.True(t, needsServices(settingsCompletion), "only the root completion tree skips wiring")
	assert.True(t, needsServices(ask))
}

func TestCompletionCmd_SkipsWiring(t *testing.T) {
	setupTestServices(t)
	wired := false
	wire = func(*cobra.Command) error {
		wired = true
		return nil
	}

	out, err := execute(t, nil, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "docent")
	assert.False(t, wired)
}
