// Package cli implements the docent command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

// version is set by the build.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services used by commands. wireServices builds them from the
// configuration before a command runs; tests assign them directly.
var (
	settingsService   driving.SettingsService
	ingestService     driving.IngestService
	retrievalService  driving.RetrievalService
	askService        driving.AskService
	tokenStatsService driving.TokenStatsService
	sourceWatcher     driven.Watcher

	// defaultPolicy resolves reconciliation when no flag or prompt decides.
	defaultPolicy = domain.DefaultReconciliationPolicy()
)

// wire builds the services for a command. Nil keeps whatever is assigned.
var wire = wireServices

// closeServices releases provider connections after a command.
var closeServices func()

var rootCmd = &cobra.Command{
	Use:   "docent",
	Short: "Documentation assistant over a local corpus",
	Long: `Docent ingests a directory of documentation, embeds every file and
answers questions about it with a two-phase prompt: a planning completion
picks what to look up, and an answering completion replies over the
documents found.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if wire == nil || !needsServices(cmd) {
			return nil
		}
		return wire(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if closeServices != nil {
			closeServices()
			closeServices = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"directory holding config.toml and prompts (default .docent)")
}

// Execute runs the root command with the given build version.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}

func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	for c := cmd; c.HasParent(); c = c.Parent() {
		if c.Name() == "completion" && !c.Parent().HasParent() {
			return false
		}
	}
	return true
}
