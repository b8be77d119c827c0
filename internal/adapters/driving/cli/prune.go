package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stored records the index no longer references",
	Long: `Records become unreferenced when removed files are kept or changed files
keep their old record. Prune deletes them.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "list unreferenced records without deleting")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	orphans, err := ingestService.Prune(cmd.Context(), pruneDryRun)
	for _, fp := range orphans {
		cmd.Printf("  %s\n", fp)
	}
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}

	switch {
	case len(orphans) == 0:
		cmd.Println("No unreferenced records.")
	case pruneDryRun:
		cmd.Printf("Would delete %d records.\n", len(orphans))
	default:
		cmd.Printf("Deleted %d records.\n", len(orphans))
	}
	return nil
}
