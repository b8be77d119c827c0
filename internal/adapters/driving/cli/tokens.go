package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <dir>",
	Short: "Compare full and prose token counts of a directory",
	Long: `Counts cl100k_base tokens of every file under dir, once as written and
once with code fences, punctuation and extra whitespace removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	if tokenStatsService == nil {
		return errors.New("token statistics service not configured")
	}

	report, err := tokenStatsService.Analyse(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("token analysis failed: %w", err)
	}
	if len(report.Files) == 0 {
		cmd.Println("No files found.")
		return nil
	}

	rows := make([][]string, 0, len(report.Files)+2)
	for _, f := range report.Files {
		rows = append(rows, tokenRow(f, f.Ratio()))
	}
	total := report.Total()
	rows = append(rows, tokenRow(total, total.Ratio()))
	// The average row repeats the overall ratio.
	rows = append(rows, tokenRow(report.Average(), total.Ratio()))

	cmd.Println(renderTable([]string{"File", "Full Tokens", "Wordy Tokens", "Ratio"}, rows))
	return nil
}

func tokenRow(s domain.TokenStat, ratio int) []string {
	return []string{s.Path, strconv.Itoa(s.Full), strconv.Itoa(s.Wordy), strconv.Itoa(ratio) + "%"}
}
