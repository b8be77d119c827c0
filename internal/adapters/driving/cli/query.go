package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

// defaultRawLimit matches the length of the related-documents listing.
const defaultRawLimit = 20

var (
	queryRaw   bool
	queryLimit int
)

var queryCmd = &cobra.Command{
	Use:   "query <text>...",
	Short: "Find the documents relevant to one or more queries",
	Long: `Each argument is a separate query. Documents collect rank-weighted votes
from every query and those with fewer than half the top document's votes
are dropped.

With --raw the arguments form a single query and every embedded document is
listed by similarity, with cumulative token counts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryRaw, "raw", false, "rank all documents by similarity to one query")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0,
		fmt.Sprintf("maximum number of results (default all, %d with --raw)", defaultRawLimit))
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if queryLimit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", domain.ErrInvalidInput)
	}

	if queryRaw {
		return runRawQuery(cmd, strings.Join(args, " "))
	}

	voted, err := retrievalService.Retrieve(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(voted) == 0 {
		cmd.Println("No documents found.")
		return nil
	}
	if queryLimit > 0 && len(voted) > queryLimit {
		voted = voted[:queryLimit]
	}

	rows := make([][]string, len(voted))
	for i, vd := range voted {
		rows[i] = []string{
			vd.Document.Path(),
			strconv.Itoa(vd.Votes),
			vd.Document.Fingerprint.Short(),
		}
	}
	cmd.Println(renderTable([]string{"Document", "Votes", "Fingerprint"}, rows))
	return nil
}

func runRawQuery(cmd *cobra.Command, query string) error {
	ranked, err := retrievalService.Rank(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	limit := queryLimit
	if limit == 0 {
		limit = defaultRawLimit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	rows := make([][]string, len(ranked))
	cumulative := 0
	for i, rd := range ranked {
		cumulative += rd.Document.Record.TokenLength(domain.EncodingCl100kBase)
		rows[i] = []string{
			rd.Document.Path(),
			strconv.FormatFloat(rd.Similarity, 'f', 4, 64),
			strconv.Itoa(cumulative),
		}
	}
	cmd.Println(renderTable([]string{"Document", "Similarity", "Cumulative Tokens"}, rows))
	return nil
}
