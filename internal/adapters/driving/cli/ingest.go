package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

var (
	ingestSpeculative bool
	ingestRemap       bool
	ingestOnRemoved   string
	ingestOnChanged   string
	ingestWatch       bool
)

// isInteractive reports whether the policy prompt can ask the operator.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Index a documentation directory",
	Long: `Reconciles the files under dir with the document index. New files are
fingerprinted, token-counted and embedded; removed and changed files are
resolved by the reconciliation policy.

Policies come from --on-removed / --on-changed, then an interactive prompt
when stdin is a terminal, then ingest.on_removed / ingest.on_changed.

  --on-removed  delete | keep
  --on-changed  replace | keep | skip | remap`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestSpeculative, "speculative", "s", false,
		"classify and count tokens without writing or embedding")
	ingestCmd.Flags().BoolVarP(&ingestRemap, "remap", "r", false,
		"move changed records to their new fingerprint without re-embedding")
	ingestCmd.Flags().StringVar(&ingestOnRemoved, "on-removed", "", "policy for removed files")
	ingestCmd.Flags().StringVar(&ingestOnChanged, "on-changed", "", "policy for changed files")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest whenever the directory changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestWatch && ingestSpeculative {
		return fmt.Errorf("%w: --watch cannot be combined with --speculative", domain.ErrInvalidInput)
	}

	dir := args[0]
	policy, err := flagPolicy(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := ingestOnce(ctx, cmd, dir, policy, isInteractive() && !ingestWatch); err != nil {
		return err
	}
	if !ingestWatch {
		return nil
	}
	return watchIngest(ctx, cmd, dir, policy)
}

// ingestOnce plans and applies one reconciliation of dir.
func ingestOnce(ctx context.Context, cmd *cobra.Command, dir string, policy policyChoice, interactive bool) error {
	plan, err := ingestService.Plan(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printPlan(cmd, plan)

	if !plan.Classification.HasPending() {
		cmd.Println("Nothing to do.")
		return nil
	}

	resolved := policy.resolve(defaultPolicy)
	if interactive && !ingestSpeculative {
		resolved = promptPolicy(cmd, bufio.NewReader(cmd.InOrStdin()), plan.Classification, policy, resolved)
	}

	report, err := ingestService.Apply(ctx, plan, resolved, domain.IngestOptions{Speculative: ingestSpeculative})
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return report.Err()
}

// watchIngest re-runs ingestion after each settled burst of changes until
// interrupted. Failed runs are reported and watching continues.
func watchIngest(ctx context.Context, cmd *cobra.Command, dir string, policy policyChoice) error {
	if sourceWatcher == nil {
		return errors.New("watcher not configured")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	events, err := sourceWatcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	cmd.Println(mutedStyle.Render("Watching " + dir + ", press Ctrl+C to stop."))
	for range events {
		cmd.Println()
		if err := ingestOnce(ctx, cmd, dir, policy, false); err != nil {
			cmd.PrintErrln(errorStyle.Render(err.Error()))
		}
	}
	return nil
}

// policyChoice holds the actions fixed by flags. Empty fields are open.
type policyChoice struct {
	removed domain.RemovedAction
	changed domain.ChangedAction
}

func (p policyChoice) resolve(defaults domain.ReconciliationPolicy) domain.ReconciliationPolicy {
	if p.removed != "" {
		defaults.Removed = p.removed
	}
	if p.changed != "" {
		defaults.Changed = p.changed
	}
	return defaults
}

func flagPolicy(cmd *cobra.Command) (policyChoice, error) {
	var p policyChoice

	if cmd.Flags().Changed("on-removed") {
		p.removed = domain.RemovedAction(strings.TrimSpace(ingestOnRemoved))
		if !p.removed.IsValid() {
			return p, fmt.Errorf("%w: --on-removed must be one of %v", domain.ErrInvalidInput, domain.AllRemovedActions())
		}
	}

	if cmd.Flags().Changed("on-changed") {
		p.changed = domain.ChangedAction(strings.TrimSpace(ingestOnChanged))
		if !p.changed.IsValid() {
			return p, fmt.Errorf("%w: --on-changed must be one of %v", domain.ErrInvalidInput, domain.AllChangedActions())
		}
	}

	if ingestRemap {
		if p.changed != "" && p.changed != domain.ChangedRemap {
			return p, fmt.Errorf("%w: --remap conflicts with --on-changed=%s", domain.ErrInvalidInput, p.changed)
		}
		p.changed = domain.ChangedRemap
	}
	return p, nil
}

// promptPolicy asks for every pending class the flags left open.
func promptPolicy(
	cmd *cobra.Command,
	reader *bufio.Reader,
	c domain.Classification,
	fixed policyChoice,
	policy domain.ReconciliationPolicy,
) domain.ReconciliationPolicy {
	if fixed.removed == "" && len(c.Removed) > 0 {
		actions := domain.AllRemovedActions()
		labels := make([]string, len(actions))
		for i, a := range actions {
			labels[i] = a.Description()
		}
		cmd.Printf("\n%d indexed files were removed. What would you like to do?\n", len(c.Removed))
		idx := promptChoice(cmd, reader, labels, indexOf(actions, policy.Removed), func() {
			for _, f := range c.Removed {
				cmd.Printf("  * %s\n", pathStyle.Render(f.Path))
			}
		})
		policy.Removed = actions[idx]
	}

	if fixed.changed == "" && len(c.Changed) > 0 {
		actions := domain.AllChangedActions()
		labels := make([]string, len(actions))
		for i, a := range actions {
			labels[i] = a.Description()
		}
		cmd.Printf("\n%d files have changed. What would you like to do?\n", len(c.Changed))
		idx := promptChoice(cmd, reader, labels, indexOf(actions, policy.Changed), func() {
			for _, f := range c.Changed {
				cmd.Printf("  * %s: %s -> %s\n", pathStyle.Render(f.Path), f.Old.Short(), f.New.Short())
			}
		})
		policy.Changed = actions[idx]
	}

	return policy
}

// promptChoice shows labels plus a "See files" entry that calls list and
// asks again. It returns the chosen label index.
func promptChoice(cmd *cobra.Command, reader *bufio.Reader, labels []string, defaultIdx int, list func()) int {
	for {
		for i, label := range labels {
			cmd.Printf("  %d. %s\n", i+1, label)
		}
		see := len(labels) + 1
		cmd.Printf("  %d. See files\n", see)
		cmd.Printf("\nEnter choice [%d]: ", defaultIdx+1)

		input, err := reader.ReadString('\n')
		choice := parseChoice(strings.TrimSpace(input), see, defaultIdx+1)
		if choice == see && err == nil {
			list()
			continue
		}
		if choice == see {
			choice = defaultIdx + 1
		}
		if err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("Reading choice: %v", err)
		}
		return choice - 1
	}
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return 0
}

func printPlan(cmd *cobra.Command, plan *domain.IngestPlan) {
	c := plan.Classification
	cmd.Println(titleStyle.Render(fmt.Sprintf("Ingesting %s (%d files)", plan.Root, c.Total())))
	cmd.Printf("  new:       %d\n", len(c.New))
	cmd.Printf("  changed:   %d\n", len(c.Changed))
	cmd.Printf("  removed:   %d\n", len(c.Removed))
	cmd.Printf("  unchanged: %d\n", len(c.Unchanged))
	if len(c.Stale) > 0 {
		cmd.Printf("  stale:     %d\n", len(c.Stale))
	}
}

func printReport(cmd *cobra.Command, r *domain.IngestReport) {
	cmd.Println()
	cmd.Printf("Generated %d records%s\n", len(r.Generated), formatTotals(r.TokenTotals))
	if len(r.Refreshed) > 0 {
		cmd.Printf("Refreshed %d embeddings\n", len(r.Refreshed))
	}
	if len(r.Remapped) > 0 {
		cmd.Printf("Remapped %d records\n", len(r.Remapped))
	}
	if len(r.Deleted) > 0 {
		cmd.Printf("Deleted %d records\n", len(r.Deleted))
	}
	if len(r.Skipped) > 0 {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Skipped %d changed files, their index entries still point at old content", len(r.Skipped))))
	}
	if len(r.Orphaned) > 0 {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Kept %d unreferenced records, run 'docent prune' to remove them", len(r.Orphaned))))
	}
	for _, f := range r.Failures {
		cmd.Println(errorStyle.Render(fmt.Sprintf("Failed %s: %v", f.Path, f.Err)))
	}
	if r.Speculative {
		cmd.Println(mutedStyle.Render("Speculative run, nothing was written."))
	}
	logger.Info("Run %s finished in %s", r.RunID, r.Duration)
}

func formatTotals(totals map[string]int) string {
	if len(totals) == 0 {
		return ""
	}
	encodings := make([]string, 0, len(totals))
	for enc := range totals {
		encodings = append(encodings, enc)
	}
	sort.Strings(encodings)

	parts := make([]string, len(encodings))
	for i, enc := range encodings {
		parts[i] = fmt.Sprintf("%s: %d tokens", enc, totals[enc])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
