package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driving"
)

// setupTestServices clears every package-level service and disables
// wiring for the duration of the test.
func setupTestServices(t *testing.T) {
	t.Helper()

	oldWire := wire
	oldSettings, oldIngest, oldRetrieval := settingsService, ingestService, retrievalService
	oldAsk, oldTokens, oldWatcher := askService, tokenStatsService, sourceWatcher
	oldPolicy, oldInteractive := defaultPolicy, isInteractive
	oldValidateCompletion, oldValidateEmbedding := validateCompletion, validateEmbedding

	wire = nil
	settingsService = nil
	ingestService = nil
	retrievalService = nil
	askService = nil
	tokenStatsService = nil
	sourceWatcher = nil
	defaultPolicy = domain.DefaultReconciliationPolicy()
	isInteractive = func() bool { return false }
	resetFlags()

	t.Cleanup(func() {
		wire = oldWire
		settingsService, ingestService, retrievalService = oldSettings, oldIngest, oldRetrieval
		askService, tokenStatsService, sourceWatcher = oldAsk, oldTokens, oldWatcher
		defaultPolicy, isInteractive = oldPolicy, oldInteractive
		validateCompletion, validateEmbedding = oldValidateCompletion, oldValidateEmbedding
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
}

// resetFlags restores every command flag to its default and clears Changed.
func resetFlags() {
	reset := func(cmd *cobra.Command, names ...string) {
		for _, name := range names {
			f := cmd.Flags().Lookup(name)
			if f == nil {
				f = cmd.PersistentFlags().Lookup(name)
			}
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	reset(ingestCmd, "speculative", "remap", "on-removed", "on-changed", "watch")
	reset(queryCmd, "raw", "limit")
	reset(pruneCmd, "dry-run")
	reset(rootCmd, "verbose", "config-dir")
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if stdin != nil {
		rootCmd.SetIn(stdin)
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func testDoc(path string, tokens int) domain.Document {
	content := "content of " + path
	return domain.Document{
		Fingerprint: domain.NewFingerprint(path, []byte(content)),
		Record: &domain.DocumentRecord{
			Path:    path,
			Content: content,
			TokenCounts: map[string]domain.TokenCount{
				domain.EncodingCl100kBase: {Length: tokens},
			},
		},
	}
}

// fakeIngest records the calls made by the ingest and prune commands.
type fakeIngest struct {
	plan     *domain.IngestPlan
	planErr  error
	plans    int
	report   *domain.IngestReport
	applyErr error
	policies []domain.ReconciliationPolicy
	opts     []domain.IngestOptions
	orphans  []domain.Fingerprint
	pruneErr error
	dryRuns  []bool
}

var _ driving.IngestService = (*fakeIngest)(nil)

func (f *fakeIngest) Plan(_ context.Context, _ string) (*domain.IngestPlan, error) {
	f.plans++
	return f.plan, f.planErr
}

func (f *fakeIngest) Apply(
	_ context.Context,
	_ *domain.IngestPlan,
	policy domain.ReconciliationPolicy,
	opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	f.policies = append(f.policies, policy)
	f.opts = append(f.opts, opts)
	report := f.report
	if report == nil {
		report = &domain.IngestReport{}
	}
	report.Speculative = opts.Speculative
	return report, f.applyErr
}

func (f *fakeIngest) Prune(_ context.Context, dryRun bool) ([]domain.Fingerprint, error) {
	f.dryRuns = append(f.dryRuns, dryRun)
	return f.orphans, f.pruneErr
}

type fakeRetrieval struct {
	voted   []domain.VotedDocument
	ranked  []domain.RankedDocument
	err     error
	queries [][]string
}

var _ driving.RetrievalService = (*fakeRetrieval)(nil)

func (f *fakeRetrieval) Retrieve(_ context.Context, queries []string) ([]domain.VotedDocument, error) {
	f.queries = append(f.queries, queries)
	return f.voted, f.err
}

func (f *fakeRetrieval) Rank(_ context.Context, query string) ([]domain.RankedDocument, error) {
	f.queries = append(f.queries, []string{query})
	return f.ranked, f.err
}

type fakeAsk struct {
	answer    *domain.Answer
	err       error
	questions []string
}

var _ driving.AskService = (*fakeAsk)(nil)

func (f *fakeAsk) Ask(_ context.Context, question string) (*domain.Answer, error) {
	f.questions = append(f.questions, question)
	return f.answer, f.err
}

type fakeTokenStats struct {
	report *domain.TokenReport
	err    error
}

var _ driving.TokenStatsService = (*fakeTokenStats)(nil)

func (f *fakeTokenStats) Analyse(_ context.Context, _ string) (*domain.TokenReport, error) {
	return f.report, f.err
}

type fakeSettings struct {
	settings domain.AppSettings
	values   map[string]string
	setErr   error
}

var _ driving.SettingsService = (*fakeSettings)(nil)

func newFakeSettings() *fakeSettings {
	return &fakeSettings{settings: domain.DefaultAppSettings(), values: map[string]string{}}
}

func (f *fakeSettings) Get() (*domain.AppSettings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Set(key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	switch key {
	case "completion.provider":
		f.settings.Completion.Provider = domain.AIProvider(value)
	case "completion.model":
		f.settings.Completion.Model = value
	case "completion.api_key":
		f.settings.Completion.APIKey = value
	case "embedding.provider":
		f.settings.Embedding.Provider = domain.AIProvider(value)
	case "embedding.model":
		f.settings.Embedding.Model = value
	}
	return nil
}

func (f *fakeSettings) Keys() []string {
	return []string{"workspace.root", "completion.model"}
}

func (f *fakeSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// fakeWatcher emits the given number of events then closes.
type fakeWatcher struct {
	events int
	err    error
	dirs   []string
}

var _ driven.Watcher = (*fakeWatcher)(nil)

func (f *fakeWatcher) Watch(_ context.Context, dir string) (<-chan struct{}, error) {
	f.dirs = append(f.dirs, dir)
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan struct{}, f.events)
	for i := 0; i < f.events; i++ {
		ch <- struct{}{}
	}
	close(ch)
	return ch, nil
}
