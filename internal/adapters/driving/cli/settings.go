package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docent-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

// Provider connectivity checks, replaceable in tests.
var (
	validateCompletion = ai.ValidateCompletionConfig
	validateEmbedding  = ai.ValidateEmbeddingConfig
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in config.toml.

API keys may also come from OPENAI_API_KEY and ANTHROPIC_API_KEY, in the
environment or in a .env file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one setting",
	Long:  `Set one setting by its dot-notation key. Run 'docent settings keys' for the list.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the configured providers are reachable",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

var settingsCompletionCmd = &cobra.Command{
	Use:   "completion",
	Short: "Configure the completion provider",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCompletion,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Args:  cobra.NoArgs,
	RunE:  runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsCompletionCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Workspace]")
	cmd.Printf("  Root: %s\n", settings.Workspace.Root)
	cmd.Printf("  Data: %s\n", settings.Workspace.DataDir)
	cmd.Println()

	printProvider(cmd, "Completion", settings.Completion)
	printProvider(cmd, "Embedding", settings.Embedding)

	cmd.Println("[Ingest]")
	cmd.Printf("  Encodings: %s\n", strings.Join(settings.Ingest.Encodings, ", "))
	cmd.Printf("  On removed: %s\n", settings.Ingest.Policy.Removed.Description())
	cmd.Printf("  On changed: %s\n", settings.Ingest.Policy.Changed.Description())
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Vote limit: %d\n", settings.Retrieval.VoteLimit)
	if settings.Retrieval.LookupNamePrefix != "" {
		cmd.Printf("  Name prefix: %s\n", settings.Retrieval.LookupNamePrefix)
	}
	cmd.Println()

	cmd.Println("[Ask]")
	cmd.Printf("  Planning: top_p %g, frequency penalty %g\n",
		settings.Ask.Planning.TopP, settings.Ask.Planning.FrequencyPenalty)
	cmd.Printf("  Answering: top_p %g, frequency penalty %g\n",
		settings.Ask.Answering.TopP, settings.Ask.Answering.FrequencyPenalty)

	if settings.Limits.RequestsPerMinute > 0 {
		cmd.Println()
		cmd.Println("[Limits]")
		cmd.Printf("  Requests per minute: %d\n", settings.Limits.RequestsPerMinute)
	}
	return nil
}

func printProvider(cmd *cobra.Command, title string, p domain.ProviderSettings) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n", p.Provider.Description())
	cmd.Printf("  Model: %s\n", p.Model)
	if p.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", p.BaseURL)
	}
	if p.Provider.RequiresAPIKey() {
		if p.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(p.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !p.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, ".api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s to %s\n", key, shown)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var errs []error
	check := func(name string, p domain.ProviderSettings, validate func() error) {
		cmd.Printf("%s (%s, %s)... ", name, p.Provider, p.Model)
		if !p.IsConfigured() {
			cmd.Println(warningStyle.Render("not configured"))
			errs = append(errs, fmt.Errorf("%s provider not configured", name))
			return
		}
		if err := validate(); err != nil {
			cmd.Println(errorStyle.Render("FAILED"))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		cmd.Println("OK")
	}

	check("completion", settings.Completion, func() error { return validateCompletion(&settings.Completion) })
	check("embedding", settings.Embedding, func() error { return validateEmbedding(&settings.Embedding) })
	return errors.Join(errs...)
}

func runSettingsCompletion(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), "completion",
		domain.AllCompletionProviders(), domain.DefaultCompletionModels(),
		func(s *domain.AppSettings) error { return validateCompletion(&s.Completion) })
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), "embedding",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels(),
		func(s *domain.AppSettings) error { return validateEmbedding(&s.Embedding) })
}

// configureProvider asks for provider, model and API key, stores them under
// the prefix keys and pings the result.
func configureProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	prefix string,
	providers []domain.AIProvider,
	models map[domain.AIProvider]string,
	validate func(*domain.AppSettings) error,
) error {
	cmd.Printf("Select %s provider\n", prefix)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := models[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use the environment): ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	if err := settingsService.Set(prefix+".provider", selected.String()); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", prefix, err)
	}
	if err := settingsService.Set(prefix+".model", model); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", prefix, err)
	}
	if apiKey != "" {
		if err := settingsService.Set(prefix+".api_key", apiKey); err != nil {
			return fmt.Errorf("failed to configure %s provider: %w", prefix, err)
		}
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := validate(settings); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", prefix, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n", prefix, selected.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, otherwise a line from reader.
func readPassword(reader *bufio.Reader) string {
	if isInteractive() {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
