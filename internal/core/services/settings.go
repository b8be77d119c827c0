package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyWorkspaceRoot      = "workspace.root"
	keyDataDir            = "data.dir"
	keyCompletionProvider = "completion.provider"
	keyCompletionModel    = "completion.model"
	keyCompletionBaseURL  = "completion.base_url"
	keyCompletionAPIKey   = "completion.api_key"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyRequestsPerMinute  = "provider.requests_per_minute"
	keyIngestEncodings    = "ingest.encodings"
	keyIngestOnRemoved    = "ingest.on_removed"
	keyIngestOnChanged    = "ingest.on_changed"
	keyVoteLimit          = "retrieval.vote_limit"
	keyLookupNamePrefix   = "lookup.name_prefix"
	keyPlanningTopP       = "ask.planning_top_p"
	keyPlanningFrequency  = "ask.planning_frequency_penalty"
	keyAnsweringTopP      = "ask.answering_top_p"
	keyAnsweringFrequency = "ask.answering_frequency_penalty"
)

// apiKeyEnv names the environment variable holding each provider's key.
//
//nolint:gosec // G101: environment variable names, not credentials.
var apiKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Workspace: domain.WorkspaceSettings{
			Root:    s.getString(keyWorkspaceRoot, defaults.Workspace.Root),
			DataDir: s.getString(keyDataDir, defaults.Workspace.DataDir),
		},
		Completion: s.getProviderSettings(
			keyCompletionProvider, keyCompletionModel, keyCompletionBaseURL, keyCompletionAPIKey,
			defaults.Completion, domain.DefaultCompletionModels(),
		),
		Embedding: s.getProviderSettings(
			keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
			defaults.Embedding, domain.DefaultEmbeddingModels(),
		),
		Ingest: domain.IngestSettings{
			Encodings: defaults.Ingest.Encodings,
			Policy: domain.ReconciliationPolicy{
				Removed: domain.RemovedAction(s.getString(keyIngestOnRemoved, defaults.Ingest.Policy.Removed.String())),
				Changed: domain.ChangedAction(s.getString(keyIngestOnChanged, defaults.Ingest.Policy.Changed.String())),
			},
		},
		Retrieval: domain.RetrievalSettings{
			VoteLimit:        s.getInt(keyVoteLimit, defaults.Retrieval.VoteLimit),
			LookupNamePrefix: s.configStore.GetString(keyLookupNamePrefix),
		},
		Ask: domain.AskSettings{
			Planning: domain.Sampling{
				TopP:             s.getFloat(keyPlanningTopP, defaults.Ask.Planning.TopP),
				FrequencyPenalty: s.getFloat(keyPlanningFrequency, defaults.Ask.Planning.FrequencyPenalty),
			},
			Answering: domain.Sampling{
				TopP:             s.getFloat(keyAnsweringTopP, defaults.Ask.Answering.TopP),
				FrequencyPenalty: s.getFloat(keyAnsweringFrequency, defaults.Ask.Answering.FrequencyPenalty),
			},
		},
		Limits: domain.LimitSettings{
			RequestsPerMinute: s.configStore.GetInt(keyRequestsPerMinute),
		},
	}

	if encodings := s.configStore.GetStringSlice(keyIngestEncodings); len(encodings) > 0 {
		settings.Ingest.Encodings = encodings
	}

	if err := settings.Ingest.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", s.configStore.Path(), err)
	}

	return settings, nil
}

// Set validates value for key and stores it with its natural type.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var stored any
	switch key {
	case keyWorkspaceRoot, keyDataDir, keyCompletionModel, keyEmbedModel,
		keyCompletionBaseURL, keyEmbedBaseURL, keyCompletionAPIKey, keyEmbedAPIKey,
		keyLookupNamePrefix:
		stored = value

	case keyCompletionProvider:
		if err := validateProvider(value, domain.AllCompletionProviders()); err != nil {
			return err
		}
		stored = value

	case keyEmbedProvider:
		if err := validateProvider(value, domain.AllEmbeddingProviders()); err != nil {
			return err
		}
		stored = value

	case keyIngestOnRemoved:
		if !domain.RemovedAction(value).IsValid() {
			return fmt.Errorf("%w: %s must be one of %v", domain.ErrInvalidInput, key, domain.AllRemovedActions())
		}
		stored = value

	case keyIngestOnChanged:
		if !domain.ChangedAction(value).IsValid() {
			return fmt.Errorf("%w: %s must be one of %v", domain.ErrInvalidInput, key, domain.AllChangedActions())
		}
		stored = value

	case keyIngestEncodings:
		var encodings []string
		for _, e := range strings.Split(value, ",") {
			if e = strings.TrimSpace(e); e != "" {
				encodings = append(encodings, e)
			}
		}
		if len(encodings) == 0 {
			return fmt.Errorf("%w: %s needs at least one encoding", domain.ErrInvalidInput, key)
		}
		stored = encodings

	case keyVoteLimit, keyRequestsPerMinute:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || (key == keyVoteLimit && n == 0) {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		stored = n

	case keyPlanningTopP, keyAnsweringTopP, keyPlanningFrequency, keyAnsweringFrequency:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		stored = f

	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every supported key in display order.
func (s *SettingsService) Keys() []string {
	return []string{
		keyWorkspaceRoot,
		keyDataDir,
		keyCompletionProvider,
		keyCompletionModel,
		keyCompletionBaseURL,
		keyCompletionAPIKey,
		keyEmbedProvider,
		keyEmbedModel,
		keyEmbedBaseURL,
		keyEmbedAPIKey,
		keyRequestsPerMinute,
		keyIngestEncodings,
		keyIngestOnRemoved,
		keyIngestOnChanged,
		keyVoteLimit,
		keyLookupNamePrefix,
		keyPlanningTopP,
		keyPlanningFrequency,
		keyAnsweringTopP,
		keyAnsweringFrequency,
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateProvider(value string, allowed []domain.AIProvider) error {
	for _, p := range allowed {
		if string(p) == value {
			return nil
		}
	}
	return fmt.Errorf("%w: provider %q must be one of %v", domain.ErrInvalidInput, value, allowed)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getProviderSettings(
	providerKey, modelKey, baseURLKey, apiKeyKey string,
	defaults domain.ProviderSettings,
	models map[domain.AIProvider]string,
) domain.ProviderSettings {
	provider := s.getProvider(providerKey, defaults.Provider)

	// Switching provider without naming a model selects that provider's default.
	model := models[provider]
	if provider == defaults.Provider {
		model = defaults.Model
	}

	settings := domain.ProviderSettings{
		Provider: provider,
		Model:    s.getString(modelKey, model),
		BaseURL:  s.configStore.GetString(baseURLKey), // No default - empty is valid for cloud providers
		APIKey:   s.configStore.GetString(apiKeyKey),
	}
	if settings.APIKey == "" {
		if env, ok := apiKeyEnv[provider]; ok {
			settings.APIKey = s.getenv(env)
		}
	}
	return settings
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
