package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or completions.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ProviderSettings holds the connection details for one AI provider.
type ProviderSettings struct {
	// Provider is the AI service provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint (empty selects the provider default).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the provider is set up.
func (s ProviderSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// CompletionSettings holds completion provider configuration.
type CompletionSettings = ProviderSettings

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings = ProviderSettings

// WorkspaceSettings locates source files and persisted state.
type WorkspaceSettings struct {
	// Root is the directory document paths are made relative to.
	Root string

	// DataDir holds documents/ and cache/.
	DataDir string
}

// IngestSettings holds ingestion defaults.
type IngestSettings struct {
	// Encodings are the token encodings computed for every document.
	Encodings []string

	// Policy is used when no interactive prompt is available.
	Policy ReconciliationPolicy
}

// RetrievalSettings holds relevance retrieval configuration.
type RetrievalSettings struct {
	// VoteLimit is the number of top candidates awarded votes per query.
	VoteLimit int

	// LookupNamePrefix is the namespace function names may carry in frontmatter.
	LookupNamePrefix string
}

// AskSettings holds sampling parameters for the two ask phases.
type AskSettings struct {
	Planning  Sampling
	Answering Sampling
}

// LimitSettings throttles provider traffic.
type LimitSettings struct {
	// RequestsPerMinute caps provider calls; 0 disables limiting.
	RequestsPerMinute int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Workspace  WorkspaceSettings
	Completion CompletionSettings
	Embedding  EmbeddingSettings
	Ingest     IngestSettings
	Retrieval  RetrievalSettings
	Ask        AskSettings
	Limits     LimitSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty and are normally supplied by the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Workspace: WorkspaceSettings{
			Root:    ".",
			DataDir: ".docent",
		},
		Completion: CompletionSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultCompletionModels()[AIProviderOpenAI],
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		Ingest: IngestSettings{
			Encodings: []string{EncodingCl100kBase, EncodingP50kBase},
			Policy:    DefaultReconciliationPolicy(),
		},
		Retrieval: RetrievalSettings{
			VoteLimit: 2,
		},
		Ask: AskSettings{
			Planning:  Sampling{TopP: 0.3, FrequencyPenalty: 0},
			Answering: Sampling{TopP: 0.3, FrequencyPenalty: 0.1},
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllCompletionProviders returns providers that support completions.
func AllCompletionProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-ada-002",
	}
}

// DefaultCompletionModels returns default models for each completion provider.
func DefaultCompletionModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-3.5-turbo",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
