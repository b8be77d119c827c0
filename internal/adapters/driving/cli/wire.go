package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent-cli/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/docent-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docent-cli/internal/adapters/driven/source/filesystem"
	storagefile "github.com/custodia-labs/docent-cli/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/docent-cli/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docent-cli/internal/core/services"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

// wireServices builds every service from config.toml, .env and the
// environment. A provider that cannot be built is logged and left unset so
// commands that do not need it still run.
func wireServices(_ *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Could not load .env: %v", err)
	}

	configStore, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore)
	settingsService = settingsSvc

	settings, err := settingsSvc.Get()
	if err != nil {
		return err
	}

	tree, err := filesystem.NewTree(settings.Workspace.Root)
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}

	dataDir := settings.Workspace.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(tree.Root(), dataDir)
	}
	logger.Debug("Workspace %s, data %s", tree.Root(), dataDir)

	index := storagefile.NewDocumentIndex(dataDir)
	store := storagefile.NewDocumentStore(dataDir)

	providers, err := ai.NewProviders(settings)
	if err != nil {
		logger.Warn("%v", err)
		providers = &ai.Providers{}
	}
	closeServices = providers.Close

	var completer driven.CompletionService
	if providers.Completion != nil {
		cache := storagefile.NewProviderCache(dataDir, storagefile.CacheCompletions,
			providers.Completion.ProviderName(), providers.Completion.ModelName())
		completer = services.NewCachedCompletionService(providers.Completion, cache)
	}

	var embedder driven.EmbeddingService
	if providers.Embedding != nil {
		cache := storagefile.NewProviderCache(dataDir, storagefile.CacheEmbeddings,
			providers.Embedding.ProviderName(), providers.Embedding.ModelName())
		embedder = services.NewCachedEmbeddingService(providers.Embedding, cache)
	}

	tokenizer := tiktoken.New()
	prompts := configfile.NewPromptStore(filepath.Join(filepath.Dir(configStore.Path()), "prompts"))
	corpus := services.NewCorpus(store)

	retrieval := services.NewRetrievalService(corpus, embedder, settings.Retrieval.VoteLimit)
	retrievalService = retrieval
	askService = services.NewAskService(completer, retrieval, corpus, prompts, services.AskConfig{
		Planning:   settings.Ask.Planning,
		Answering:  settings.Ask.Answering,
		NamePrefix: settings.Retrieval.LookupNamePrefix,
	})
	ingestService = services.NewIngestService(tree, index, store, embedder, tokenizer, services.IngestConfig{
		Encodings: settings.Ingest.Encodings,
	})
	tokenStatsService = services.NewTokenStatsService(tree, tokenizer, domain.EncodingCl100kBase)
	sourceWatcher = filesystem.NewWatcher(filesystem.DefaultDebounce)
	defaultPolicy = settings.Ingest.Policy

	return nil
}
