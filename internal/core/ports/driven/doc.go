// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentIndex: Path to fingerprint mapping persistence
//   - DocumentStore: Content-addressed record persistence
//   - SourceTree: Enumerates files under an ingestion root
//   - Tokenizer: Encodes text for token accounting
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates for the ask flow
//
// # Provider Interfaces
//
// These are only needed by the commands that call out to models:
//
//   - EmbeddingService: Generates vector embeddings (ingest, query, ask).
//   - CompletionService: Produces ranked chat completions (ask).
//   - ResponseCache: Request-hash keyed results that bound provider calls.
//   - Watcher: Change notifications for watch mode.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
