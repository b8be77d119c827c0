// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingestion engine reconciles source trees with the document index,
// the retriever ranks stored documents by votes, and the ask service runs
// the two-phase prompt. Provider calls go through the cached decorators
// in cached.go.
package services
