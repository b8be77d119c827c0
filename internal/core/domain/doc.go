// Package domain defines the core business entities for docent.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Fingerprint: Content-addressed identity of a source file
//   - DocumentRecord: Derived data stored per fingerprint
//   - Index: Mapping from workspace path to fingerprint
//   - Directive: A lookup request parsed from model output
//   - ReconciliationPolicy: How ingestion resolves removed and changed files
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
