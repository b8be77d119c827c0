package driven

// ResponseCache maps a canonical request descriptor to a stored provider
// result. Entries are append-only.
type ResponseCache interface {
	// Lookup decodes the result stored for descriptor into out.
	// Returns false when no entry exists. Returns domain.ErrCacheCorruption
	// when an entry exists under the descriptor's hash but was written for
	// a different request.
	Lookup(descriptor any, out any) (bool, error)

	// Store writes the result for descriptor, creating directories as needed.
	Store(descriptor any, result any) error
}
