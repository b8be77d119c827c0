package memory

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

// Ensure ResponseCache implements the interface.
var _ driven.ResponseCache = (*ResponseCache)(nil)

// ResponseCache is an in-memory implementation of driven.ResponseCache.
// Results are JSON encoded so callers observe the same decoding as the
// file-backed cache.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewResponseCache creates an empty in-memory cache.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{entries: make(map[string][]byte)}
}

// Lookup decodes the result stored for descriptor into out.
func (c *ResponseCache) Lookup(descriptor any, out any) (bool, error) {
	key, err := json.Marshal(descriptor)
	if err != nil {
		return false, fmt.Errorf("encode descriptor: %w", err)
	}

	c.mu.RLock()
	data, ok := c.entries[string(key)]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode result: %w", err)
	}
	return true, nil
}

// Store writes the result for descriptor.
func (c *ResponseCache) Store(descriptor any, result any) error {
	key, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[string(key)] = data
	return nil
}

// Len returns the number of stored entries.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
