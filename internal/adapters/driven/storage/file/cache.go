package file

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

// Cache kinds, the first directory level under <dataDir>/cache.
const (
	CacheCompletions = "completions"
	CacheEmbeddings  = "embeddings"
)

// Ensure ResponseCache implements the interface.
var _ driven.ResponseCache = (*ResponseCache)(nil)

// Entry field names. Completion entries hold "choices", all others "result".
const (
	requestField = "request"
	resultField  = "result"
	choicesField = "choices"
)

// ResponseCache stores provider results keyed by the SHA-256 of the
// canonical JSON request. Entries are never overwritten.
type ResponseCache struct {
	dir   string
	field string
}

// NewResponseCache creates a cache in dir whose entries are
// {"request": ..., "result": ...}.
func NewResponseCache(dir string) *ResponseCache {
	return &ResponseCache{dir: dir, field: resultField}
}

// NewProviderCache creates the cache for one kind, provider and model under
// <dataDir>/cache.
func NewProviderCache(dataDir, kind, provider, model string) *ResponseCache {
	c := NewResponseCache(filepath.Join(dataDir, "cache", kind, safeSegment(provider), safeSegment(model)))
	if kind == CacheCompletions {
		c.field = choicesField
	}
	return c
}

// Dir returns the cache directory.
func (c *ResponseCache) Dir() string {
	return c.dir
}

// Lookup decodes the result stored for descriptor into out.
func (c *ResponseCache) Lookup(descriptor any, out any) (bool, error) {
	request, hash, err := canonical(descriptor)
	if err != nil {
		return false, err
	}

	path := c.entryPath(hash)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache entry: %w", err)
	}

	var entry map[string]json.RawMessage
	if err := json.Unmarshal(data, &entry); err != nil {
		return false, fmt.Errorf("%w: %s: %v", domain.ErrCacheCorruption, path, err)
	}
	result, ok := entry[c.field]
	if !ok {
		return false, fmt.Errorf("%w: %s: no %q field", domain.ErrCacheCorruption, path, c.field)
	}

	same, err := sameJSON(request, entry[requestField])
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", domain.ErrCacheCorruption, path, err)
	}
	if !same {
		return false, fmt.Errorf("%w: %s holds a different request", domain.ErrCacheCorruption, path)
	}

	if err := json.Unmarshal(result, out); err != nil {
		return false, fmt.Errorf("%w: %s: decode result: %v", domain.ErrCacheCorruption, path, err)
	}
	return true, nil
}

// Store writes the result for descriptor. An existing entry for the same
// hash is left untouched.
func (c *ResponseCache) Store(descriptor any, result any) error {
	request, hash, err := canonical(descriptor)
	if err != nil {
		return err
	}

	path := c.entryPath(hash)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	entry := map[string]json.RawMessage{requestField: request, c.field: encoded}
	if err := writeJSON(path, entry); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (c *ResponseCache) entryPath(hash string) string {
	return filepath.Join(c.dir, hash+".json")
}

// canonical returns the deterministic JSON of descriptor and its hex SHA-256.
func canonical(descriptor any) (json.RawMessage, string, error) {
	data, err := json.Marshal(descriptor)
	if err != nil {
		return nil, "", fmt.Errorf("encode descriptor: %w", err)
	}
	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}

// sameJSON compares two JSON documents after decoding, so formatting
// differences in the stored file do not count.
func sameJSON(a, b json.RawMessage) (bool, error) {
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		return false, err
	}
	return cmp.Equal(va, vb), nil
}

// safeSegment makes a provider or model name usable as one path element.
func safeSegment(s string) string {
	switch s {
	case "":
		return "default"
	case ".", "..":
		return "_"
	}
	out := []rune(s)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			out[i] = '_'
		}
	}
	return string(out)
}
