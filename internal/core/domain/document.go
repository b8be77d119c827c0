package domain

import (
	"path"
	"sort"
	"strings"
)

// Well-known token encodings.
const (
	EncodingCl100kBase = "cl100k_base"
	EncodingP50kBase   = "p50k_base"
)

// TokenCount holds the token ids of a document under one encoding.
type TokenCount struct {
	// Tokens are the encoded token ids in order.
	Tokens []int `json:"tokens"`

	// Length is len(Tokens), kept for readers that skip the ids.
	Length int `json:"length"`
}

// NewTokenCount builds a TokenCount from encoded ids.
func NewTokenCount(tokens []int) TokenCount {
	return TokenCount{Tokens: tokens, Length: len(tokens)}
}

// DocumentRecord is the derived data stored for one fingerprint.
// Fields are filled lazily: a record written by speculative tooling or by an
// older run may lack an embedding and gain one later.
type DocumentRecord struct {
	// Path is the workspace-relative, slash-separated source path.
	Path string `json:"path"`

	// Content is the raw source text.
	Content string `json:"content,omitempty"`

	// Frontmatter is the parsed document header.
	Frontmatter Frontmatter `json:"frontmatter"`

	// TokenCounts maps encoding name to the encoded content.
	TokenCounts map[string]TokenCount `json:"token_counts"`

	// Embedding is the content vector, absent until computed.
	Embedding []float32 `json:"embedding,omitempty"`

	// EmbeddingModel names the model that produced Embedding.
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// HasEmbedding reports whether the record carries a vector.
func (r *DocumentRecord) HasEmbedding() bool {
	return r != nil && len(r.Embedding) > 0
}

// TokenLength returns the token count for encoding, or 0 if not computed.
func (r *DocumentRecord) TokenLength(encoding string) int {
	if r == nil || r.TokenCounts == nil {
		return 0
	}
	return r.TokenCounts[encoding].Length
}

// Body returns the content with its frontmatter removed.
func (r *DocumentRecord) Body() string {
	if r == nil {
		return ""
	}
	return StripFrontmatter(r.Content)
}

// Document pairs a stored record with its fingerprint.
type Document struct {
	Fingerprint Fingerprint
	Record      *DocumentRecord
}

// Path returns the record path, or "" for an empty document.
func (d Document) Path() string {
	if d.Record == nil {
		return ""
	}
	return d.Record.Path
}

// Index maps workspace-relative paths to the fingerprint of their content.
type Index map[string]Fingerprint

// Clone returns a shallow copy of the index.
func (i Index) Clone() Index {
	out := make(Index, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// Paths returns the indexed paths in sorted order.
func (i Index) Paths() []string {
	paths := make([]string, 0, len(i))
	for p := range i {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// PathsUnder returns the sorted indexed paths that lie under root.
// Root "" or "." matches every path.
func (i Index) PathsUnder(root string) []string {
	var paths []string
	for _, p := range i.Paths() {
		if IsUnder(p, root) {
			paths = append(paths, p)
		}
	}
	return paths
}

// References reports whether any path maps to fp.
func (i Index) References(fp Fingerprint) bool {
	for _, v := range i {
		if v == fp {
			return true
		}
	}
	return false
}

// IsUnder reports whether the slash-separated path p lies within root.
func IsUnder(p, root string) bool {
	root = path.Clean(root)
	if root == "." || root == "" {
		return !strings.HasPrefix(p, "../")
	}
	return p == root || strings.HasPrefix(p, root+"/")
}
