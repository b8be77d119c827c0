// Package tiktoken provides a Tokenizer backed by tiktoken-go, covering the
// OpenAI encodings (cl100k_base, p50k_base and friends).
package tiktoken

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// Tokenizer encodes text with named tiktoken encodings. Codecs are loaded
// on first use and reused.
type Tokenizer struct {
	mu     sync.Mutex
	codecs map[string]tokenizer.Codec
}

// New creates a tokenizer with no codecs loaded.
func New() *Tokenizer {
	return &Tokenizer{codecs: make(map[string]tokenizer.Codec)}
}

// Encode returns the token ids of text under encoding.
func (t *Tokenizer) Encode(encoding, text string) ([]int, error) {
	codec, err := t.codec(encoding)
	if err != nil {
		return nil, err
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", encoding, err)
	}

	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out, nil
}

func (t *Tokenizer) codec(encoding string) (tokenizer.Codec, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if codec, ok := t.codecs[encoding]; ok {
		return codec, nil
	}

	codec, err := tokenizer.Get(tokenizer.Encoding(encoding))
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q: %v", domain.ErrInvalidInput, encoding, err)
	}
	t.codecs[encoding] = codec
	return codec, nil
}
