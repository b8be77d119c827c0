package driven

// Tokenizer encodes text into model token ids.
type Tokenizer interface {
	// Encode returns the token ids of text under the named encoding
	// (for example "cl100k_base").
	Encode(encoding, text string) ([]int, error)
}
