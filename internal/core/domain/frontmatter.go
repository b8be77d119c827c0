package domain

import (
	"fmt"
	"strings"
)

// frontmatterDelimiter opens and closes a document header block.
const frontmatterDelimiter = "---"

// Well-known frontmatter keys.
const (
	FrontmatterType    = "type"
	FrontmatterName    = "name"
	FrontmatterSnippet = "snippet"
)

// Frontmatter is the key/value header at the top of a document.
type Frontmatter map[string]string

// Get returns the value for key, or "" when absent.
func (f Frontmatter) Get(key string) string {
	if f == nil {
		return ""
	}
	return f[key]
}

// Type returns the document category discriminator.
func (f Frontmatter) Type() string {
	return f.Get(FrontmatterType)
}

// Name returns the declared symbol name.
func (f Frontmatter) Name() string {
	return f.Get(FrontmatterName)
}

// ParseFrontmatter extracts the leading "---" block of "key: value" lines.
// Content that does not start with the delimiter has an empty header.
// Inside the block, a line starting with the delimiter other than the exact
// closing line, a line without a colon, or a missing closing line is an
// ErrMalformedFrontmatter.
func ParseFrontmatter(content string) (Frontmatter, error) {
	fm := Frontmatter{}
	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return fm, nil
	}

	lines := strings.Split(content, "\n")
	for i, raw := range lines[1:] {
		line := strings.TrimSuffix(raw, "\r")
		switch {
		case line == frontmatterDelimiter:
			return fm, nil
		case strings.HasPrefix(line, frontmatterDelimiter):
			return nil, fmt.Errorf("%w: line %d: nested delimiter %q", ErrMalformedFrontmatter, i+2, line)
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: expected key: value, got %q", ErrMalformedFrontmatter, i+2, line)
		}
		fm[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return nil, fmt.Errorf("%w: unterminated header", ErrMalformedFrontmatter)
}

// StripFrontmatter returns content without its leading header block.
// Content without a well-formed header is returned unchanged.
func StripFrontmatter(content string) string {
	if !strings.HasPrefix(content, frontmatterDelimiter+"\n") &&
		!strings.HasPrefix(content, frontmatterDelimiter+"\r\n") {
		return content
	}

	rest := content[strings.Index(content, "\n")+1:]
	for {
		line, after, found := strings.Cut(rest, "\n")
		if strings.TrimSuffix(line, "\r") == frontmatterDelimiter {
			return after
		}
		if !found {
			return content
		}
		rest = after
	}
}
