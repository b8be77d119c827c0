package services

import (
	"strings"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

// Markers of the heading/bullet grammar used in model output.
const (
	headingMarker = "#"
	bulletMarker  = "* "
)

// Section headings the planning and answering prompts ask the model to emit.
const (
	SectionTopics   = "Topics"
	SectionLookup   = "Lookup"
	SectionRelevant = "Relevant"
	SectionReply    = "Reply"
)

// ParseSection returns the bullet items under "# heading" up to the first
// empty line. Lines inside the section that are not bullets are logged
// and skipped.
func ParseSection(heading, text string) []string {
	var items []string
	inside := false
	for _, line := range splitLines(text) {
		if !inside {
			inside = line == headingMarker+" "+heading
			continue
		}
		if line == "" {
			break
		}
		if !strings.HasPrefix(line, bulletMarker) {
			logger.Warn("Unexpected line in %s section: %q", heading, line)
			continue
		}
		items = append(items, strings.TrimSpace(line[len(bulletMarker):]))
	}
	return items
}

// ParseBodyAfter returns the lines following "# heading" verbatim, up to the
// next heading line or the end of text, joined with newlines.
func ParseBodyAfter(heading, text string) string {
	var body []string
	inside := false
	for _, line := range splitLines(text) {
		if !inside {
			inside = line == headingMarker+" "+heading
			continue
		}
		if strings.HasPrefix(line, headingMarker) {
			break
		}
		body = append(body, line)
	}
	return strings.Join(body, "\n")
}

// ParseLookups parses the Lookup section into directives. Items with an
// unknown kind or no identifier are logged and dropped.
func ParseLookups(text string) []domain.Directive {
	var directives []domain.Directive
	for _, item := range ParseSection(SectionLookup, text) {
		d, err := domain.ParseDirective(item)
		if err != nil {
			logger.Warn("Ignoring lookup %q: %v", item, err)
			continue
		}
		directives = append(directives, d)
	}
	return directives
}

// ParseRelevant returns the identifiers of the Relevant section, dropping
// any ": description" suffix.
func ParseRelevant(text string) []string {
	var out []string
	for _, item := range ParseSection(SectionRelevant, text) {
		ident, _, _ := strings.Cut(item, ":")
		if ident = strings.TrimSpace(ident); ident != "" {
			out = append(out, ident)
		}
	}
	return out
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
