package domain

import (
	"fmt"
	"strings"
)

// DirectiveKind identifies the lookup category requested by model output.
type DirectiveKind string

// Recognised lookup directives.
const (
	// DirectiveFunctionInfo requests the documentation for a function.
	DirectiveFunctionInfo DirectiveKind = "FUNCTION_INFO"

	// DirectiveTypeInfo requests the documentation for a class or alias.
	DirectiveTypeInfo DirectiveKind = "TYPE_INFO"

	// DirectiveTypeConstructors requests the constructors of a type.
	DirectiveTypeConstructors DirectiveKind = "TYPE_CONSTRUCTORS"

	// DirectiveTypeMethods requests the methods of a type.
	DirectiveTypeMethods DirectiveKind = "TYPE_METHODS"

	// DirectiveSnippet requests a named code snippet.
	DirectiveSnippet DirectiveKind = "SNIPPET"
)

// directiveFilter selects documents for one directive kind.
type directiveFilter struct {
	// types are the accepted frontmatter "type" values.
	types []string

	// field is the frontmatter key compared against the identifier.
	field string

	// prefixed also accepts the identifier with the configured name prefix.
	prefixed bool
}

var directiveFilters = map[DirectiveKind]directiveFilter{
	DirectiveFunctionInfo:     {types: []string{"function"}, field: FrontmatterName, prefixed: true},
	DirectiveTypeInfo:         {types: []string{"class", "alias"}, field: FrontmatterName},
	DirectiveTypeConstructors: {types: []string{"class_constructor"}, field: FrontmatterName},
	DirectiveTypeMethods:      {types: []string{"class_methods"}, field: FrontmatterName},
	DirectiveSnippet:          {types: []string{"snippet"}, field: FrontmatterSnippet},
}

// IsValid returns true if the kind is recognised.
func (k DirectiveKind) IsValid() bool {
	_, ok := directiveFilters[k]
	return ok
}

// String returns the string representation.
func (k DirectiveKind) String() string {
	return string(k)
}

// AllDirectiveKinds returns every recognised kind.
func AllDirectiveKinds() []DirectiveKind {
	return []DirectiveKind{
		DirectiveFunctionInfo,
		DirectiveTypeInfo,
		DirectiveTypeConstructors,
		DirectiveTypeMethods,
		DirectiveSnippet,
	}
}

// Directive is one parsed lookup item: KIND identifier[: description].
type Directive struct {
	Kind        DirectiveKind
	Identifier  string
	Description string
}

// ParseDirective parses a lookup item (without its bullet marker).
// The kind is the leading run of upper-case letters and underscores.
func ParseDirective(item string) (Directive, error) {
	item = strings.TrimSpace(item)

	end := 0
	for end < len(item) && (item[end] == '_' || (item[end] >= 'A' && item[end] <= 'Z')) {
		end++
	}

	kind := DirectiveKind(item[:end])
	if !kind.IsValid() {
		return Directive{}, fmt.Errorf("%w: %q", ErrUnknownDirective, item)
	}

	ident, desc, _ := strings.Cut(strings.TrimSpace(item[end:]), ":")
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return Directive{}, fmt.Errorf("%w: %s without identifier", ErrInvalidInput, kind)
	}

	return Directive{
		Kind:        kind,
		Identifier:  ident,
		Description: strings.TrimSpace(desc),
	}, nil
}

// Matches reports whether a document header satisfies the directive.
// namePrefix is the library namespace (for example "v3d.") that function
// names may carry in frontmatter but not in model output.
func (d Directive) Matches(fm Frontmatter, namePrefix string) bool {
	filter, ok := directiveFilters[d.Kind]
	if !ok {
		return false
	}

	typeOK := false
	for _, t := range filter.types {
		if fm.Type() == t {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return false
	}

	value := fm.Get(filter.field)
	if value == d.Identifier {
		return true
	}
	return filter.prefixed && namePrefix != "" && value == namePrefix+d.Identifier
}
