package services

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/logger"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	return &buf
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"stops at empty line", "# Topics\n* foo\n* bar\n\n# Other", []string{"foo", "bar"}},
		{"runs to end", "# Topics\n* foo", []string{"foo"}},
		{"missing heading", "# Other\n* foo", nil},
		{"heading must match exactly", "## Topics\n* foo\n#Topics\n* bar", nil},
		{"crlf", "# Topics\r\n* foo\r\n", []string{"foo"}},
		{"trims items", "# Topics\n*   spaced  \n", []string{"spaced"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSection("Topics", tt.text))
		})
	}
}

func TestParseSection_WarnsOnStrayLines(t *testing.T) {
	buf := captureLog(t)

	got := ParseSection("Topics", "# Topics\n* foo\nnot a bullet\n* bar\n")
	assert.Equal(t, []string{"foo", "bar"}, got)
	assert.Contains(t, buf.String(), "[WARN]")
	assert.Contains(t, buf.String(), "not a bullet")
}

func TestParseBodyAfter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"stops at next heading", "# Reply\nHello\nWorld\n# Next", "Hello\nWorld"},
		{"keeps blank lines", "# Reply\nHello\n\nWorld", "Hello\n\nWorld"},
		{"missing heading", "Hello", ""},
		{"empty body", "# Reply\n# Next", ""},
		{"preceded by sections", "# Topics\n* x\n\n# Reply\nYes", "Yes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBodyAfter("Reply", tt.text))
		})
	}
}

func TestParseLookups(t *testing.T) {
	buf := captureLog(t)

	text := "# Lookup\n" +
		"* FUNCTION_INFO add: adds vectors\n" +
		"* TYPE_INFO Vector\n" +
		"* BOGUS thing\n" +
		"* SNIPPET\n" +
		"* TYPE_METHODS Vector\n"

	got := ParseLookups(text)
	assert.Equal(t, []domain.Directive{
		{Kind: domain.DirectiveFunctionInfo, Identifier: "add", Description: "adds vectors"},
		{Kind: domain.DirectiveTypeInfo, Identifier: "Vector"},
		{Kind: domain.DirectiveTypeMethods, Identifier: "Vector"},
	}, got)
	assert.Contains(t, buf.String(), "BOGUS")
}

func TestParseRelevant(t *testing.T) {
	text := "# Relevant\n* add: because\n* Vector\n* : nothing\n"
	assert.Equal(t, []string{"add", "Vector"}, ParseRelevant(text))
}
