package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
	"github.com/custodia-labs/docent-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads ask prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptPlanningSystem: `You are a documentation assistant. You do not answer the user's question yet. Instead you decide which documentation to read in order to answer it.

Reply using only the sections below, in this order, each followed by one blank line. Every item is a line starting with "* ".

# Topics
Short search queries, one per line, describing the concepts the answer needs.

# Lookup
Exact references to listed items, one per line, using one of:
* FUNCTION_INFO <function name>: <why>
* TYPE_INFO <type name>: <why>
* TYPE_CONSTRUCTORS <type name>: <why>
* TYPE_METHODS <type name>: <why>
* SNIPPET <snippet name>: <why>

# Relevant
Names of related items the user may want to read next, as "<name>: <why>".

Only reference types, functions and snippets that appear in the lists you are given.`,

	driven.PromptPlanningUser: `The library documents the following types, functions and snippets.`,

	driven.PromptAnsweringSystem: `You are a documentation assistant. Answer the user's question using only the articles below. If the articles do not contain the answer, say so.

Write your answer under a "# Reply" heading. Do not add other headings after it.

${PHASE_2_RELEVANT_DOCUMENTS}`,

	driven.PromptAnsweringUser: `Use the articles provided to answer my next message. Quote code exactly as it appears in the articles.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to .docent/prompts/ in the working directory.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) *PromptStore {
	if promptDir == "" {
		promptDir = filepath.Join(DefaultDir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Another goroutine may have loaded it first; keep the cached value.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Docent Prompts

This directory contains the prompts used by ` + "`docent ask`" + `.

## Files

- ` + "`planning_system.txt`" + ` - System message of the planning call
- ` + "`planning_user.txt`" + ` - Text placed before the catalog and the question
- ` + "`answering_system.txt`" + ` - System message of the answering call
- ` + "`answering_user.txt`" + ` - User message sent before the question

## Sections

The planning reply is read from "# Topics", "# Lookup" and "# Relevant"
sections of "* " bullets, each ended by a blank line. The answer is read
from the text under "# Reply".

## Placeholders

` + "`" + driven.RelevantDocumentsPlaceholder + "`" + ` in the answering prompts is
replaced by the retrieved articles.

Changes take effect on the next command.
`
	return os.WriteFile(path, []byte(content), 0600)
}
