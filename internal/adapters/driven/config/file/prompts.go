package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk,
// falling back to the built-in defaults.
//
// Initialisation is lazy: the directory and default files are created on
// the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts holds the built-in templates. They are also written out as
// the initial content of the user's prompt files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptDesignTests: `You are a test automation expert. Design exactly %d test cases for this web page.

URL: %s
Structure: %s

Key interactive elements:
%s

Reply with a single JSON object only:
{"test_cases": [{"name": "...", "description": "...", "steps": ["..."], "expected_outcome": "...", "priority": "High|Medium|Low"}]}

Reference the actual elements found (e.g. "Click the Sign in button", "Enter text in the search input with id=q"). Be specific.`,

	driven.PromptChatSystem: `You are a QA assistant helping a tester refine a manual test suite.

Page under test:
%s

Current test cases (JSON):
%s

Always reply with a single JSON object:
{"response": "<your reply to the tester>", "test_cases": null}

If the tester asks you to change the suite, set "test_cases" to the complete new list of test cases using the same shape as the current test cases. The list replaces the suite entirely, so include unchanged cases too. Otherwise leave "test_cases" as null.`,

	driven.PromptGenerateCode: `You are an expert Playwright test automation engineer. Write a Python pytest module for the suite below.

Suite: %s
URL: %s

Elements discovered on the page, with preferred locators:
%s

Test cases (JSON):
%s

Additional instructions from the user:
%s

Guidelines:
- Use playwright.sync_api and pytest fixtures
- Prefer locators in this order: data-testid, id, name, aria-label, text, css
- One test function per test case, named test_<snake_case_name>
- Return only the Python code, without markdown fences or commentary`,
}

// NewPromptStore creates a file-based prompt store.
// If promptDir is empty, defaults to ~/.suitesmith/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	prompt, ok := defaultPrompts[name]
	return prompt, ok
}

// Load returns the prompt template for name, preferring the user's file.
func (s *PromptStore) Load(name string) (string, error) {
	if s.ensureInit() != nil {
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
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("empty file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

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

// ensureInit runs the one-time directory setup and reports its error.
func (s *PromptStore) ensureInit() error {
	s.initOnce.Do(s.initialise)
	return s.initErr
}

// initialise creates the prompt directory and any missing default files.
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

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := "# suitesmith prompts\n\n" +
		"Edit these files to change how suites are designed, revised and turned into code.\n" +
		"A running TUI or MCP server picks up changes automatically.\n\n" +
		"- `design_tests.txt`: %d desired count, %s url, %s structure, %s elements\n" +
		"- `chat_system.txt`: %s page context, %s current test cases as JSON\n" +
		"- `generate_code.txt`: %s suite, %s url, %s elements, %s test cases, %s instructions\n\n" +
		"Keep the placeholders in the same order. Delete a file to restore its default.\n"
	return os.WriteFile(path, []byte(content), 0600)
}
