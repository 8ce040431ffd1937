package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
)

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".suitesmith", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptDesignTests)
	require.NoError(t, err)

	for _, f := range []string{"design_tests.txt", "chat_system.txt", "generate_code.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_DefaultsHavePlaceholders(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	tests := map[string]int{
		driven.PromptDesignTests:  4,
		driven.PromptChatSystem:   2,
		driven.PromptGenerateCode: 5,
	}
	for name, want := range tests {
		prompt, err := store.Load(name)
		require.NoError(t, err)
		assert.Equal(t, want, countVerbs(prompt), name)
	}
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Write %d tests for %s (%s): %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "design_tests.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDesignTests)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)

	data, err := os.ReadFile(filepath.Join(dir, "design_tests.txt"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data), "existing files are not overwritten")
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptChatSystem)
	require.NoError(t, os.Remove(filepath.Join(dir, "chat_system.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	def, _ := DefaultPrompt(driven.PromptChatSystem)
	assert.Equal(t, def, prompt)
}

func TestPromptStore_Load_EmptyFileUsesDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "generate_code.txt"), []byte("  \n"), 0600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptGenerateCode)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Playwright")
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")
	assert.ErrorContains(t, err, "nonexistent_prompt")
}

func TestPromptStore_InitFailureUsesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	store, err := NewPromptStore(filepath.Join(file, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDesignTests)
	require.NoError(t, err)
	assert.Contains(t, prompt, "test automation expert")

	_, err = store.Load("other")
	assert.ErrorContains(t, err, "init failed")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)

	modified := "Context %s Cases %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_system.txt"), []byte(modified), 0600))

	cached, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, modified, fresh)
}

func TestPromptStore_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_system.txt"), []byte("\n\n  prompt %s %s  \n\n"), 0600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, "prompt %s %s", prompt)
}

func TestPromptStore_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n], _ = store.Load(driven.PromptDesignTests)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestPromptWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, err = store.Load(driven.PromptChatSystem)
	require.NoError(t, err)

	watcher, err := NewPromptWatcher(store)
	require.NoError(t, err)
	watcher.debounce = 10 * time.Millisecond
	reloaded := make(chan struct{}, 1)
	watcher.OnReload(func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	updated := "edited %s %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_system.txt"), []byte(updated), 0600))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("prompt watcher did not reload")
	}

	prompt, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, updated, prompt)

	cancel()
	assert.NoError(t, <-done)
}

func TestNewPromptWatcher_InitFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))
	store, err := NewPromptStore(filepath.Join(file, "prompts"))
	require.NoError(t, err)

	_, err = NewPromptWatcher(store)
	assert.Error(t, err)
}

// countVerbs counts fmt verbs, ignoring escaped percent signs.
func countVerbs(s string) int {
	n := 0
	for i := 0; i < len(s)-1; i++ {
		if s[i] != '%' {
			continue
		}
		if s[i+1] == '%' {
			i++
			continue
		}
		n++
	}
	return n
}
