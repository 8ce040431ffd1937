package file

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".suitesmith"), dir)
}

func TestConfigStore_SetAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("llm.requests_per_minute", 30))
	require.NoError(t, store.Set("review.dirty_policy", "autosave"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", reloaded.GetString("llm.provider"))
	assert.Equal(t, 30, reloaded.GetInt("llm.requests_per_minute"))
	assert.Equal(t, "autosave", reloaded.GetString("review.dirty_policy"))
}

func TestConfigStore_WritesTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "gpt-4o"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "model = 'gpt-4o'")
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := "[llm]\nprovider = \"ollama\"\nbase_url = \"http://gpu:11434\"\n\n[design]\ndesired_count = 6\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, "http://gpu:11434", store.GetString("llm.base_url"))
	assert.Equal(t, 6, store.GetInt("design.desired_count"))
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "text"))

	assert.Zero(t, store.GetInt("k"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes differ on windows")
	}
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("publish.github_token", "ghp_x"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[[[nope"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_SetFailureRestoresValue(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("requires unix permissions as non-root")
	}
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "a"))

	require.NoError(t, os.Chmod(dir, 0500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0700) })

	assert.Error(t, store.Set("llm.model", "b"))
	assert.Error(t, store.Set("llm.provider", "openai"))
	assert.Equal(t, "a", store.GetString("llm.model"))
	_, ok := store.Get("llm.provider")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("design.desired_count", n+1)
			_ = store.GetInt("design.desired_count")
		}(i)
	}
	wg.Wait()

	assert.Positive(t, store.GetInt("design.desired_count"))
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"llm.provider": "ollama",
		"llm.model":    "llama3.2",
		"top":          1,
		"top.child":    2,
	})

	assert.Equal(t, map[string]any{"provider": "ollama", "model": "llama3.2"}, nested["llm"])
	assert.Equal(t, 1, nested["top"])
	assert.Equal(t, nested, nestMap(flattenMap(nested, "")))
}
