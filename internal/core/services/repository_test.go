package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// assertWriteThrough checks the blob store holds exactly the in-memory collections.
func assertWriteThrough(t *testing.T, repo *RepositoryService, store *memory.BlobStore) {
	t.Helper()

	var explorations []domain.Exploration
	loadJSON(t, store, domain.CollectionExplorations, &explorations)
	var suites []domain.TestSuite
	loadJSON(t, store, domain.CollectionTestSuites, &suites)

	memExplorations := repo.ListExplorations()
	require.Len(t, explorations, len(memExplorations))
	for i := range memExplorations {
		assert.Equal(t, memExplorations[i].ID, explorations[i].ID)
		assert.Equal(t, memExplorations[i].Name, explorations[i].Name)
	}

	memSuites := repo.ListSuites()
	require.Len(t, suites, len(memSuites))
	for i := range memSuites {
		assert.Equal(t, memSuites[i].ID, suites[i].ID)
		assert.Equal(t, memSuites[i].Name, suites[i].Name)
		assert.True(t, domain.EqualTestCases(memSuites[i].TestCases, suites[i].TestCases))
	}
}

func TestRepository_Load_EmptyStore(t *testing.T) {
	repo, store := newTestRepository(t)

	assert.Empty(t, repo.ListExplorations())
	assert.Empty(t, repo.ListSuites())
	assert.NotNil(t, repo.ChatHistory("anything"))
	assert.Equal(t, 0, store.Writes())
}

func TestRepository_Load_NilStore(t *testing.T) {
	repo := NewRepositoryService(nil)
	assert.ErrorIs(t, repo.Load(context.Background()), domain.ErrNotImplemented)
}

func TestRepository_Load_CorruptBlob(t *testing.T) {
	store := memory.NewBlobStore()
	require.NoError(t, store.Save(context.Background(), domain.CollectionTestSuites, []byte(`{not json`)))

	err := NewRepositoryService(store).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestRepository_Load_NullSnapshots(t *testing.T) {
	ctx := context.Background()
	store := memory.NewBlobStore()
	for _, key := range []string{domain.CollectionExplorations, domain.CollectionTestSuites, domain.CollectionChatHistories} {
		require.NoError(t, store.Save(ctx, key, []byte("null")))
	}

	repo := NewRepositoryService(store)
	require.NoError(t, repo.Load(ctx))

	assert.NotNil(t, repo.ListSuites())
	suite := addSuite(t, repo, "After null", threeCases())
	require.NoError(t, repo.AppendChatMessage(ctx, suite.ID, domain.ChatMessage{Role: domain.ChatRoleUser, Content: "hi"}))
	assert.Len(t, repo.ChatHistory(suite.ID), 1)
}

func TestRepository_Load_RoundTrip(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.AddExploration(ctx, domain.Exploration{Name: "Home", URL: "https://a", Page: json.RawMessage(`{"title":"A"}`)})
	require.NoError(t, err)
	suite := addSuite(t, repo, "Checkout", threeCases())
	require.NoError(t, repo.AppendChatMessage(ctx, suite.ID, domain.ChatMessage{Role: domain.ChatRoleUser, Content: "hi"}))

	reloaded := NewRepositoryService(store)
	require.NoError(t, reloaded.Load(ctx))

	require.Len(t, reloaded.ListExplorations(), 1)
	assert.JSONEq(t, `{"title":"A"}`, string(reloaded.ListExplorations()[0].Page))
	got, err := reloaded.GetSuite(suite.ID)
	require.NoError(t, err)
	assert.True(t, domain.EqualTestCases(threeCases(), got.TestCases))
	require.Len(t, reloaded.ChatHistory(suite.ID), 1)
	assert.Equal(t, "hi", reloaded.ChatHistory(suite.ID)[0].Content)
}

func TestRepository_Load_PrunesOrphanChats(t *testing.T) {
	store := memory.NewBlobStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.CollectionTestSuites, []byte(`[{"id":"s1","name":"S","test_cases":[]}]`)))
	require.NoError(t, store.Save(ctx, domain.CollectionChatHistories, []byte(`{
		"s1": [{"role":"user","content":"keep"}],
		"gone": [{"role":"user","content":"drop"}]
	}`)))

	repo := NewRepositoryService(store)
	require.NoError(t, repo.Load(ctx))

	assert.Len(t, repo.ChatHistory("s1"), 1)
	assert.Empty(t, repo.ChatHistory("gone"))
}

func TestRepository_AddExploration(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.AddExploration(ctx, domain.Exploration{ID: "ignored", Name: "First", URL: "https://one"})
	require.NoError(t, err)
	second, err := repo.AddExploration(ctx, domain.Exploration{Name: "Second", URL: "https://two"})
	require.NoError(t, err)

	assert.Equal(t, "id-1", first.ID)
	assert.Equal(t, "id-2", second.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	list := repo.ListExplorations()
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Name, "newest first")
	assert.Equal(t, "First", list[1].Name)

	assertWriteThrough(t, repo, store)
}

func TestRepository_DefaultIDsAreUnique(t *testing.T) {
	repo := NewRepositoryService(memory.NewBlobStore())
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		e, err := repo.AddExploration(ctx, domain.Exploration{Name: "x"})
		require.NoError(t, err)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestRepository_GetExploration_NotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.GetExploration("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_UpdateExploration(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	e, err := repo.AddExploration(ctx, domain.Exploration{Name: "Old", URL: "https://a"})
	require.NoError(t, err)

	name := "New"
	require.NoError(t, repo.UpdateExploration(ctx, e.ID, domain.ExplorationPatch{Name: &name}))

	got, err := repo.GetExploration(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "https://a", got.URL)
	assertWriteThrough(t, repo, store)
}

func TestRepository_DeleteExploration_KeepsSuiteSnapshot(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	e, err := repo.AddExploration(ctx, domain.Exploration{Name: "Home", Page: json.RawMessage(`{"title":"Home"}`)})
	require.NoError(t, err)
	suite, err := repo.AddSuite(ctx, domain.TestSuite{Name: "S", Exploration: e.Page})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteExploration(ctx, e.ID))

	_, err = repo.GetExploration(e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := repo.GetSuite(suite.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Home"}`, string(got.Exploration))
	assertWriteThrough(t, repo, store)
}

func TestRepository_AddSuite_SnapshotIsCopied(t *testing.T) {
	repo, _ := newTestRepository(t)
	page := json.RawMessage(`{"title":"A"}`)
	cases := threeCases()

	suite, err := repo.AddSuite(context.Background(), domain.TestSuite{Name: "S", Exploration: page, TestCases: cases})
	require.NoError(t, err)

	page[2] = 'X'
	cases[0].Name = "mutated"
	suite.TestCases[1].Name = "mutated too"

	got, err := repo.GetSuite(suite.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"A"}`, string(got.Exploration))
	assert.Equal(t, "Open home page", got.TestCases[0].Name)
	assert.Equal(t, "Search for product", got.TestCases[1].Name)
}

func TestRepository_GetSuite_ReturnsCopy(t *testing.T) {
	repo, _ := newTestRepository(t)
	suite := addSuite(t, repo, "S", threeCases())

	got, err := repo.GetSuite(suite.ID)
	require.NoError(t, err)
	got.TestCases[0].Steps[0] = "changed"

	again, err := repo.GetSuite(suite.ID)
	require.NoError(t, err)
	assert.Equal(t, "Navigate to /", again.TestCases[0].Steps[0])
}

func TestRepository_UpdateSuite_ReplacesNamedFields(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	suite := addSuite(t, repo, "S", threeCases())

	cases := threeCases()[:1]
	require.NoError(t, repo.UpdateSuite(ctx, suite.ID, domain.SuitePatch{TestCases: &cases}))

	got, err := repo.GetSuite(suite.ID)
	require.NoError(t, err)
	assert.Equal(t, "S", got.Name, "unnamed fields untouched")
	assert.Len(t, got.TestCases, 1)

	name := "Renamed"
	require.NoError(t, repo.UpdateSuite(ctx, suite.ID, domain.SuitePatch{Name: &name}))
	got, err = repo.GetSuite(suite.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.TestCases, 1)

	assertWriteThrough(t, repo, store)
}

func TestRepository_UpdateUnknownID_IsNoOp(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	suite := addSuite(t, repo, "S", threeCases())
	writes := store.Writes()

	name := "x"
	cases := []domain.TestCase{}
	require.NoError(t, repo.UpdateSuite(ctx, "missing", domain.SuitePatch{Name: &name, TestCases: &cases}))
	require.NoError(t, repo.UpdateExploration(ctx, "missing", domain.ExplorationPatch{Name: &name}))

	suites := repo.ListSuites()
	require.Len(t, suites, 1)
	assert.Equal(t, suite.ID, suites[0].ID)
	assert.Equal(t, "S", suites[0].Name)
	assert.Equal(t, writes, store.Writes(), "no write for unknown ids")
}

func TestRepository_DeleteUnknownID_IsNoOp(t *testing.T) {
	repo, store := newTestRepository(t)
	addSuite(t, repo, "S", threeCases())
	writes := store.Writes()

	require.NoError(t, repo.DeleteSuite(context.Background(), "missing"))
	require.NoError(t, repo.DeleteExploration(context.Background(), "missing"))

	assert.Len(t, repo.ListSuites(), 1)
	assert.Equal(t, writes, store.Writes())
}

func TestRepository_DeleteSuite_CascadesChatHistory(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	suite := addSuite(t, repo, "S", threeCases())
	other := addSuite(t, repo, "Other", threeCases())

	for i := 0; i < 4; i++ {
		role := domain.ChatRoleUser
		if i%2 == 1 {
			role = domain.ChatRoleAssistant
		}
		require.NoError(t, repo.AppendChatMessage(ctx, suite.ID, domain.ChatMessage{Role: role, Content: "m"}))
	}
	require.NoError(t, repo.AppendChatMessage(ctx, other.ID, domain.ChatMessage{Role: domain.ChatRoleUser, Content: "keep"}))
	require.Len(t, repo.ChatHistory(suite.ID), 4)

	require.NoError(t, repo.DeleteSuite(ctx, suite.ID))

	history := repo.ChatHistory(suite.ID)
	assert.NotNil(t, history)
	assert.Empty(t, history)
	assert.Len(t, repo.ChatHistory(other.ID), 1)

	chats := persistedChats(t, store)
	assert.NotContains(t, chats, suite.ID)
	assert.Contains(t, chats, other.ID)
	assert.Nil(t, persistedSuite(t, store, suite.ID))
	assertWriteThrough(t, repo, store)
}

func TestRepository_DeleteSuite_SingleAtomicWrite(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	suite := addSuite(t, repo, "S", nil)
	require.NoError(t, repo.AppendChatMessage(ctx, suite.ID, domain.ChatMessage{Role: domain.ChatRoleUser, Content: "m"}))
	writes := store.Writes()

	require.NoError(t, repo.DeleteSuite(ctx, suite.ID))
	assert.Equal(t, writes+1, store.Writes())
}

func TestRepository_DeleteSuite_StorageFailureKeepsMemoryState(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	suite := addSuite(t, repo, "S", nil)
	require.NoError(t, repo.AppendChatMessage(ctx, suite.ID, domain.ChatMessage{Role: domain.ChatRoleUser, Content: "m"}))

	store.SetSaveError(errors.New("disk full"))
	err := repo.DeleteSuite(ctx, suite.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)

	// Memory is authoritative: both are gone in memory, both still on disk
	_, err = repo.GetSuite(suite.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, repo.ChatHistory(suite.ID))
	assert.NotNil(t, persistedSuite(t, store, suite.ID))
	assert.Contains(t, persistedChats(t, store), suite.ID)
}

func TestRepository_StorageFailure_SurfacedAndMemoryKept(t *testing.T) {
	repo, store := newTestRepository(t)
	quota := errors.New("quota exceeded")
	store.SetSaveError(quota)

	e, err := repo.AddExploration(context.Background(), domain.Exploration{Name: "Home"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, quota)
	require.NotNil(t, e)

	got, err := repo.GetExploration(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Name)

	// The next successful write carries the earlier mutation too
	store.SetSaveError(nil)
	_, err = repo.AddExploration(context.Background(), domain.Exploration{Name: "Next"})
	require.NoError(t, err)
	assertWriteThrough(t, repo, store)
}

func TestRepository_WriteThroughAcrossSequence(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()

	a := addSuite(t, repo, "A", threeCases())
	assertWriteThrough(t, repo, store)
	b := addSuite(t, repo, "B", nil)
	assertWriteThrough(t, repo, store)

	cases := casesNamed("B", 2)
	require.NoError(t, repo.UpdateSuite(ctx, b.ID, domain.SuitePatch{TestCases: &cases}))
	assertWriteThrough(t, repo, store)

	require.NoError(t, repo.DeleteSuite(ctx, a.ID))
	assertWriteThrough(t, repo, store)

	_, err := repo.AddExploration(ctx, domain.Exploration{Name: "E"})
	require.NoError(t, err)
	assertWriteThrough(t, repo, store)
}

func TestRepository_ChatHistory(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	suite := addSuite(t, repo, "S", nil)

	assert.Empty(t, repo.ChatHistory(suite.ID))

	require.NoError(t, repo.AppendChatMessage(ctx, suite.ID, domain.ChatMessage{Role: domain.ChatRoleUser, Content: "first"}))
	require.NoError(t, repo.AppendChatMessage(ctx, suite.ID, domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: "second"}))

	history := repo.ChatHistory(suite.ID)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.False(t, history[0].CreatedAt.IsZero())

	history[0].Content = "mutated"
	assert.Equal(t, "first", repo.ChatHistory(suite.ID)[0].Content)

	assert.Len(t, persistedChats(t, store)[suite.ID], 2)

	require.NoError(t, repo.ClearChatHistory(ctx, suite.ID))
	assert.Empty(t, repo.ChatHistory(suite.ID))
	assert.NotContains(t, persistedChats(t, store), suite.ID)
}

func TestRepository_AppendChatMessage_InvalidRole(t *testing.T) {
	repo, _ := newTestRepository(t)
	suite := addSuite(t, repo, "S", nil)

	err := repo.AppendChatMessage(context.Background(), suite.ID, domain.ChatMessage{Role: "system", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRepository_AppendChatMessage_UnknownSuiteIgnored(t *testing.T) {
	repo, store := newTestRepository(t)

	err := repo.AppendChatMessage(context.Background(), "missing", domain.ChatMessage{Role: domain.ChatRoleUser, Content: "x"})
	require.NoError(t, err)
	assert.Empty(t, repo.ChatHistory("missing"))
	assert.Equal(t, 0, store.Writes())
}
