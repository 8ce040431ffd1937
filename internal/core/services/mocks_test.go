package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockAssistant implements driven.Assistant for testing.
type mockAssistant struct {
	mu sync.Mutex

	designResult *domain.DesignResult
	designErr    error
	designCount  int

	chatReply *domain.ChatReply
	chatErr   error
	chatReqs  []domain.ChatRequest
	// chatGate, when set, blocks Chat until it is closed.
	chatGate chan struct{}
	// chatStarted, when set, is signalled once Chat is entered.
	chatStarted chan struct{}

	codeResult *domain.CodeResult
	codeErr    error
	codeReq    domain.CodeRequest
}

var _ driven.Assistant = (*mockAssistant)(nil)

func (m *mockAssistant) DesignTests(_ context.Context, _ domain.PageSnapshot, desiredCount int) (*domain.DesignResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.designCount = desiredCount
	if m.designErr != nil {
		return nil, m.designErr
	}
	return m.designResult, nil
}

func (m *mockAssistant) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	m.mu.Lock()
	m.chatReqs = append(m.chatReqs, req)
	gate, started := m.chatGate, m.chatStarted
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chatErr != nil {
		return nil, m.chatErr
	}
	return m.chatReply, nil
}

func (m *mockAssistant) GenerateCode(_ context.Context, req domain.CodeRequest) (*domain.CodeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codeReq = req
	if m.codeErr != nil {
		return nil, m.codeErr
	}
	return m.codeResult, nil
}

// mockExplorer implements driven.PageExplorer for testing.
type mockExplorer struct {
	snapshot *domain.PageSnapshot
	err      error
	urls     []string
}

var _ driven.PageExplorer = (*mockExplorer)(nil)

func (m *mockExplorer) Explore(_ context.Context, url string) (*domain.PageSnapshot, error) {
	m.urls = append(m.urls, url)
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

// mockPublisher implements driven.Publisher for testing.
type mockPublisher struct {
	filename    string
	description string
	content     string
	err         error
}

var _ driven.Publisher = (*mockPublisher)(nil)

func (m *mockPublisher) Publish(_ context.Context, filename, description, content string) (*domain.PublishResult, error) {
	m.filename, m.description, m.content = filename, description, content
	if m.err != nil {
		return nil, m.err
	}
	return &domain.PublishResult{ID: "gist-1", URL: "https://gist.github.com/gist-1"}, nil
}

// --- Helpers ---

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

// sequentialIDs returns an id generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// newTestRepository creates a repository over a fresh memory blob store.
func newTestRepository(t *testing.T) (*RepositoryService, *memory.BlobStore) {
	t.Helper()
	store := memory.NewBlobStore()
	repo := NewRepositoryService(store)
	repo.SetClock(fixedClock())
	repo.SetIDGenerator(sequentialIDs())
	require.NoError(t, repo.Load(context.Background()))
	return repo, store
}

// threeCases returns a suite body with ids 1..3.
func threeCases() []domain.TestCase {
	return []domain.TestCase{
		{ID: 1, Name: "Open home page", Steps: []string{"Navigate to /"}, ExpectedOutcome: "Home page renders", Priority: domain.PriorityHigh},
		{ID: 2, Name: "Search for product", Steps: []string{"Type query", "Press enter"}, ExpectedOutcome: "Results listed", Priority: domain.PriorityMedium},
		{ID: 3, Name: "Footer links", Steps: []string{"Scroll to footer"}, ExpectedOutcome: "Links visible", Priority: domain.PriorityLow},
	}
}

// casesNamed builds n valid test cases with the given name prefix.
func casesNamed(prefix string, n int) []domain.TestCase {
	cases := make([]domain.TestCase, n)
	for i := range cases {
		cases[i] = domain.TestCase{
			ID:              100 + i,
			Name:            fmt.Sprintf("%s %d", prefix, i+1),
			Steps:           []string{"step"},
			ExpectedOutcome: "ok",
			Priority:        domain.PriorityMedium,
		}
	}
	return cases
}

// addSuite stores a suite with the given cases and returns it.
func addSuite(t *testing.T, repo *RepositoryService, name string, cases []domain.TestCase) *domain.TestSuite {
	t.Helper()
	suite, err := repo.AddSuite(context.Background(), domain.TestSuite{
		Name:      name,
		URL:       "https://shop.example.com",
		TestCases: cases,
	})
	require.NoError(t, err)
	return suite
}

// persistedSuite reads a suite straight from the blob store.
func persistedSuite(t *testing.T, store *memory.BlobStore, id string) *domain.TestSuite {
	t.Helper()
	var suites []domain.TestSuite
	loadJSON(t, store, domain.CollectionTestSuites, &suites)
	for i := range suites {
		if suites[i].ID == id {
			return &suites[i]
		}
	}
	return nil
}

// persistedChats reads chat histories straight from the blob store.
func persistedChats(t *testing.T, store *memory.BlobStore) map[string][]domain.ChatMessage {
	t.Helper()
	chats := map[string][]domain.ChatMessage{}
	loadJSON(t, store, domain.CollectionChatHistories, &chats)
	return chats
}
