package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// Ensure RepositoryService implements the interface.
var _ driving.RepositoryService = (*RepositoryService)(nil)

var repoLog = logger.For("repository")

// RepositoryService holds the explorations, suites and chat histories in
// memory and writes each affected collection through to the blob store.
type RepositoryService struct {
	mu           sync.RWMutex
	store        driven.BlobStore
	explorations *collection[domain.Exploration]
	suites       *collection[domain.TestSuite]
	chats        map[string][]domain.ChatMessage

	now   func() time.Time
	newID func() string
}

// NewRepositoryService creates a repository over store.
// Call Load to hydrate it from previously persisted data.
func NewRepositoryService(store driven.BlobStore) *RepositoryService {
	return &RepositoryService{
		store: store,
		explorations: newCollection(domain.CollectionExplorations,
			func(e *domain.Exploration) string { return e.ID },
			cloneExploration,
		),
		suites: newCollection(domain.CollectionTestSuites,
			func(s *domain.TestSuite) string { return s.ID },
			domain.TestSuite.Clone,
		),
		chats: make(map[string][]domain.ChatMessage),
		now:   time.Now,
		newID: newRecordID,
	}
}

// SetClock replaces the time source used for creation timestamps.
func (r *RepositoryService) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// SetIDGenerator replaces the identity generator.
func (r *RepositoryService) SetIDGenerator(fn func() string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.newID = fn
}

// newRecordID returns a time-ordered UUID so ids sort by creation.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func cloneExploration(e domain.Exploration) domain.Exploration {
	out := e
	if e.Page != nil {
		out.Page = append(json.RawMessage(nil), e.Page...)
	}
	return out
}

func cloneMessages(msgs []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

// Load hydrates the in-memory collections from the blob store.
// Missing keys yield empty collections. Chat histories whose suite no
// longer exists are dropped.
func (r *RepositoryService) Load(ctx context.Context) error {
	if r.store == nil {
		return domain.ErrNotImplemented
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadCollection(ctx, r.explorations.key, r.explorations.decode); err != nil {
		return err
	}
	if err := r.loadCollection(ctx, r.suites.key, r.suites.decode); err != nil {
		return err
	}
	err := r.loadCollection(ctx, domain.CollectionChatHistories, func(data []byte) error {
		chats := make(map[string][]domain.ChatMessage)
		if err := json.Unmarshal(data, &chats); err != nil {
			return err
		}
		if chats == nil {
			chats = make(map[string][]domain.ChatMessage)
		}
		r.chats = chats
		return nil
	})
	if err != nil {
		return err
	}

	for suiteID := range r.chats {
		if r.suites.index(suiteID) < 0 {
			repoLog.Warn("dropping chat history for missing suite %s", suiteID)
			delete(r.chats, suiteID)
		}
	}

	repoLog.Debug("loaded: %d explorations, %d suites, %d chat histories",
		len(r.explorations.items), len(r.suites.items), len(r.chats))
	return nil
}

func (r *RepositoryService) loadCollection(ctx context.Context, key string, decode func([]byte) error) error {
	data, err := r.store.Load(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w: %w", key, domain.ErrStorage, err)
	}
	if err := decode(data); err != nil {
		return fmt.Errorf("decoding %s: %w: %w", key, domain.ErrStorage, err)
	}
	return nil
}

// persist writes the named collections. Callers must hold the write lock.
// Several keys are written in one atomic SaveMany call.
func (r *RepositoryService) persist(ctx context.Context, keys ...string) error {
	if r.store == nil {
		return domain.ErrNotImplemented
	}

	entries := make(map[string][]byte, len(keys))
	for _, key := range keys {
		data, err := r.encode(key)
		if err != nil {
			return fmt.Errorf("encoding %s: %w: %w", key, domain.ErrStorage, err)
		}
		entries[key] = data
	}

	var err error
	if len(keys) == 1 {
		err = r.store.Save(ctx, keys[0], entries[keys[0]])
	} else {
		err = r.store.SaveMany(ctx, entries)
	}
	if err != nil {
		repoLog.Warn("persisting %v failed: %v", keys, err)
		return fmt.Errorf("saving %v: %w: %w", keys, domain.ErrStorage, err)
	}
	return nil
}

func (r *RepositoryService) encode(key string) ([]byte, error) {
	switch key {
	case domain.CollectionExplorations:
		return r.explorations.encode()
	case domain.CollectionTestSuites:
		return r.suites.encode()
	case domain.CollectionChatHistories:
		return json.Marshal(r.chats)
	default:
		return nil, fmt.Errorf("unknown collection %q", key)
	}
}

// ==================== Explorations ====================

// AddExploration stores e with a fresh id and creation time.
func (r *RepositoryService) AddExploration(ctx context.Context, e domain.Exploration) (*domain.Exploration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e = cloneExploration(e)
	e.ID = r.newID()
	e.CreatedAt = r.now()
	r.explorations.prepend(e)

	out := cloneExploration(e)
	if err := r.persist(ctx, domain.CollectionExplorations); err != nil {
		return &out, err
	}
	repoLog.Debug("added exploration %s (%s)", e.ID, e.URL)
	return &out, nil
}

// GetExploration returns a copy of the exploration with id.
func (r *RepositoryService) GetExploration(id string) (*domain.Exploration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.explorations.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

// ListExplorations returns every exploration, newest first.
func (r *RepositoryService) ListExplorations() []domain.Exploration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.explorations.list()
}

// UpdateExploration renames an exploration. Unknown ids are ignored.
func (r *RepositoryService) UpdateExploration(ctx context.Context, id string, patch domain.ExplorationPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.explorations.index(id)
	if i < 0 {
		repoLog.Debug("update of unknown exploration %s ignored", id)
		return nil
	}
	if patch.Name != nil {
		r.explorations.items[i].Name = *patch.Name
	}
	return r.persist(ctx, domain.CollectionExplorations)
}

// DeleteExploration removes an exploration. Unknown ids are ignored.
func (r *RepositoryService) DeleteExploration(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.explorations.remove(id) {
		return nil
	}
	return r.persist(ctx, domain.CollectionExplorations)
}

// ==================== Test Suites ====================

// AddSuite stores s with a fresh id and creation time.
func (r *RepositoryService) AddSuite(ctx context.Context, s domain.TestSuite) (*domain.TestSuite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s = s.Clone()
	s.ID = r.newID()
	s.CreatedAt = r.now()
	if s.TestCases == nil {
		s.TestCases = []domain.TestCase{}
	}
	r.suites.prepend(s)

	out := s.Clone()
	if err := r.persist(ctx, domain.CollectionTestSuites); err != nil {
		return &out, err
	}
	repoLog.Debug("added suite %s with %d test cases", s.ID, len(s.TestCases))
	return &out, nil
}

// GetSuite returns a copy of the suite with id.
func (r *RepositoryService) GetSuite(id string) (*domain.TestSuite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.suites.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

// ListSuites returns every suite, newest first.
func (r *RepositoryService) ListSuites() []domain.TestSuite {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.suites.list()
}

// UpdateSuite replaces the fields named in patch. Unknown ids are ignored.
func (r *RepositoryService) UpdateSuite(ctx context.Context, id string, patch domain.SuitePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.suites.index(id)
	if i < 0 {
		repoLog.Debug("update of unknown suite %s ignored", id)
		return nil
	}

	suite := &r.suites.items[i]
	if patch.Name != nil {
		suite.Name = *patch.Name
	}
	if patch.URL != nil {
		suite.URL = *patch.URL
	}
	if patch.TestCases != nil {
		cases := domain.CloneTestCases(*patch.TestCases)
		if cases == nil {
			cases = []domain.TestCase{}
		}
		suite.TestCases = cases
	}
	return r.persist(ctx, domain.CollectionTestSuites)
}

// DeleteSuite removes a suite and its chat history in one write.
// Unknown ids are ignored.
func (r *RepositoryService) DeleteSuite(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.suites.remove(id) {
		return nil
	}
	delete(r.chats, id)

	repoLog.Debug("deleted suite %s and its chat history", id)
	return r.persist(ctx, domain.CollectionTestSuites, domain.CollectionChatHistories)
}

// ==================== Chat Histories ====================

// ChatHistory returns a copy of the suite's transcript, empty if none exists.
func (r *RepositoryService) ChatHistory(suiteID string) []domain.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneMessages(r.chats[suiteID])
}

// AppendChatMessage appends msg to the suite's transcript.
// Messages for unknown suites are ignored so no orphan history is created.
func (r *RepositoryService) AppendChatMessage(ctx context.Context, suiteID string, msg domain.ChatMessage) error {
	if !msg.Role.IsValid() {
		return fmt.Errorf("%w: chat role %q", domain.ErrInvalidInput, msg.Role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.suites.index(suiteID) < 0 {
		repoLog.Debug("chat message for unknown suite %s ignored", suiteID)
		return nil
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.now()
	}
	r.chats[suiteID] = append(r.chats[suiteID], msg)
	return r.persist(ctx, domain.CollectionChatHistories)
}

// ClearChatHistory removes the suite's transcript.
func (r *RepositoryService) ClearChatHistory(ctx context.Context, suiteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[suiteID]; !ok {
		return nil
	}
	delete(r.chats, suiteID)
	return r.persist(ctx, domain.CollectionChatHistories)
}
