package driving

import (
	"context"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// RepositoryService is typed CRUD over explorations, test suites and chat histories.
//
// Every mutation persists the whole affected collection before returning.
// When persistence fails the in-memory change is kept and an error wrapping
// domain.ErrStorage is returned. Updates and deletes of unknown ids are
// silent no-ops.
type RepositoryService interface {
	// Load hydrates the in-memory collections from the durable store.
	Load(ctx context.Context) error

	// AddExploration stores a new exploration at the front of the collection.
	AddExploration(ctx context.Context, e domain.Exploration) (*domain.Exploration, error)

	// GetExploration returns a copy of an exploration, or domain.ErrNotFound.
	GetExploration(id string) (*domain.Exploration, error)

	// ListExplorations returns copies of all explorations, newest first.
	ListExplorations() []domain.Exploration

	// UpdateExploration replaces the named fields of an exploration.
	UpdateExploration(ctx context.Context, id string, patch domain.ExplorationPatch) error

	// DeleteExploration removes an exploration. Suites keep their snapshots.
	DeleteExploration(ctx context.Context, id string) error

	// AddSuite stores a new suite at the front of the collection.
	AddSuite(ctx context.Context, s domain.TestSuite) (*domain.TestSuite, error)

	// GetSuite returns a copy of a suite, or domain.ErrNotFound.
	GetSuite(id string) (*domain.TestSuite, error)

	// ListSuites returns copies of all suites, newest first.
	ListSuites() []domain.TestSuite

	// UpdateSuite replaces the named fields of a suite.
	UpdateSuite(ctx context.Context, id string, patch domain.SuitePatch) error

	// DeleteSuite removes a suite together with its chat history.
	DeleteSuite(ctx context.Context, id string) error

	// ChatHistory returns the suite's transcript. Never nil.
	ChatHistory(suiteID string) []domain.ChatMessage

	// AppendChatMessage appends to the suite's transcript, creating it if needed.
	AppendChatMessage(ctx context.Context, suiteID string, msg domain.ChatMessage) error

	// ClearChatHistory removes the suite's transcript.
	ClearChatHistory(ctx context.Context, suiteID string) error
}
