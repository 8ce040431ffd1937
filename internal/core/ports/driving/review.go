package driving

import (
	"context"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// ReviewService is the review workspace: one suite open at a time, with a
// private edit buffer reconciled against the repository.
//
// Manual edits stay in the buffer until Save. Chat replies that carry a
// replacement set are applied to the buffer and persisted in the same step.
type ReviewService interface {
	// Open starts reviewing a suite. If another suite is open and dirty the
	// configured dirty policy applies; discard forces the unsaved edits away.
	Open(ctx context.Context, suiteID string, discard bool) error

	// Leave closes the open suite under the same rules as Open.
	Leave(ctx context.Context, discard bool) error

	// SetDirtyPolicy changes what Open and Leave do with unsaved edits.
	SetDirtyPolicy(policy domain.DirtyPolicy) error

	// Status returns the current state and dirty signal.
	Status() domain.ReviewStatus

	// TestCases returns a copy of the buffer.
	TestCases() []domain.TestCase

	// SetField sets name, description, expected_outcome or priority of one case.
	SetField(index int, field, value string) error

	// SetSteps replaces one case's steps from newline-delimited text.
	SetSteps(index int, text string) error

	// AddBlank appends a placeholder case and returns its index.
	AddBlank() (int, error)

	// RemoveAt deletes one case.
	RemoveAt(index int) error

	// Save renumbers the buffer and persists it.
	Save(ctx context.Context) error

	// SendChat runs one chat turn for the open suite.
	SendChat(ctx context.Context, message string) (*domain.ChatReply, error)
}
