package driven

import (
	"context"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// Assistant is the AI collaborator that designs, revises and renders test suites.
//
// Failures are reported with domain.ErrNetwork when the backend is unreachable
// and domain.ErrValidation when its answer has the wrong shape.
type Assistant interface {
	// DesignTests proposes test cases for a page snapshot.
	DesignTests(ctx context.Context, page domain.PageSnapshot, desiredCount int) (*domain.DesignResult, error)

	// Chat answers one chat turn about a suite.
	// A reply with ModifiedTestCases set replaces the whole suite.
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)

	// GenerateCode renders test cases as executable test code.
	GenerateCode(ctx context.Context, req domain.CodeRequest) (*domain.CodeResult, error)
}
