package driving

import (
	"context"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// WorkflowService runs the explore, design and code generation phases.
type WorkflowService interface {
	// Explore captures url and stores it as a new exploration.
	// An empty name defaults to the page title.
	Explore(ctx context.Context, url, name string) (*domain.Exploration, error)

	// DesignSuite asks the assistant for test cases for an exploration and
	// stores them as a new suite. A zero count uses the configured default.
	DesignSuite(ctx context.Context, explorationID, name string, count int) (*domain.TestSuite, error)

	// GenerateCode renders a stored suite as executable test code.
	GenerateCode(ctx context.Context, suiteID, instructions string) (*domain.CodeResult, error)
}
