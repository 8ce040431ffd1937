package mcp

import (
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Repository reads explorations, suites and transcripts.
	Repository driving.RepositoryService

	// Review runs chat turns. Optional; without it the chat tool is not offered.
	Review driving.ReviewService

	// Workflow explores pages and designs suites. Optional.
	Workflow driving.WorkflowService

	// Publish renders suites for the suite resources. Optional.
	Publish driving.PublishService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Repository == nil {
		return ErrMissingRepositoryService
	}
	return nil
}
