// Package tui provides an interactive terminal user interface for suitesmith.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Repository lists and deletes explorations and suites.
	Repository driving.RepositoryService

	// Review owns the edit buffer of the open suite.
	Review driving.ReviewService

	// Workflow explores pages and designs suites. Optional.
	Workflow driving.WorkflowService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Repository == nil {
		return ErrMissingRepositoryService
	}
	if p.Review == nil {
		return ErrMissingReviewService
	}
	return nil
}
