package driving

import (
	"context"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// ExportFormat selects how a suite is rendered for export.
type ExportFormat string

// Available export formats.
const (
	ExportJSON     ExportFormat = "json"
	ExportMarkdown ExportFormat = "markdown"
)

// PublishService renders suites for sharing.
type PublishService interface {
	// Export renders a stored suite in the given format.
	Export(suiteID string, format ExportFormat) (string, error)

	// Publish exports a suite and uploads it through the configured publisher.
	Publish(ctx context.Context, suiteID string, format ExportFormat) (*domain.PublishResult, error)

	// PublishCode uploads generated test code for a suite.
	PublishCode(ctx context.Context, suiteID, code string) (*domain.PublishResult, error)
}
