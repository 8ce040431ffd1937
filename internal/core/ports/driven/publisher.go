package driven

import (
	"context"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// Publisher uploads a rendered document somewhere shareable.
type Publisher interface {
	// Publish uploads content under filename and returns where it landed.
	Publish(ctx context.Context, filename, description, content string) (*domain.PublishResult, error)
}
