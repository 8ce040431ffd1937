package driven

import (
	"context"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// PageExplorer captures a web page into a structured snapshot.
type PageExplorer interface {
	// Explore fetches url and extracts its title, interactive elements and layout.
	// Transport failures are wrapped with domain.ErrNetwork.
	Explore(ctx context.Context, url string) (*domain.PageSnapshot, error)
}
