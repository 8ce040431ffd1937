package driven

import "context"

// BlobStore persists whole collections as serialized blobs, one key per collection.
// Every write replaces the full value stored under its key.
type BlobStore interface {
	// Load returns the blob stored under key.
	// Returns domain.ErrNotFound if nothing has been saved under key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the blob stored under key.
	Save(ctx context.Context, key string, data []byte) error

	// SaveMany replaces several keys in one atomic write.
	// Either every entry is stored or none is.
	SaveMany(ctx context.Context, entries map[string][]byte) error

	// Close releases resources.
	Close() error
}
