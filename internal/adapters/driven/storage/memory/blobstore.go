package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
// Writes can be made to fail with SetSaveError, which tests use to
// simulate quota or disk errors.
type BlobStore struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	saveErr error
	writes  int
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

// Load returns a copy of the blob stored under key.
func (s *BlobStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save replaces the blob stored under key.
func (s *BlobStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.blobs[key] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// SaveMany replaces several keys at once.
func (s *BlobStore) SaveMany(_ context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	for key, data := range entries {
		s.blobs[key] = append([]byte(nil), data...)
	}
	s.writes++
	return nil
}

// Close is a no-op.
func (s *BlobStore) Close() error {
	return nil
}

// SetSaveError makes every subsequent write fail with err. Pass nil to clear.
func (s *BlobStore) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Writes returns how many successful write calls have been made.
func (s *BlobStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Keys returns the number of stored keys.
func (s *BlobStore) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
