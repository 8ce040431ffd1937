package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// loadJSON decodes the blob under key into v; a missing key leaves v untouched.
func loadJSON(t *testing.T, store *memory.BlobStore, key string, v any) {
	t.Helper()
	data, err := store.Load(context.Background(), key)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}
