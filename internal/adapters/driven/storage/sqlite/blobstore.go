package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
)

// blobStore implements driven.BlobStore over the collections table.
type blobStore struct {
	store *Store
}

var _ driven.BlobStore = (*blobStore)(nil)

const upsertCollection = `
	INSERT INTO collections (key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
`

// Load returns the blob stored under key.
func (b *blobStore) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.store.db.QueryRowContext(ctx,
		"SELECT value FROM collections WHERE key = ?", key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	return data, nil
}

// Save replaces the blob stored under key.
func (b *blobStore) Save(ctx context.Context, key string, data []byte) error {
	if _, err := b.store.db.ExecContext(ctx, upsertCollection, key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// SaveMany replaces several keys in one transaction.
func (b *blobStore) SaveMany(ctx context.Context, entries map[string][]byte) error {
	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// Stable order keeps lock acquisition predictable
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, upsertCollection, key, entries[key]); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the database.
func (b *blobStore) Close() error {
	return nil
}
