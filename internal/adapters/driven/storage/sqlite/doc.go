// Package sqlite is the durable BlobStore.
//
// Each collection key (explorations, test suites, chat histories) is one row
// of the collections table holding the whole collection as JSON, so a write
// replaces a collection atomically and SaveMany spans one transaction.
//
// The driver is modernc.org/sqlite, so no cgo is needed. The database opens
// in WAL mode at ~/.suitesmith/data/suitesmith.db and its schema comes from
// the embedded migrations/ directory.
package sqlite
