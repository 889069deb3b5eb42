// Package store persists capture items.
//
// The default backend is a single JSON array file rewritten in full on every
// append. It assumes one writer at a time: there is no locking, and concurrent
// writers lose updates (last writer wins). The SQLite backend is available for
// setups that need a proper embedded store.
package store

import (
	"context"
	"fmt"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/config"
	"github.com/hpungsan/shotcap/internal/errors"
)

// Store is an append-only list of captures kept in insertion order.
type Store interface {
	// Append persists item after the existing items.
	Append(ctx context.Context, item capture.Item) error

	// All returns every item in insertion order. A store that does not exist yet is empty.
	All(ctx context.Context) ([]capture.Item, error)

	// Clear removes every item and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Location is the backing path, for display.
	Location() string

	// Close releases any resources held by the store.
	Close() error
}

// Open opens the store at path with the given driver ("json" or "sqlite").
// An empty driver means "json".
func Open(driver, path string) (Store, error) {
	if path == "" {
		return nil, errors.NewInvalidRequest("store path is required")
	}
	switch driver {
	case "", config.StoreDriverJSON:
		return NewJSONStore(path), nil
	case config.StoreDriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown store driver %q (want %s or %s)",
			driver, config.StoreDriverJSON, config.StoreDriverSQLite))
	}
}
