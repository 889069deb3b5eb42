package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/errors"
	"github.com/hpungsan/shotcap/internal/fsutil"
)

// JSONStore keeps captures as one indented JSON array in a file.
type JSONStore struct {
	path string
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore returns a store backed by the JSON file at path. The file is created on first append.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Location returns the file path.
func (s *JSONStore) Location() string { return s.path }

// Close is a no-op; the file is not held open between calls.
func (s *JSONStore) Close() error { return nil }

// All reads the whole file. A missing file yields an empty slice; anything that is
// not a JSON array of valid captures is STORE_CORRUPT.
func (s *JSONStore) All(ctx context.Context) ([]capture.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("read store")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return []capture.Item{}, nil
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to read store: %w", err))
	}

	var items []capture.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.NewStoreCorrupt(s.path, err)
	}
	if items == nil {
		// literal "null"
		return nil, errors.NewStoreCorrupt(s.path, fmt.Errorf("expected array, got null"))
	}

	for i, it := range items {
		if err := capture.Validate(it); err != nil {
			return nil, errors.NewStoreCorrupt(s.path, fmt.Errorf("item %d: %w", i, err))
		}
	}
	return items, nil
}

// Append reads the current array, appends item, and rewrites the whole file.
func (s *JSONStore) Append(ctx context.Context, item capture.Item) error {
	if err := capture.Validate(item); err != nil {
		return err
	}
	items, err := s.All(ctx)
	if err != nil {
		return err
	}
	return s.write(append(items, item))
}

// Clear rewrites the file as an empty array. A missing file is left missing.
// A corrupt file is not touched.
func (s *JSONStore) Clear(ctx context.Context) (int, error) {
	if _, err := os.Stat(s.path); stderrors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	items, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.write([]capture.Item{}); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *JSONStore) write(items []capture.Item) error {
	data, err := Encode(items)
	if err != nil {
		return errors.NewInternal(err)
	}
	path, err := fsutil.ResolvePath(s.path)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

// Encode renders items in the store file format: a JSON array with 2-space indentation.
func Encode(items []capture.Item) ([]byte, error) {
	if items == nil {
		items = []capture.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
