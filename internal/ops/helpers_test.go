package ops

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hpungsan/shotcap/internal/config"
	"github.com/hpungsan/shotcap/internal/store"
)

// monday is 2026-10-19 14:30 UTC, a Monday.
var monday = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

// stubExtractor returns fixed text for every path and records calls.
type stubExtractor struct {
	text  string
	calls []string
}

func (s *stubExtractor) ExtractText(_ context.Context, path string) string {
	s.calls = append(s.calls, path)
	return s.text
}

func newJSONStore(t *testing.T) *store.JSONStore {
	t.Helper()
	return store.NewJSONStore(filepath.Join(t.TempDir(), "captures.json"))
}

func ingest(t *testing.T, st store.Store, text, screenshot string) {
	t.Helper()
	_, err := Ingest(context.Background(), st, nil, config.DefaultConfig(), IngestInput{
		Screenshot:   screenshot,
		FallbackText: text,
		Now:          monday,
	})
	if err != nil {
		t.Fatalf("Ingest(%q) failed: %v", screenshot, err)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
