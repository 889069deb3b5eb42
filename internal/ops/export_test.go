package ops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/shotcap/internal/errors"
)

func TestExport_JSONMatchesStoreFile(t *testing.T) {
	st := newJSONStore(t)
	ingest(t, st, "Call bank tomorrow", "call_bank.png")
	ingest(t, st, "Random idea", "idea.png")

	path := filepath.Join(t.TempDir(), "out.json")
	out, err := Export(context.Background(), st, ExportInput{Path: path, Now: monday})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 2 || out.Format != FormatJSON {
		t.Errorf("out = %+v", out)
	}

	want, _ := os.ReadFile(st.Location())
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("export differs from store file:\n got: %s\nwant: %s", got, want)
	}

	if runtime.GOOS != "windows" {
		info, _ := os.Stat(path)
		if info.Mode().Perm() != 0600 {
			t.Errorf("mode = %v, want 0600", info.Mode().Perm())
		}
	}
}

func TestExport_JSONL(t *testing.T) {
	st := newJSONStore(t)
	ingest(t, st, "Pay rent", "a.png")
	ingest(t, st, "Meeting tomorrow", "b.png")

	path := filepath.Join(t.TempDir(), "out.jsonl")
	if _, err := Export(context.Background(), st, ExportInput{Path: path, Now: monday}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (header + 2)", len(lines))
	}

	var header ExportHeader
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	if !header.ShotcapExport || header.SchemaVersion != ExportSchemaVersion || header.Count != 2 {
		t.Errorf("header = %+v", header)
	}
	if !header.ExportedAt.Equal(monday) {
		t.Errorf("ExportedAt = %v, want %v", header.ExportedAt, monday)
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[2]), &rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec["kind"] != "reminder" || rec["reminder_at"] != "2026-10-20T09:00:00Z" {
		t.Errorf("record = %v", rec)
	}
}

func TestExport_YAML(t *testing.T) {
	st := newJSONStore(t)
	ingest(t, st, "Buy milk", "milk.png")
	ingest(t, st, "Dentist on Friday", "dentist.png")

	path := filepath.Join(t.TempDir(), "out.yml")
	out, err := Export(context.Background(), st, ExportInput{Path: path, Format: "yaml"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Format != FormatYAML {
		t.Errorf("Format = %q, want yaml", out.Format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var recs []map[string]any
	if err := yaml.Unmarshal(data, &recs); err != nil {
		t.Fatalf("yaml: %v\n%s", err, data)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0]["kind"] != "task" || recs[0]["reminder_at"] != nil {
		t.Errorf("recs[0] = %v", recs[0])
	}
	if recs[1]["kind"] != "reminder" || recs[1]["reminder_at"] == nil {
		t.Errorf("recs[1] = %v", recs[1])
	}
	if !strings.Contains(string(data), "source: milk.png") {
		t.Errorf("missing source key:\n%s", data)
	}
}

func TestExport_EmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	out, err := Export(context.Background(), newJSONStore(t), ExportInput{Path: path})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("Count = %d, want 0", out.Count)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "[]\n" {
		t.Errorf("content = %q, want %q", data, "[]\n")
	}
}

func TestExport_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	st := newJSONStore(t)
	ingest(t, st, "note", "a.png")

	at := time.Date(2026, 10, 19, 14, 30, 5, 0, time.UTC)
	out, err := Export(context.Background(), st, ExportInput{Format: "jsonl", Now: at})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	want := filepath.Join(home, ".shotcap", "exports", "captures-2026-10-19T143005.jsonl")
	if out.Path != want {
		t.Errorf("Path = %q, want %q", out.Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestExport_CorruptStoreWritesNothing(t *testing.T) {
	st := newJSONStore(t)
	if err := os.WriteFile(st.Location(), []byte("[{"), 0600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.json")

	_, err := Export(context.Background(), st, ExportInput{Path: path})
	if !errors.Is(err, errors.ErrStoreCorrupt) {
		t.Fatalf("error = %v, want STORE_CORRUPT", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("export file should not be created")
	}
}

func TestExport_OverwritesExisting(t *testing.T) {
	st := newJSONStore(t)
	ingest(t, st, "fresh", "a.png")

	path := filepath.Join(t.TempDir(), "out.json")
	if err := os.WriteFile(path, []byte("stale"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Export(context.Background(), st, ExportInput{Path: path}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"body": "fresh"`) {
		t.Errorf("content = %s", data)
	}
}

func TestValidateExportPath_Rejected(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "captures.json")

	tests := []struct {
		name   string
		path   string
		format Format
	}{
		{"empty", "", ""},
		{"parent traversal", "../backup.json", ""},
		{"mid-path traversal", "/tmp/../etc/backup.json", ""},
		{"no extension", filepath.Join(dir, "backup"), ""},
		{"unknown extension", filepath.Join(dir, "backup.txt"), ""},
		{"format mismatch", filepath.Join(dir, "backup.json"), FormatYAML},
		{"jsonl needs .jsonl", filepath.Join(dir, "backup.json"), FormatJSONL},
		{"store file", storePath, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ValidateExportPath(tt.path, tt.format, storePath)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("error = %v, want INVALID_REQUEST", err)
			}
		})
	}
}

func TestValidateExportPath_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target.json")
	if err := os.WriteFile(target, []byte("[]"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.json")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	_, _, err := ValidateExportPath(link, "", "")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestValidateExportPath_InfersFormat(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file string
		want Format
	}{
		{"a.json", FormatJSON},
		{"a.JSONL", FormatJSONL},
		{"a.yaml", FormatYAML},
		{"a.yml", FormatYAML},
	}
	for _, tt := range tests {
		abs, got, err := ValidateExportPath(filepath.Join(dir, tt.file), "", "")
		if err != nil {
			t.Errorf("%s: %v", tt.file, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: format = %q, want %q", tt.file, got, tt.want)
		}
		if !filepath.IsAbs(abs) {
			t.Errorf("%s: path %q not absolute", tt.file, abs)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("csv"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("ParseFormat(csv) error = %v, want INVALID_REQUEST", err)
	}
	f, err := ParseFormat(" YAML ")
	if err != nil || f != FormatYAML {
		t.Errorf("ParseFormat(YAML) = %q, %v", f, err)
	}
}
