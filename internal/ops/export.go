package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/errors"
	"github.com/hpungsan/shotcap/internal/fsutil"
	"github.com/hpungsan/shotcap/internal/store"
)

// ExportSchemaVersion is written in the JSONL header line.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path   string    // optional, default: ~/.shotcap/exports/captures-<timestamp>.<ext>
	Format string    // json (default), jsonl, yaml; inferred from Path when empty
	Now    time.Time // default: time.Now()
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string    `json:"path"`
	Format     Format    `json:"format"`
	Count      int       `json:"count"`
	ExportedAt time.Time `json:"exported_at"`
}

// ExportHeader is the first line of a JSONL export.
type ExportHeader struct {
	ShotcapExport bool      `json:"_shotcap_export"`
	SchemaVersion string    `json:"schema_version"`
	ExportedAt    time.Time `json:"exported_at"`
	Count         int       `json:"count"`
}

// Export writes every capture in st to a file. The file is written to a temp
// file and renamed into place, so an existing export is never left half-written.
func Export(ctx context.Context, st store.Store, input ExportInput) (*ExportOutput, error) {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC().Truncate(time.Second)

	format, err := ParseFormat(input.Format)
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		if format == "" {
			format = FormatJSON
		}
		exportPath, err = defaultExportPath(format, now)
		if err != nil {
			return nil, err
		}
	}

	absPath, format, err := ValidateExportPath(exportPath, format, st.Location())
	if err != nil {
		return nil, err
	}

	items, err := st.All(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkContext(ctx, "export"); err != nil {
		return nil, err
	}

	data, err := EncodeItems(items, format, now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := fsutil.WriteFileAtomic(absPath, data, 0600); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       absPath,
		Format:     format,
		Count:      len(items),
		ExportedAt: now,
	}, nil
}

// EncodeItems renders items in the given format.
// json is byte-identical to the store file; jsonl starts with an ExportHeader line.
func EncodeItems(items []capture.Item, format Format, exportedAt time.Time) ([]byte, error) {
	if items == nil {
		items = []capture.Item{}
	}
	switch format {
	case FormatJSON:
		return store.Encode(items)

	case FormatJSONL:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		header := ExportHeader{
			ShotcapExport: true,
			SchemaVersion: ExportSchemaVersion,
			ExportedAt:    exportedAt,
			Count:         len(items),
		}
		if err := enc.Encode(header); err != nil {
			return nil, err
		}
		for _, it := range items {
			if err := enc.Encode(it); err != nil {
				return nil, err
			}
		}
		return buf.Bytes(), nil

	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// defaultExportPath generates ~/.shotcap/exports/captures-<timestamp>.<ext>.
func defaultExportPath(format Format, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("captures-%s%s", now.Format("2006-01-02T150405"), extensions[format][0])
	return filepath.Join(dir, filename), nil
}
