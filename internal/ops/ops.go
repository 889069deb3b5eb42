// Package ops implements the capture operations shared by the CLI, the MCP
// server and the web UI. Each operation takes an Input struct and returns an
// Output struct or a *errors.CaptureError.
package ops

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/errors"
)

// TextExtractor recognizes text in a screenshot. Implementations return ""
// when nothing could be extracted; they never fail the ingestion.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) string
}

// Text sources reported by Ingest.
const (
	TextSourceOCR      = "ocr"
	TextSourceFallback = "fallback"
	TextSourceFilename = "filename"
)

// ResolveText picks the raw text for a screenshot: OCR output if non-blank,
// else the trimmed fallback text if non-blank, else the file stem with
// underscores turned into spaces. ex may be nil.
func ResolveText(ctx context.Context, ex TextExtractor, screenshot, fallback string) (text, source string) {
	if ex != nil {
		if t := ex.ExtractText(ctx, screenshot); strings.TrimSpace(t) != "" {
			return t, TextSourceOCR
		}
	}
	if t := strings.TrimSpace(fallback); t != "" {
		return t, TextSourceFallback
	}
	return StemText(screenshot), TextSourceFilename
}

// StemText turns "brainstorm_ideas.png" into "brainstorm ideas".
func StemText(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return strings.ReplaceAll(stem, "_", " ")
}

// ParseKind validates an optional kind filter. "" means no filter.
func ParseKind(s string) (capture.Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	k := capture.Kind(s)
	if !k.Valid() {
		return "", errors.NewInvalidRequest("kind must be one of note, task, reminder")
	}
	return k, nil
}

func checkContext(ctx context.Context, op string) error {
	if ctx.Err() != nil {
		return errors.NewCancelled(op)
	}
	return nil
}
