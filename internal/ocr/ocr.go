// Package ocr extracts text from screenshots with tesseract.
//
// Failures of any kind (missing binary, unreadable or non-image file, timeout,
// non-zero exit) are reported by Extract but swallowed by ExtractText, which
// callers in the ingest path use.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

type Config struct {
	Disabled    bool
	Tesseract   string        // binary name or absolute path; if empty -> "tesseract"
	Lang        string        // default "eng"
	TessdataDir string        // optional --tessdata-dir
	Timeout     time.Duration // per-run limit; 0 = no limit beyond ctx
}

// Result is the outcome of one OCR run.
type Result struct {
	Text     string
	MIMEType string
	Duration time.Duration
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *zap.Logger
}

func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner replaces the command runner (tests).
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// ExtractText returns the recognized text for path, or "" when nothing could be extracted.
func (e *Extractor) ExtractText(ctx context.Context, path string) string {
	res, err := e.Extract(ctx, path)
	if err != nil {
		e.logger.Debug("ocr produced no text", zap.String("path", path), zap.Error(err))
		return ""
	}
	return res.Text
}

// Extract sniffs path, refuses non-images, and runs `tesseract <path> stdout -l <lang>`.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	if e.cfg.Disabled {
		return Result{}, fmt.Errorf("ocr disabled")
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("detect type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Result{MIMEType: mtype.String()}, fmt.Errorf("not an image: %s", mtype.String())
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	res := Result{MIMEType: mtype.String(), Duration: time.Since(start)}
	if err != nil {
		return res, fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}

	// Tesseract ends pages with a form feed
	res.Text = strings.TrimSpace(strings.ReplaceAll(string(out), "\f", "\n"))
	e.logger.Debug("ocr extracted text",
		zap.String("path", path),
		zap.String("mime", res.MIMEType),
		zap.Int("chars", len(res.Text)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}
