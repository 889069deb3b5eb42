package ops

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/config"
	"github.com/hpungsan/shotcap/internal/errors"
	"github.com/hpungsan/shotcap/internal/store"
)

// IngestInput contains parameters for the Ingest operation.
type IngestInput struct {
	Screenshot   string    // required; need not exist on disk
	FallbackText string    // used when OCR yields nothing
	Now          time.Time // default: time.Now()
}

// IngestOutput contains the result of the Ingest operation.
type IngestOutput struct {
	Item       capture.Item `json:"item"`
	TextSource string       `json:"text_source"`
	Store      string       `json:"store"`
}

// Ingest turns a screenshot into a capture and appends it to st.
func Ingest(ctx context.Context, st store.Store, ex TextExtractor, cfg *config.Config, input IngestInput) (*IngestOutput, error) {
	if strings.TrimSpace(input.Screenshot) == "" {
		return nil, errors.NewInvalidRequest("screenshot path is required")
	}
	if err := checkContext(ctx, "ingest"); err != nil {
		return nil, err
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	// Config may shorten titles, never lengthen them past the default
	titleWords := capture.DefaultTitleWords
	if cfg != nil && cfg.TitleMaxWords > 0 {
		titleWords = min(cfg.TitleMaxWords, capture.DefaultTitleWords)
	}

	text, source := ResolveText(ctx, ex, input.Screenshot, input.FallbackText)
	item := capture.New(input.Screenshot, text, titleWords, now)

	if err := st.Append(ctx, item); err != nil {
		return nil, err
	}

	return &IngestOutput{
		Item:       item,
		TextSource: source,
		Store:      st.Location(),
	}, nil
}
