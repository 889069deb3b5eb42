package capture

import "time"

// Kind is the category assigned to a capture.
type Kind string

const (
	KindNote     Kind = "note"
	KindTask     Kind = "task"
	KindReminder Kind = "reminder"
)

// Kinds lists every valid kind.
var Kinds = []Kind{KindNote, KindTask, KindReminder}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindNote, KindTask, KindReminder:
		return true
	}
	return false
}

// DefaultBody is used when no text could be resolved for a screenshot.
const DefaultBody = "Untitled capture"

// DefaultTitleWords is the title length used when none is configured.
const DefaultTitleWords = 8

// Item is a single classified record derived from one screenshot or text ingestion.
// Items are never mutated after creation. Field order matches the persisted key order.
type Item struct {
	// Source is the path or identifier of the originating screenshot
	Source string `json:"source" yaml:"source" validate:"required"`

	// Kind is one of note, task, reminder
	Kind Kind `json:"kind" yaml:"kind" validate:"capture_kind"`

	// Title is the first words of Body, with an ellipsis when truncated
	Title string `json:"title" yaml:"title" validate:"required"`

	// Body is the normalized full text (never empty)
	Body string `json:"body" yaml:"body" validate:"required"`

	// ReminderAt is set only when a time phrase was recognized (UTC)
	ReminderAt *time.Time `json:"reminder_at" yaml:"reminder_at"`

	// CreatedAt is the UTC creation time at second precision
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// New builds an Item from already-resolved raw text.
// It runs the normalize, classify, title and time-hint stages against now.
func New(source, rawText string, titleWords int, now time.Time) Item {
	body := Normalize(rawText)
	now = now.UTC()
	return Item{
		Source:     source,
		Kind:       Classify(body),
		Title:      Title(body, titleWords),
		Body:       body,
		ReminderAt: ExtractTimeHint(body, now),
		CreatedAt:  now.Truncate(time.Second),
	}
}
