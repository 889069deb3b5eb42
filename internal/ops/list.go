package ops

import (
	"context"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/store"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Kind string // optional filter: note, task, reminder
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []capture.Item `json:"items"`
	Count int            `json:"count"`
	Store string         `json:"store"`
}

// List returns the stored captures in insertion order.
func List(ctx context.Context, st store.Store, input ListInput) (*ListOutput, error) {
	kind, err := ParseKind(input.Kind)
	if err != nil {
		return nil, err
	}

	items, err := st.All(ctx)
	if err != nil {
		return nil, err
	}

	if kind != "" {
		filtered := make([]capture.Item, 0, len(items))
		for _, it := range items {
			if it.Kind == kind {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	// Ensure we return an empty array rather than nil
	if items == nil {
		items = []capture.Item{}
	}

	return &ListOutput{
		Items: items,
		Count: len(items),
		Store: st.Location(),
	}, nil
}
