package ops

import (
	"context"

	"github.com/hpungsan/shotcap/internal/store"
)

// ClearOutput contains the result of the Clear operation.
type ClearOutput struct {
	Removed int    `json:"removed"`
	Store   string `json:"store"`
}

// Clear removes every capture from st.
func Clear(ctx context.Context, st store.Store) (*ClearOutput, error) {
	if err := checkContext(ctx, "clear"); err != nil {
		return nil, err
	}
	n, err := st.Clear(ctx)
	if err != nil {
		return nil, err
	}
	return &ClearOutput{Removed: n, Store: st.Location()}, nil
}
