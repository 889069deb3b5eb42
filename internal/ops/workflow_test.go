package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/config"
	"github.com/hpungsan/shotcap/internal/store"
)

// TestFullWorkflow exercises the capture lifecycle on both backends:
// ingest → list → export → clear → list (empty)
func TestFullWorkflow(t *testing.T) {
	for _, driver := range []string{config.StoreDriverJSON, config.StoreDriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			st, err := store.Open(driver, filepath.Join(dir, "captures."+driver))
			require.NoError(t, err)
			defer st.Close()

			cfg := config.DefaultConfig()
			ex := &stubExtractor{text: "Email the landlord tomorrow"}

			// 1. Ingest via OCR, then via file name
			out, err := Ingest(ctx, st, ex, cfg, IngestInput{Screenshot: "landlord.png", Now: monday})
			require.NoError(t, err)
			require.Equal(t, capture.KindTask, out.Item.Kind)
			require.NotNil(t, out.Item.ReminderAt)

			ex.text = ""
			_, err = Ingest(ctx, st, ex, cfg, IngestInput{Screenshot: "weekly_meeting.png", Now: monday})
			require.NoError(t, err)

			// 2. List
			listOut, err := List(ctx, st, ListInput{})
			require.NoError(t, err)
			require.Len(t, listOut.Items, 2)
			require.Equal(t, "Email the landlord tomorrow", listOut.Items[0].Body)
			require.Equal(t, "weekly meeting", listOut.Items[1].Body)
			require.Equal(t, capture.KindReminder, listOut.Items[1].Kind)

			// 3. Export
			exportPath := filepath.Join(dir, "backup.json")
			exportOut, err := Export(ctx, st, ExportInput{Path: exportPath})
			require.NoError(t, err)
			require.Equal(t, 2, exportOut.Count)

			exported := store.NewJSONStore(exportPath)
			roundTrip, err := exported.All(ctx)
			require.NoError(t, err)
			require.Len(t, roundTrip, 2)
			for i := range roundTrip {
				require.Equal(t, listOut.Items[i].Body, roundTrip[i].Body)
				require.True(t, listOut.Items[i].CreatedAt.Equal(roundTrip[i].CreatedAt))
			}

			// 4. Clear
			clearOut, err := Clear(ctx, st)
			require.NoError(t, err)
			require.Equal(t, 2, clearOut.Removed)

			// 5. List is empty, export untouched
			listOut, err = List(ctx, st, ListInput{})
			require.NoError(t, err)
			require.Empty(t, listOut.Items)

			_, err = os.Stat(exportPath)
			require.NoError(t, err)
		})
	}
}
