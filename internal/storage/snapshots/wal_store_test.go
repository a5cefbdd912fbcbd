package snapshots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hodlboard/hodlboard/internal/domain"
)

func testSnapshot(total string) domain.BalanceSnapshot {
	return domain.BalanceSnapshot{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Columns:   []string{"kraken"},
		Rows: []domain.BalanceSnapshotRow{
			{Asset: "BTC", Cells: map[string]string{"kraken": total}, Total: total},
		},
	}
}

func TestWALStore(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	t.Run("empty store has no snapshots", func(t *testing.T) {
		latest, err := store.Latest()
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("save and read back", func(t *testing.T) {
		require.NoError(t, store.Save(testSnapshot("1.5")))
		require.NoError(t, store.Save(testSnapshot("2.5")))

		latest, err := store.Latest()
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "2.5", latest.Snapshot.Rows[0].Total)
	})

	t.Run("snapshots after an index", func(t *testing.T) {
		first := store.CurrentIndex()
		require.NoError(t, store.Save(testSnapshot("3.5")))

		records, err := store.SnapshotsAfter(first)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "3.5", records[0].Snapshot.Rows[0].Total)
		assert.Greater(t, records[0].Index, first)
	})
}
