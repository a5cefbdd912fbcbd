package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceTableSet(t *testing.T) {
	t.Run("same cell accumulates", func(t *testing.T) {
		table := NewBalanceTable()
		table.Set("BTC", "BTC_0", decimal.NewFromFloat(0.5))
		table.Set("BTC", "BTC_0", decimal.NewFromFloat(0.25))

		v, ok := table.At("BTC", "BTC_0")
		require.True(t, ok)
		assert.True(t, decimal.NewFromFloat(0.75).Equal(v))
	})

	t.Run("empty keys ignored", func(t *testing.T) {
		table := NewBalanceTable()
		table.Set("", "kraken", decimal.NewFromInt(1))
		table.Set("BTC", "", decimal.NewFromInt(1))
		assert.Zero(t, table.Len())
	})
}

func TestBalanceTableFinalize(t *testing.T) {
	table := NewBalanceTable()
	table.Set("ETH", "kraken", decimal.NewFromInt(2))
	table.Set("BTC", "kraken", decimal.NewFromInt(1))
	table.Set("BTC", "coinbase", decimal.NewFromInt(4))
	table.Set("ADA", "kraken", decimal.NewFromInt(10))
	table.Set("ADA", "coinbase", decimal.NewFromInt(-10))

	got := table.Finalize()

	t.Run("totals are summed across columns", func(t *testing.T) {
		assert.True(t, decimal.NewFromInt(5).Equal(got.Total("BTC")))
		assert.True(t, decimal.NewFromInt(2).Equal(got.Total("ETH")))
	})

	t.Run("zero total rows dropped", func(t *testing.T) {
		_, ok := got.At("ADA", "kraken")
		assert.False(t, ok)
		assert.Equal(t, 2, got.Len())
	})

	t.Run("rows ordered by total descending", func(t *testing.T) {
		assert.Equal(t, []Asset{"BTC", "ETH"}, got.Assets())
	})

	t.Run("total column excluded from sources", func(t *testing.T) {
		assert.Equal(t, []string{"kraken", "coinbase"}, got.Columns())
	})

	t.Run("receiver untouched", func(t *testing.T) {
		assert.Equal(t, 3, table.Len())
		assert.True(t, table.Total("BTC").IsZero())
	})
}

func TestBalanceTableSnapshot(t *testing.T) {
	table := NewBalanceTable()
	table.Set("BTC", "kraken", decimal.NewFromFloat(1.5))
	final := table.Finalize()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := final.Snapshot(at)

	assert.Equal(t, at, snap.Timestamp)
	assert.Equal(t, []string{"kraken"}, snap.Columns)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, Asset("BTC"), snap.Rows[0].Asset)
	assert.Equal(t, "1.5", snap.Rows[0].Total)
	assert.Equal(t, "1.5", snap.Rows[0].Cells["kraken"])
}
