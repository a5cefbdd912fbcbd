package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hodlboard/hodlboard/internal/domain"
)

var (
	testTime = time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)
	testDay  = domain.DayOf(testTime)
)

func TestTradeDeltas(t *testing.T) {
	agg := newTestAggregator(nil)

	t.Run("buy credits base and debits quote plus fee", func(t *testing.T) {
		table := agg.TradeDeltas([]domain.TradeRecord{{
			Pair:   "XXBTZUSD",
			Side:   domain.SideBuy,
			Volume: decimal.NewFromInt(1),
			Cost:   decimal.NewFromInt(100),
			Fee:    decimal.RequireFromString("0.1"),
			Time:   testTime.Unix(),
		}})

		assert.True(t, decimal.NewFromInt(1).Equal(table.At(testDay, "BTC")))
		assert.True(t, decimal.RequireFromString("-100.1").Equal(table.At(testDay, "USD")))
	})

	t.Run("sell debits base and credits quote minus fee", func(t *testing.T) {
		table := agg.TradeDeltas([]domain.TradeRecord{{
			Pair:   "XBTUSD",
			Side:   domain.SideSell,
			Volume: decimal.NewFromInt(1),
			Cost:   decimal.NewFromInt(100),
			Fee:    decimal.RequireFromString("0.1"),
			Time:   testTime.Unix(),
		}})

		assert.True(t, decimal.NewFromInt(-1).Equal(table.At(testDay, "BTC")))
		assert.True(t, decimal.RequireFromString("99.9").Equal(table.At(testDay, "USD")))
	})

	t.Run("partial match keeps the resolved base side", func(t *testing.T) {
		table := agg.TradeDeltas([]domain.TradeRecord{{
			Pair:   "XXBTEUR",
			Side:   domain.SideBuy,
			Volume: decimal.NewFromInt(1),
			Cost:   decimal.NewFromInt(100),
			Fee:    decimal.RequireFromString("0.1"),
			Time:   testTime.Unix(),
		}})

		assert.True(t, decimal.NewFromInt(1).Equal(table.At(testDay, "BTC")))
		assert.True(t, table.At(testDay, "EUR").IsZero())
		assert.True(t, table.At(testDay, "USD").IsZero())
	})

	t.Run("partial match keeps the resolved quote side", func(t *testing.T) {
		table := agg.TradeDeltas([]domain.TradeRecord{{
			Pair:   "EURZUSD",
			Side:   domain.SideBuy,
			Volume: decimal.NewFromInt(1),
			Cost:   decimal.NewFromInt(100),
			Fee:    decimal.RequireFromString("0.1"),
			Time:   testTime.Unix(),
		}})

		assert.True(t, decimal.RequireFromString("-100.1").Equal(table.At(testDay, "USD")))
		assert.True(t, table.At(testDay, "EUR").IsZero())
	})

	t.Run("unsplittable pair skipped", func(t *testing.T) {
		table := agg.TradeDeltas([]domain.TradeRecord{{
			Pair:   "ZZZ999",
			Side:   domain.SideBuy,
			Volume: decimal.NewFromInt(1),
			Cost:   decimal.NewFromInt(1),
			Time:   testTime.Unix(),
		}})

		assert.True(t, table.IsEmpty())
	})
}

func TestLedgerDeltas(t *testing.T) {
	agg := newTestAggregator(nil)

	t.Run("fiat deposits mode", func(t *testing.T) {
		table := agg.LedgerDeltas([]domain.LedgerRecord{
			{Asset: "ZUSD", Type: "deposit", Amount: decimal.NewFromInt(100), Fee: decimal.NewFromInt(1), Time: testTime.Unix()},
			{Asset: "ZUSD", Type: "withdrawal", Amount: decimal.NewFromInt(50), Fee: decimal.RequireFromString("0.5"), Time: testTime.Unix()},
			{Asset: "XXBT", Type: "withdrawal", Amount: decimal.NewFromInt(1), Fee: decimal.RequireFromString("0.0005"), Time: testTime.Unix()},
		}, FiatDepositsOnly)

		// 100 - 1 - 50 - 0.5
		assert.True(t, decimal.RequireFromString("48.5").Equal(table.At(testDay, "USD")))
		// principal of a crypto withdrawal is not tracked, only its fee
		assert.True(t, decimal.RequireFromString("-0.0005").Equal(table.At(testDay, "BTC")))
	})

	t.Run("all asset amounts mode", func(t *testing.T) {
		table := agg.LedgerDeltas([]domain.LedgerRecord{
			{Asset: "BTC", Type: "send", Amount: decimal.NewFromInt(1), Fee: decimal.RequireFromString("0.01"), Time: testTime.Unix()},
		}, AllAssetAmounts)

		assert.True(t, decimal.RequireFromString("0.99").Equal(table.At(testDay, "BTC")))
	})

	t.Run("trade rows excluded", func(t *testing.T) {
		table := agg.LedgerDeltas([]domain.LedgerRecord{
			{Asset: "BTC", Type: domain.LedgerTypeTrade, Amount: decimal.NewFromInt(1), Time: testTime.Unix()},
		}, AllAssetAmounts)

		assert.True(t, table.IsEmpty())
	})

	t.Run("unresolvable asset dropped", func(t *testing.T) {
		table := agg.LedgerDeltas([]domain.LedgerRecord{
			{Asset: "FOO", Type: "deposit", Amount: decimal.NewFromInt(1), Time: testTime.Unix()},
		}, AllAssetAmounts)

		assert.True(t, table.IsEmpty())
	})
}

func TestDailyDeltas(t *testing.T) {
	agg := newTestAggregator(nil)

	t.Run("amount mode follows the venue", func(t *testing.T) {
		ledger := []domain.LedgerRecord{
			{Asset: "BTC", Type: "send", Amount: decimal.NewFromInt(1), Time: testTime.Unix()},
		}

		coinbase := &fakeExchange{name: "Coinbase", ledger: ledger}
		table, err := agg.DailyDeltas(context.Background(), coinbase)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1).Equal(table.At(testDay, "BTC")))

		kraken := &fakeExchange{name: "Kraken", ledger: ledger}
		table, err = agg.DailyDeltas(context.Background(), kraken)
		require.NoError(t, err)
		assert.True(t, table.At(testDay, "BTC").IsZero())
	})

	t.Run("conversion legs move balances", func(t *testing.T) {
		venue := &fakeExchange{
			name: "Coinbase",
			ledger: []domain.LedgerRecord{
				{Asset: "BTC", Type: "conversion", Amount: decimal.NewFromInt(-1), Time: testTime.Unix()},
				{Asset: "ETH", Type: "conversion", Amount: decimal.NewFromInt(10), Time: testTime.Unix()},
			},
		}

		table, err := agg.DailyDeltas(context.Background(), venue)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(-1).Equal(table.At(testDay, "BTC")))
		assert.True(t, decimal.NewFromInt(10).Equal(table.At(testDay, "ETH")))
	})

	t.Run("trades and ledger folded together", func(t *testing.T) {
		venue := &fakeExchange{
			name: "Kraken",
			trades: []domain.TradeRecord{{
				Pair:   "XXBTZUSD",
				Side:   domain.SideBuy,
				Volume: decimal.NewFromInt(1),
				Cost:   decimal.NewFromInt(100),
				Time:   testTime.Unix(),
			}},
			ledger: []domain.LedgerRecord{
				{Asset: "ZUSD", Type: "deposit", Amount: decimal.NewFromInt(200), Time: testTime.Unix()},
			},
		}

		table, err := agg.DailyDeltas(context.Background(), venue)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1).Equal(table.At(testDay, "BTC")))
		assert.True(t, decimal.NewFromInt(100).Equal(table.At(testDay, "USD")))
	})
}
