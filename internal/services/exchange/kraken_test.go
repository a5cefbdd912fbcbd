package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

func newFakeKraken(t *testing.T, balanceCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/0/private/Balance":
			balanceCalls.Add(1)
			assert.NotEmpty(t, r.Header.Get("API-Key"))
			assert.NotEmpty(t, r.Header.Get("API-Sign"))
			w.Write([]byte(`{"error":[],"result":{"XXBT":"1.5","ZUSD":"100"}}`))
		case "/0/public/Assets":
			w.Write([]byte(`{"error":[],"result":{"XXBT":{},"ZUSD":{}}}`))
		case "/0/private/TradesHistory":
			w.Write([]byte(`{"error":[],"result":{"trades":{"T1":{"pair":"XXBTZUSD","type":"buy","vol":"1","cost":"100","fee":"0.1","time":1700000000.5}},"count":1}}`))
		case "/0/private/Ledgers":
			w.Write([]byte(`{"error":[],"result":{"ledger":{` +
				`"L1":{"asset":"ZUSD","type":"deposit","amount":"100","fee":"0","time":1700000000.5},` +
				`"L2":{"asset":"XXBT","type":"trade","amount":"1","fee":"0","time":1700000000.5}` +
				`},"count":2}}`))
		case "/0/public/OHLC":
			w.Write([]byte(`{"error":[],"result":{"XXBTZUSD":[[1700000000,"100","110","90","105","100","1",5]],"last":1700000000}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestKrakenAdapter(t *testing.T) {
	var balanceCalls atomic.Int32
	srv := newFakeKraken(t, &balanceCalls)
	defer srv.Close()

	cred := domain.Credential{APIKey: "key", APISecret: "a2V5bWF0ZXJpYWw="}
	k := NewKraken(cred, Options{KrakenURL: srv.URL}, zap.NewNop())
	ctx := context.Background()

	t.Run("balances under raw codes", func(t *testing.T) {
		balances, err := k.Balances(ctx)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1.5").Equal(balances["XXBT"]))
		assert.True(t, decimal.NewFromInt(100).Equal(balances["ZUSD"]))
	})

	t.Run("repeat call served from cache", func(t *testing.T) {
		_, err := k.Balances(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(1), balanceCalls.Load())
	})

	t.Run("valid assets", func(t *testing.T) {
		assets, err := k.ValidAssets(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []domain.Asset{"XXBT", "ZUSD"}, assets)
	})

	t.Run("trades", func(t *testing.T) {
		trades, err := k.Trades(ctx)
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Equal(t, "XXBTZUSD", trades[0].Pair)
		assert.Equal(t, domain.SideBuy, trades[0].Side)
		assert.True(t, decimal.NewFromInt(100).Equal(trades[0].Cost))
	})

	t.Run("ledger drops trade rows", func(t *testing.T) {
		ledger, err := k.Ledger(ctx)
		require.NoError(t, err)
		require.Len(t, ledger, 1)
		assert.Equal(t, "deposit", ledger[0].Type)
		assert.Equal(t, domain.Asset("ZUSD"), ledger[0].Asset)
	})

	t.Run("daily prices are candle midpoints", func(t *testing.T) {
		table, err := k.DailyPrices(ctx, domain.NewSymbol("BTC", "USD"))
		require.NoError(t, err)
		require.True(t, table.HasColumn("BTC/USD"))

		v, ok := table.At(domain.DayOfUnix(1700000000), "BTC/USD")
		require.True(t, ok)
		assert.True(t, decimal.NewFromInt(100).Equal(v))
	})
}
