package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

func TestServiceSupported(t *testing.T) {
	s := New(Options{}, zap.NewNop())
	assert.True(t, s.Supported("BTC"))
	assert.True(t, s.Supported("ETH"))
	assert.True(t, s.Supported("VTC"))
	assert.False(t, s.Supported("DOGE"))
}

func TestServiceBalances(t *testing.T) {
	t.Run("btc balances converted from satoshis", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/balance", r.URL.Path)
			assert.Equal(t, "addr1|addr2", r.URL.Query().Get("active"))
			w.Write([]byte(`{"addr1":{"final_balance":150000000},"addr2":{"final_balance":50000000}}`))
		}))
		defer srv.Close()

		s := New(Options{BlockchainInfoURL: srv.URL}, zap.NewNop())
		balances, err := s.Balances(context.Background(), "BTC", []string{"addr1", "addr2"})
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1.5").Equal(balances["addr1"]))
		assert.True(t, decimal.RequireFromString("0.5").Equal(balances["addr2"]))
	})

	t.Run("vtc balances arrive in whole coins", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/VTC/address/balance", r.URL.Path)
			addr := r.URL.Query().Get("address")
			w.Write([]byte(`{"success":true,"error":[],"result":{"` + addr + `":"42.5"}}`))
		}))
		defer srv.Close()

		s := New(Options{CoinExplorerURL: srv.URL}, zap.NewNop())
		balances, err := s.Balances(context.Background(), "VTC", []string{"vtc1"})
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("42.5").Equal(balances["vtc1"]))
	})

	t.Run("explorer reported error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"error":["invalid address"],"result":null}`))
		}))
		defer srv.Close()

		s := New(Options{CoinExplorerURL: srv.URL}, zap.NewNop())
		_, err := s.Balances(context.Background(), "VTC", []string{"bogus"})

		var reported *domain.ExchangeReportedError
		require.ErrorAs(t, err, &reported)
		assert.Equal(t, "coinexplorer", reported.Source)
	})

	t.Run("unsupported asset fails without a call", func(t *testing.T) {
		s := New(Options{}, zap.NewNop())
		_, err := s.Balances(context.Background(), "DOGE", []string{"addr"})

		var unsupported *domain.UnsupportedAssetError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "DOGE", unsupported.Asset)
	})
}
