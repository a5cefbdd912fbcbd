package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbol(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		sym, err := ParseSymbol("BTC/USD")
		require.NoError(t, err)
		assert.Equal(t, Symbol{Base: "BTC", Quote: "USD"}, sym)
	})

	t.Run("rejects missing side", func(t *testing.T) {
		for _, s := range []string{"BTC", "BTC/", "/USD", ""} {
			_, err := ParseSymbol(s)
			assert.Error(t, err, s)
		}
	})
}

func TestSymbolForms(t *testing.T) {
	sym := NewSymbol("BTC", "USD")
	assert.Equal(t, "BTC/USD", sym.String())
	assert.Equal(t, "BTCUSD", sym.Concat())
	assert.Equal(t, "BTC-USD", sym.Dashed())
	assert.Equal(t, Symbol{Base: "BTC", Quote: "USDT"}, sym.WithQuote("USDT"))
}

func TestSymbolUnstaked(t *testing.T) {
	tests := []struct {
		name string
		in   Symbol
		want Symbol
	}{
		{"staking suffix stripped", NewSymbol("DOT.S", "USD"), NewSymbol("DOT", "USD")},
		{"eth2 aliases eth", NewSymbol("ETH2.S", "USD"), NewSymbol("ETH", "USD")},
		{"bare eth2", NewSymbol("ETH2", "USD"), NewSymbol("ETH", "USD")},
		{"unstaked unchanged", NewSymbol("BTC", "USD"), NewSymbol("BTC", "USD")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Unstaked())
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		pair string
		want Symbol
	}{
		{"plain concatenation", "BTCUSD", NewSymbol("BTC", "USD")},
		{"kraken legacy prefixes", "XXBTZUSD", NewSymbol("BTC", "USD")},
		{"short legacy base", "XBTUSD", NewSymbol("BTC", "USD")},
		{"remapped both sides", "XDGXBT", NewSymbol("DOGE", "BTC")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym, err := Split(tt.pair, testAccepted, testRemap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sym)
		})
	}

	t.Run("whole string is one asset", func(t *testing.T) {
		sym, err := Split("VTC", testAccepted, testRemap)
		require.NoError(t, err)
		assert.Equal(t, NewSymbol("VTC", "VTC"), sym)
	})

	t.Run("empty pair is not an error", func(t *testing.T) {
		sym, err := Split("", testAccepted, testRemap)
		require.NoError(t, err)
		assert.True(t, sym.IsZero())
	})

	t.Run("no side matches", func(t *testing.T) {
		sym, err := Split("ZZZ999", testAccepted, testRemap)
		assert.ErrorIs(t, err, ErrUnsupportedSymbol)
		assert.True(t, sym.IsZero())
	})

	t.Run("one side matches", func(t *testing.T) {
		sym, err := Split("BTCZZZ", testAccepted, testRemap)
		assert.ErrorIs(t, err, ErrPartialMatch)
		assert.Equal(t, Asset("BTC"), sym.Base)
		assert.Empty(t, sym.Quote)
	})
}
