package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hodlboard/hodlboard/internal/domain"
)

func TestPriceSymbols(t *testing.T) {
	fiat := []domain.Asset{"USD", "GBP"}

	t.Run("fiat holdings need no quote", func(t *testing.T) {
		symbols := priceSymbols([]domain.Asset{"BTC", "GBP", "USD", "ETH"}, fiat, "USD")
		assert.Equal(t, []string{"BTC/USD", "ETH/USD"}, symbols)
	})

	t.Run("only fiat held", func(t *testing.T) {
		symbols := priceSymbols([]domain.Asset{"USD", "GBP"}, fiat, "USD")
		assert.Empty(t, symbols)
	})
}
